package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/nerrad567/gray-logic-hubspace/internal/device"
)

type stubTokens struct {
	token string
	err   error
}

func (s stubTokens) Token(context.Context) (string, error) { return s.token, s.err }

const accountPayload = `{"accountAccess": [{"account": {"accountId": "acct-1"}}]}`

const devicePayload = `[
  {
    "id": "dev-1",
    "deviceId": "phys-1",
    "typeId": "metadevice.device",
    "friendlyName": "Porch Light",
    "description": {
      "device": {"model": "ABC123", "deviceClass": "light", "defaultName": "Bulb"},
      "functions": []
    },
    "state": {"values": [{"functionClass": "power", "value": "on"}]}
  }
]`

// newTestClient wires a client at a fake service with auth stubbed
// out.
func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := NewClient("user@example.com", "secret", &Options{
		Endpoints: Endpoints{
			AccountURL:  srv.URL + "/users/me",
			DataBaseURL: srv.URL + "/v1",
			AccountHost: "account.test",
			DataHost:    "data.test",
		},
		HTTPClient: srv.Client(),
	})
	client.auth = stubTokens{token: "tok-1"}
	return client
}

func accountHandler(hits *atomic.Int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		fmt.Fprint(w, accountPayload)
	}
}

func TestClientAccountID(t *testing.T) {
	var hits atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		if r.Host != "account.test" {
			t.Errorf("Host = %q, want %q", r.Host, "account.test")
		}
		fmt.Fprint(w, accountPayload)
	})
	client := newTestClient(t, mux)

	id, err := client.AccountID(context.Background())
	if err != nil {
		t.Fatalf("AccountID() error = %v", err)
	}
	if id != "acct-1" {
		t.Errorf("AccountID() = %q, want %q", id, "acct-1")
	}

	// Cached after the first lookup.
	if _, err := client.AccountID(context.Background()); err != nil {
		t.Fatalf("AccountID() second call error = %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("account endpoint hit %d times, want 1", hits.Load())
	}
}

func TestClientAccountID_NoAccess(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"accountAccess": []}`)
	})
	client := newTestClient(t, mux)

	_, err := client.AccountID(context.Background())
	if !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("AccountID() error = %v, want ErrInvalidResponse", err)
	}
}

func TestClientFetchSnapshots(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/me", accountHandler(nil))
	mux.HandleFunc("/v1/accounts/acct-1/metadevices", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("expansions"); got != "state" {
			t.Errorf("expansions = %q, want %q", got, "state")
		}
		if r.Host != "data.test" {
			t.Errorf("Host = %q, want %q", r.Host, "data.test")
		}
		fmt.Fprint(w, devicePayload)
	})
	client := newTestClient(t, mux)

	snaps, err := client.FetchSnapshots(context.Background())
	if err != nil {
		t.Fatalf("FetchSnapshots() error = %v", err)
	}
	if len(snaps) != 1 {
		t.Fatalf("FetchSnapshots() returned %d snapshots, want 1", len(snaps))
	}
	if snaps[0].ID != "dev-1" || snaps[0].DeviceClass != "light" {
		t.Errorf("snapshot = %q/%q, want dev-1/light", snaps[0].ID, snaps[0].DeviceClass)
	}
}

func TestClientFetchSnapshots_RetriesRateLimit(t *testing.T) {
	var hits atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/users/me", accountHandler(nil))
	mux.HandleFunc("/v1/accounts/acct-1/metadevices", func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, devicePayload)
	})
	client := newTestClient(t, mux)

	snaps, err := client.FetchSnapshots(context.Background())
	if err != nil {
		t.Fatalf("FetchSnapshots() error = %v", err)
	}
	if len(snaps) != 1 {
		t.Errorf("FetchSnapshots() returned %d snapshots, want 1", len(snaps))
	}
	if hits.Load() != 2 {
		t.Errorf("data endpoint hit %d times, want 2", hits.Load())
	}
}

func TestClientFetchSnapshots_RetriesExhausted(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/me", accountHandler(nil))
	mux.HandleFunc("/v1/accounts/acct-1/metadevices", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	client := newTestClient(t, mux)

	_, err := client.FetchSnapshots(context.Background())
	if !errors.Is(err, ErrExceededRetries) {
		t.Errorf("FetchSnapshots() error = %v, want ErrExceededRetries", err)
	}
	// Exhausted retries count as transient for the poll loop.
	if !errors.Is(err, ErrTransient) {
		t.Errorf("FetchSnapshots() error = %v, want it to match ErrTransient", err)
	}
}

func TestClientFetchSnapshots_AuthRejected(t *testing.T) {
	var hits atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/users/me", accountHandler(nil))
	mux.HandleFunc("/v1/accounts/acct-1/metadevices", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusForbidden)
	})
	client := newTestClient(t, mux)

	_, err := client.FetchSnapshots(context.Background())
	if !errors.Is(err, ErrInvalidAuth) {
		t.Errorf("FetchSnapshots() error = %v, want ErrInvalidAuth", err)
	}
	if hits.Load() != 1 {
		t.Errorf("403 retried: %d hits, want 1", hits.Load())
	}
}

func TestClientFetchSnapshots_NetworkFault(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/me", accountHandler(nil))
	srv := httptest.NewServer(mux)
	client := NewClient("user@example.com", "secret", &Options{
		Endpoints: Endpoints{
			AccountURL:  srv.URL + "/users/me",
			DataBaseURL: srv.URL + "/v1",
		},
	})
	client.auth = stubTokens{token: "tok-1"}
	srv.Close()

	_, err := client.FetchSnapshots(context.Background())
	if !errors.Is(err, ErrTransient) {
		t.Errorf("FetchSnapshots() error = %v, want ErrTransient", err)
	}
}

func TestClientPushState(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/me", accountHandler(nil))
	mux.HandleFunc("/v1/accounts/acct-1/metadevices/dev-1/state", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %q, want PUT", r.Method)
		}
		var update stateUpdate
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			t.Errorf("failed to decode push body: %v", err)
		}
		if update.MetadeviceID != "dev-1" {
			t.Errorf("metadeviceId = %q, want %q", update.MetadeviceID, "dev-1")
		}
		if len(update.Values) != 1 || update.Values[0].FunctionClass != "power" {
			t.Errorf("values = %+v, want one power state", update.Values)
		}
		// The service echoes the applied values back.
		fmt.Fprint(w, `{"values": [{"functionClass": "power", "value": "on", "lastUpdateTime": 12345}]}`)
	})
	client := newTestClient(t, mux)

	applied, err := client.PushState(context.Background(), "dev-1", []device.State{
		{FunctionClass: "power", Value: "on", LastUpdateTime: 12345},
	})
	if err != nil {
		t.Fatalf("PushState() error = %v", err)
	}
	if len(applied) != 1 || applied[0].FunctionClass != "power" {
		t.Errorf("applied = %+v, want one power state", applied)
	}
}

func TestClientPushState_Rejected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/me", accountHandler(nil))
	mux.HandleFunc("/v1/accounts/acct-1/metadevices/dev-1/state", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	client := newTestClient(t, mux)

	_, err := client.PushState(context.Background(), "dev-1", nil)
	if !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("PushState() error = %v, want ErrInvalidResponse", err)
	}
}
