package gateway

import "fmt"

// Service constants. The data plane sits behind an Afero CDN front
// that routes on the Host header, so data requests carry a host
// override distinct from the URL host.
const (
	defaultUserAgent = "Dart/2.15 (dart:io)"
	oauthClientID    = "hubspace_android"
	oauthRedirectURI = "hubspace-app://loginredirect"
)

// Endpoints holds every URL the client talks to. Tests point these at
// local servers; production uses DefaultEndpoints.
type Endpoints struct {
	// AuthURL serves the login form that starts the code flow.
	AuthURL string
	// CodeURL receives the credential post and redirects with a code.
	CodeURL string
	// TokenURL exchanges codes and refresh tokens for access tokens.
	TokenURL string

	// AccountURL answers with the accounts the login can access.
	AccountURL string
	// DataBaseURL is the metadevice API root; per-account paths hang
	// off it.
	DataBaseURL string

	// AccountHost and DataHost are the Host header overrides for the
	// account and data planes.
	AccountHost string
	DataHost    string
}

// DefaultEndpoints returns the production service endpoints.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		AuthURL:     "https://accounts.hubspaceconnect.com/auth/realms/thd/protocol/openid-connect/auth",
		CodeURL:     "https://accounts.hubspaceconnect.com/auth/realms/thd/login-actions/authenticate",
		TokenURL:    "https://accounts.hubspaceconnect.com/auth/realms/thd/protocol/openid-connect/token",
		AccountURL:  "https://api2.afero.net/v1/users/me",
		DataBaseURL: "https://api2.afero.net/v1",
		AccountHost: "api2.afero.net",
		DataHost:    "semantics2.afero.net",
	}
}

// MetadevicesURL returns the full-fleet listing URL for an account.
func (e Endpoints) MetadevicesURL(accountID string) string {
	return fmt.Sprintf("%s/accounts/%s/metadevices", e.DataBaseURL, accountID)
}

// StateURL returns the state update URL for one metadevice.
func (e Endpoints) StateURL(accountID, deviceID string) string {
	return fmt.Sprintf("%s/accounts/%s/metadevices/%s/state", e.DataBaseURL, accountID, deviceID)
}
