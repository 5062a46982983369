package gateway

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpiryMargin refreshes access tokens ahead of their hard
// expiry so one never dies mid-request.
const tokenExpiryMargin = 60 * time.Second

// formActionRe pulls the credential post target out of the login
// page. The identity provider embeds the session parameters in the
// form's action URL.
var formActionRe = regexp.MustCompile(`<form[^>]+action="([^"]+)"`)

// Authenticator drives the service's identity provider: an OAuth2
// authorization code flow with PKCE, entered through the provider's
// HTML login form. The refresh token obtained once at login mints
// short-lived access tokens on demand.
//
// Safe for concurrent use; Token serializes refreshes behind a mutex
// so concurrent callers share one login.
type Authenticator struct {
	username  string
	password  string
	endpoints Endpoints
	client    *http.Client
	log       Logger

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
	now          func() time.Time
}

// NewAuthenticator builds an authenticator for the given credentials.
// A nil base client gets sane defaults. Redirects are never followed:
// the code flow ends in a redirect to an app scheme that only exists
// to carry the authorization code.
func NewAuthenticator(username, password string, endpoints Endpoints, base *http.Client) *Authenticator {
	if base == nil {
		base = &http.Client{Timeout: 30 * time.Second}
	}
	client := *base
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &Authenticator{
		username:  username,
		password:  password,
		endpoints: endpoints,
		client:    &client,
		log:       noopLogger{},
		now:       time.Now,
	}
}

// SetLogger sets the logger for auth flow diagnostics.
func (a *Authenticator) SetLogger(log Logger) {
	a.log = log
}

// Token returns a valid access token, logging in or refreshing as
// needed.
func (a *Authenticator) Token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.refreshToken == "" {
		if err := a.login(ctx); err != nil {
			return "", err
		}
	}
	if a.accessToken == "" || !a.now().Before(a.expiresAt.Add(-tokenExpiryMargin)) {
		if err := a.refresh(ctx); err != nil {
			return "", err
		}
	}
	return a.accessToken, nil
}

// login performs the full webform code flow and stores the resulting
// refresh token. Caller holds a.mu.
func (a *Authenticator) login(ctx context.Context) error {
	a.log.Debug("performing initial login", "username", a.username)

	verifier, challenge, err := newChallenge()
	if err != nil {
		return fmt.Errorf("generate challenge: %w", err)
	}
	code, err := a.webformLogin(ctx, challenge)
	if err != nil {
		return err
	}
	refreshToken, err := a.exchangeCode(ctx, code, verifier)
	if err != nil {
		return err
	}
	a.refreshToken = refreshToken
	return nil
}

// webformLogin loads the login form, posts the credentials and
// returns the authorization code from the redirect.
func (a *Authenticator) webformLogin(ctx context.Context, challenge string) (string, error) {
	params := url.Values{
		"response_type":         {"code"},
		"client_id":             {oauthClientID},
		"redirect_uri":          {oauthRedirectURI},
		"code_challenge":        {challenge},
		"code_challenge_method": {"S256"},
		"scope":                 {"openid offline_access"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.endpoints.AuthURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: load login form: %w", ErrTransient, err)
	}
	page, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return "", fmt.Errorf("%w: read login form: %w", ErrTransient, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: login form returned status %d", ErrInvalidAuth, resp.StatusCode)
	}
	session, err := extractLoginSession(string(page))
	if err != nil {
		return "", err
	}

	query := url.Values{
		"session_code": {session.sessionCode},
		"execution":    {session.execution},
		"client_id":    {oauthClientID},
		"tab_id":       {session.tabID},
	}
	form := url.Values{
		"username":     {a.username},
		"password":     {a.password},
		"credentialId": {""},
	}
	req, err = http.NewRequestWithContext(ctx, http.MethodPost,
		a.endpoints.CodeURL+"?"+query.Encode(), strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build credential request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err = a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: post credentials: %w", ErrTransient, err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	// Success is a redirect carrying the code; anything else is the
	// re-rendered form after rejected credentials.
	if resp.StatusCode != http.StatusFound {
		return "", fmt.Errorf("%w: credentials rejected (status %d)", ErrInvalidAuth, resp.StatusCode)
	}
	location, err := url.Parse(resp.Header.Get("Location"))
	if err != nil {
		return "", fmt.Errorf("%w: parse redirect: %w", ErrInvalidResponse, err)
	}
	code := location.Query().Get("code")
	if code == "" {
		return "", fmt.Errorf("%w: redirect carried no authorization code", ErrInvalidAuth)
	}
	return code, nil
}

// exchangeCode trades the authorization code for a refresh token.
func (a *Authenticator) exchangeCode(ctx context.Context, code, verifier string) (string, error) {
	payload, err := a.postToken(ctx, url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {oauthRedirectURI},
		"code_verifier": {verifier},
		"client_id":     {oauthClientID},
	})
	if err != nil {
		return "", err
	}
	if payload.RefreshToken == "" {
		return "", fmt.Errorf("%w: token exchange returned no refresh token", ErrInvalidResponse)
	}
	return payload.RefreshToken, nil
}

// refresh mints a fresh access token from the stored refresh token.
// Caller holds a.mu.
func (a *Authenticator) refresh(ctx context.Context) error {
	a.log.Debug("refreshing access token")

	payload, err := a.postToken(ctx, url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {a.refreshToken},
		"scope":         {"openid email offline_access profile"},
		"client_id":     {oauthClientID},
	})
	if err != nil {
		return err
	}
	// The data plane authenticates with the id token.
	if payload.IDToken == "" {
		return fmt.Errorf("%w: refresh returned no id token", ErrInvalidResponse)
	}
	expiresAt, err := tokenExpiry(payload.IDToken)
	if err != nil {
		return err
	}
	a.accessToken = payload.IDToken
	a.expiresAt = expiresAt
	if payload.RefreshToken != "" {
		a.refreshToken = payload.RefreshToken
	}
	return nil
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
}

func (a *Authenticator) postToken(ctx context.Context, form url.Values) (tokenResponse, error) {
	var payload tokenResponse

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.endpoints.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return payload, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return payload, fmt.Errorf("%w: token request: %w", ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return payload, fmt.Errorf("%w: token endpoint returned status %d", ErrInvalidAuth, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return payload, fmt.Errorf("%w: decode token response: %w", ErrInvalidResponse, err)
	}
	return payload, nil
}

type loginSession struct {
	sessionCode string
	execution   string
	tabID       string
}

// extractLoginSession recovers the provider's session parameters from
// the login form's action URL.
func extractLoginSession(page string) (loginSession, error) {
	var session loginSession

	match := formActionRe.FindStringSubmatch(page)
	if match == nil {
		return session, fmt.Errorf("%w: login form not found in auth page", ErrInvalidResponse)
	}
	action, err := url.Parse(html.UnescapeString(match[1]))
	if err != nil {
		return session, fmt.Errorf("%w: parse form action: %w", ErrInvalidResponse, err)
	}
	query := action.Query()
	session = loginSession{
		sessionCode: query.Get("session_code"),
		execution:   query.Get("execution"),
		tabID:       query.Get("tab_id"),
	}
	if session.sessionCode == "" || session.execution == "" || session.tabID == "" {
		return session, fmt.Errorf("%w: login form missing session parameters", ErrInvalidResponse)
	}
	return session, nil
}

// newChallenge creates a PKCE verifier and its S256 challenge.
func newChallenge() (verifier, challenge string, err error) {
	buf := make([]byte, 40)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	verifier = base64.RawURLEncoding.EncodeToString(buf)
	sum := sha256.Sum256([]byte(verifier))
	challenge = base64.RawURLEncoding.EncodeToString(sum[:])
	return verifier, challenge, nil
}

// tokenExpiry reads the expiry claim from an access token. The token
// is not validated here; the service is the authority on validity and
// the claim only schedules the refresh.
func tokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: parse access token: %w", ErrInvalidResponse, err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, fmt.Errorf("%w: access token carries no expiry", ErrInvalidResponse)
	}
	return exp.Time, nil
}
