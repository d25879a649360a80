package domain

import (
	"context"
	"time"
)

// ClientRegistration represents a registered OAuth2 client
type ClientRegistration struct {
	ClientID     string    `json:"client_id"`
	SecretHash   []byte    `json:"-"`
	RedirectURIs []string  `json:"redirect_uris"`
	Scopes       []string  `json:"scopes"`
	CreatedAt    time.Time `json:"created_at"`
}

// AuthorizationParams carries the client's original authorization request
type AuthorizationParams struct {
	RedirectURI         string
	RedirectURIExplicit bool
	CodeChallenge       string
	CodeChallengeMethod string
	Scopes              []string
	State               string
}

// PendingAuthorization holds an in-flight delegation to the upstream
// provider, keyed by the upstream state nonce until the callback consumes it
type PendingAuthorization struct {
	ClientID            string
	RedirectURI         string
	RedirectURIExplicit bool
	CodeChallenge       string
	CodeChallengeMethod string
	Scopes              []string
	ClientState         string
}

// AuthorizationCode represents a grant issued to the client after a
// successful upstream authentication
type AuthorizationCode struct {
	Code                string
	ClientID            string
	Scopes              []string
	CodeChallenge       string
	CodeChallengeMethod string
	RedirectURI         string
	RedirectURIExplicit bool
	ExpiresAt           time.Time
}

// AccessToken is the bearer credential presented on protected calls
type AccessToken struct {
	Token     string
	ClientID  string
	Scopes    []string
	ExpiresAt time.Time
}

// RefreshToken mints new access tokens; it has no expiry and dies only by
// rotation or explicit revocation
type RefreshToken struct {
	Token    string
	ClientID string
	Scopes   []string
}

// TokenPair is the token endpoint response body
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
}

// TokenKind tags which store a credential belongs to. Revocation dispatches
// on this tag, never by probing both stores.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access_token"
	TokenKindRefresh TokenKind = "refresh_token"
)

// UpstreamToken is the credential returned by the upstream identity provider
type UpstreamToken struct {
	AccessToken string
	TokenType   string
	Scope       string
}

// OAuthProvider defines the authorization-server contract consumed by the
// protocol layer
type OAuthProvider interface {
	// GetClient returns the registration for a client ID
	GetClient(ctx context.Context, clientID string) (*ClientRegistration, error)

	// RegisterClient stores a client registration, overwriting any prior one
	RegisterClient(ctx context.Context, client *ClientRegistration) error

	// Authorize records a pending authorization and returns the upstream
	// authorize URL the client's user agent should be redirected to
	Authorize(ctx context.Context, client *ClientRegistration, params AuthorizationParams) (string, error)

	// HandleUpstreamCallback consumes the pending authorization for state,
	// exchanges the upstream code and returns the client redirect target
	// carrying a fresh authorization code
	HandleUpstreamCallback(ctx context.Context, code, state string) (string, error)

	// LoadAuthorizationCode is a read-only code lookup for the given client
	LoadAuthorizationCode(ctx context.Context, client *ClientRegistration, code string) (*AuthorizationCode, error)

	// ExchangeAuthorizationCode consumes the code and issues a token pair
	ExchangeAuthorizationCode(ctx context.Context, client *ClientRegistration, code string) (*TokenPair, error)

	// LoadRefreshToken returns the refresh token grant if it belongs to client
	LoadRefreshToken(ctx context.Context, client *ClientRegistration, token string) (*RefreshToken, error)

	// ExchangeRefreshToken rotates the refresh token and issues a new pair
	ExchangeRefreshToken(ctx context.Context, client *ClientRegistration, token string, scopes []string) (*TokenPair, error)

	// LoadAccessToken validates a bearer token by store lookup
	LoadAccessToken(ctx context.Context, token string) (*AccessToken, error)

	// Revoke removes the given credential; unknown tokens are a no-op
	Revoke(ctx context.Context, kind TokenKind, token string) error
}

// ClientRepository defines the interface for client registration storage
type ClientRepository interface {
	// Save stores a client registration, overwriting any prior registration
	Save(ctx context.Context, client *ClientRegistration) error

	// FindByID finds a client registration by client ID
	FindByID(ctx context.Context, clientID string) (*ClientRegistration, error)
}

// PendingAuthRepository maps an upstream state nonce to the original request
// context while the user is redirected to the upstream provider
type PendingAuthRepository interface {
	// Put stores a pending authorization keyed by the upstream state
	Put(ctx context.Context, state string, pending *PendingAuthorization) error

	// Take removes and returns the entry for state. The removal happens
	// whether or not the caller later succeeds, so an entry is consumed at
	// most once.
	Take(ctx context.Context, state string) (*PendingAuthorization, error)
}

// AuthorizationCodeRepository stores issued authorization codes with expiry
type AuthorizationCodeRepository interface {
	// Issue generates a fresh code bound to the pending context and stores it
	Issue(ctx context.Context, pending *PendingAuthorization) (string, error)

	// Load returns the grant for code, or not-found if absent or expired.
	// Load does not delete; deletion happens only on Consume.
	Load(ctx context.Context, code string) (*AuthorizationCode, error)

	// Consume deletes the code once the exchange has produced tokens
	Consume(ctx context.Context, code string) error
}

// TokenRepository stores issued access and refresh tokens
type TokenRepository interface {
	// IssuePair generates and stores an access/refresh token pair
	IssuePair(ctx context.Context, clientID string, scopes []string) (*AccessToken, *RefreshToken, error)

	// LoadAccess returns the grant for token, or not-found if absent or expired
	LoadAccess(ctx context.Context, token string) (*AccessToken, error)

	// LoadRefresh returns the refresh grant only if it belongs to clientID
	LoadRefresh(ctx context.Context, token, clientID string) (*RefreshToken, error)

	// Rotate atomically deletes the old refresh token, revokes every access
	// token of clientID and issues a new pair. Non-empty scopes override the
	// stored ones.
	Rotate(ctx context.Context, oldRefresh, clientID string, scopes []string) (*AccessToken, *RefreshToken, error)

	// Revoke removes the tagged credential; revoking an unknown token is a no-op
	Revoke(ctx context.Context, kind TokenKind, token string) error
}

// UpstreamClient talks to the upstream identity provider
type UpstreamClient interface {
	// AuthorizeURL builds the upstream authorize URL for the given state.
	// Construction is pure; no network call is made.
	AuthorizeURL(state string) string

	// Exchange performs the code-for-token exchange against the upstream
	// token endpoint
	Exchange(ctx context.Context, code string) (*UpstreamToken, error)
}
