package upstream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ipede/oauth-proxy-service/internal/domain"
	"github.com/ipede/oauth-proxy-service/internal/infrastructure/config"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// transport-level failures get one retry; a rejected code never does
const maxExchangeAttempts = 2

// GitHubClient implements domain.UpstreamClient against the GitHub OAuth
// endpoints. The token endpoint answers with JSON when asked via the Accept
// header, which oauth2.Config does.
type GitHubClient struct {
	conf    *oauth2.Config
	timeout time.Duration
	logger  *zap.Logger
}

// NewGitHubClient creates an upstream client from the service configuration
func NewGitHubClient(cfg *config.Config, logger *zap.Logger) *GitHubClient {
	return &GitHubClient{
		conf: &oauth2.Config{
			ClientID:     cfg.GithubClientID,
			ClientSecret: cfg.GithubClientSecret,
			Endpoint:     github.Endpoint,
			RedirectURL:  cfg.CallbackURL(),
			Scopes:       []string{cfg.GithubScope},
		},
		timeout: cfg.UpstreamTimeout,
		logger:  logger,
	}
}

// AuthorizeURL builds the GitHub authorize URL carrying the upstream state
// nonce. Pure construction, no network call.
func (c *GitHubClient) AuthorizeURL(state string) string {
	return c.conf.AuthCodeURL(state)
}

// Exchange performs the code-for-token exchange against the GitHub token
// endpoint. An error body from GitHub surfaces as *domain.UpstreamError;
// timeouts, TLS failures and unparsable responses surface as
// domain.ErrUpstreamUnavailable so the caller can tell rejection from outage.
func (c *GitHubClient) Exchange(ctx context.Context, code string) (*domain.UpstreamToken, error) {
	var lastErr error
	for attempt := 1; attempt <= maxExchangeAttempts; attempt++ {
		exchangeCtx, cancel := context.WithTimeout(ctx, c.timeout)
		token, err := c.conf.Exchange(exchangeCtx, code)
		cancel()

		if err == nil {
			return &domain.UpstreamToken{
				AccessToken: token.AccessToken,
				TokenType:   token.TokenType,
			}, nil
		}

		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.ErrorCode != "" {
			// the upstream parsed our request and said no; retrying a
			// one-time code would not help
			c.logger.Error("Upstream rejected code exchange",
				zap.String("error_code", retrieveErr.ErrorCode),
				zap.String("error_description", retrieveErr.ErrorDescription))
			return nil, &domain.UpstreamError{
				Code:        retrieveErr.ErrorCode,
				Description: retrieveErr.ErrorDescription,
			}
		}

		lastErr = err
		c.logger.Warn("Upstream exchange attempt failed",
			zap.Int("attempt", attempt),
			zap.Error(err))
	}

	c.logger.Error("Upstream unreachable", zap.Error(lastErr))
	return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, lastErr)
}
