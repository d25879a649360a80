package repository

import (
	"context"
	"testing"
	"time"

	"github.com/ipede/oauth-proxy-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTokenRepo() *TokenRepository {
	return NewTokenRepository(3600*time.Second, 0, zap.NewNop())
}

func TestTokenRepository_IssuePairAndLoad(t *testing.T) {
	repo := newTokenRepo()
	ctx := context.Background()

	access, refresh, err := repo.IssuePair(ctx, "client-a", []string{"read"})
	require.NoError(t, err)
	require.NotEmpty(t, access.Token)
	require.NotEmpty(t, refresh.Token)
	assert.NotEqual(t, access.Token, refresh.Token)

	gotAccess, err := repo.LoadAccess(ctx, access.Token)
	require.NoError(t, err)
	assert.Equal(t, "client-a", gotAccess.ClientID)
	assert.Equal(t, []string{"read"}, gotAccess.Scopes)

	gotRefresh, err := repo.LoadRefresh(ctx, refresh.Token, "client-a")
	require.NoError(t, err)
	assert.Equal(t, "client-a", gotRefresh.ClientID)
}

func TestTokenRepository_LoadAccessExpired(t *testing.T) {
	repo := newTokenRepo()
	ctx := context.Background()

	access, _, err := repo.IssuePair(ctx, "client-a", []string{"read"})
	require.NoError(t, err)

	repo.now = func() time.Time { return time.Now().Add(3601 * time.Second) }

	grant, err := repo.LoadAccess(ctx, access.Token)
	assert.ErrorIs(t, err, domain.ErrInvalidGrant)
	assert.Nil(t, grant)
}

func TestTokenRepository_LoadRefreshClientIsolation(t *testing.T) {
	repo := newTokenRepo()
	ctx := context.Background()

	_, refresh, err := repo.IssuePair(ctx, "client-a", []string{"read"})
	require.NoError(t, err)

	// a valid unexpired token minted for client A must not be honored for B
	grant, err := repo.LoadRefresh(ctx, refresh.Token, "client-b")
	assert.ErrorIs(t, err, domain.ErrClientMismatch)
	assert.Nil(t, grant)

	_, err = repo.LoadRefresh(ctx, refresh.Token, "client-a")
	assert.NoError(t, err)
}

func TestTokenRepository_RotateInvalidatesOldCredentials(t *testing.T) {
	repo := newTokenRepo()
	ctx := context.Background()

	accessOne, refreshOne, err := repo.IssuePair(ctx, "client-a", []string{"read"})
	require.NoError(t, err)
	accessTwo, _, err := repo.IssuePair(ctx, "client-a", []string{"read"})
	require.NoError(t, err)
	accessOther, _, err := repo.IssuePair(ctx, "client-b", []string{"read"})
	require.NoError(t, err)

	newAccess, newRefresh, err := repo.Rotate(ctx, refreshOne.Token, "client-a", nil)
	require.NoError(t, err)

	// the consumed refresh token is gone
	_, err = repo.LoadRefresh(ctx, refreshOne.Token, "client-a")
	assert.ErrorIs(t, err, domain.ErrInvalidGrant)

	// every outstanding access token of the client is revoked
	_, err = repo.LoadAccess(ctx, accessOne.Token)
	assert.ErrorIs(t, err, domain.ErrInvalidGrant)
	_, err = repo.LoadAccess(ctx, accessTwo.Token)
	assert.ErrorIs(t, err, domain.ErrInvalidGrant)

	// other clients keep theirs
	_, err = repo.LoadAccess(ctx, accessOther.Token)
	assert.NoError(t, err)

	// the new pair works and reuses the stored scopes
	gotAccess, err := repo.LoadAccess(ctx, newAccess.Token)
	require.NoError(t, err)
	assert.Equal(t, []string{"read"}, gotAccess.Scopes)
	_, err = repo.LoadRefresh(ctx, newRefresh.Token, "client-a")
	assert.NoError(t, err)
}

func TestTokenRepository_RotateScopeOverride(t *testing.T) {
	repo := newTokenRepo()
	ctx := context.Background()

	_, refresh, err := repo.IssuePair(ctx, "client-a", []string{"read", "write"})
	require.NoError(t, err)

	newAccess, _, err := repo.Rotate(ctx, refresh.Token, "client-a", []string{"read"})
	require.NoError(t, err)
	assert.Equal(t, []string{"read"}, newAccess.Scopes)
}

func TestTokenRepository_RotateUnknownToken(t *testing.T) {
	repo := newTokenRepo()

	_, _, err := repo.Rotate(context.Background(), "unknown", "client-a", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidGrant)
}

func TestTokenRepository_RotateWrongClient(t *testing.T) {
	repo := newTokenRepo()
	ctx := context.Background()

	_, refresh, err := repo.IssuePair(ctx, "client-a", []string{"read"})
	require.NoError(t, err)

	_, _, err = repo.Rotate(ctx, refresh.Token, "client-b", nil)
	assert.ErrorIs(t, err, domain.ErrClientMismatch)

	// the failed rotation must not consume the token
	_, err = repo.LoadRefresh(ctx, refresh.Token, "client-a")
	assert.NoError(t, err)
}

func TestTokenRepository_Revoke(t *testing.T) {
	repo := newTokenRepo()
	ctx := context.Background()

	access, refresh, err := repo.IssuePair(ctx, "client-a", []string{"read"})
	require.NoError(t, err)

	require.NoError(t, repo.Revoke(ctx, domain.TokenKindAccess, access.Token))
	_, err = repo.LoadAccess(ctx, access.Token)
	assert.ErrorIs(t, err, domain.ErrInvalidGrant)

	require.NoError(t, repo.Revoke(ctx, domain.TokenKindRefresh, refresh.Token))
	_, err = repo.LoadRefresh(ctx, refresh.Token, "client-a")
	assert.ErrorIs(t, err, domain.ErrInvalidGrant)
}

func TestTokenRepository_RevokeUnknownIsNoOp(t *testing.T) {
	repo := newTokenRepo()

	assert.NoError(t, repo.Revoke(context.Background(), domain.TokenKindAccess, "unknown"))
	assert.NoError(t, repo.Revoke(context.Background(), domain.TokenKindRefresh, "unknown"))
}

func TestTokenRepository_RevokeDispatchesOnKind(t *testing.T) {
	repo := newTokenRepo()
	ctx := context.Background()

	access, refresh, err := repo.IssuePair(ctx, "client-a", []string{"read"})
	require.NoError(t, err)

	// revoking with the wrong kind tag must not touch the other store
	require.NoError(t, repo.Revoke(ctx, domain.TokenKindRefresh, access.Token))
	_, err = repo.LoadAccess(ctx, access.Token)
	assert.NoError(t, err)

	require.NoError(t, repo.Revoke(ctx, domain.TokenKindAccess, refresh.Token))
	_, err = repo.LoadRefresh(ctx, refresh.Token, "client-a")
	assert.NoError(t, err)
}
