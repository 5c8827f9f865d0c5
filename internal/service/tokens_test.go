package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-gin-gorm-auth/internal/core/auth"
	"go-gin-gorm-auth/internal/core/errs"
)

func TestReissueInvalidatesPrevious(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "alice", "alice@example.com")

	first, err := e.issuer.IssueAccessToken(ctx, u.ID)
	require.NoError(t, err)
	second, err := e.issuer.IssueAccessToken(ctx, u.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	st, _, err := e.session.Check(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, SessionNotFound, st)

	st, claims, err := e.session.Check(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, SessionValid, st)
	assert.Equal(t, u.ID, claims.UserID)
}

func TestReissueKeepsOtherType(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "alice", "alice@example.com")

	refresh, err := e.issuer.IssueRefreshToken(ctx, u.ID)
	require.NoError(t, err)
	_, err = e.issuer.IssueAccessToken(ctx, u.ID)
	require.NoError(t, err)

	st, _, err := e.session.Check(ctx, refresh)
	require.NoError(t, err)
	assert.Equal(t, SessionValid, st)
}

func TestExpiredSessionIsDeleted(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "alice", "alice@example.com")

	e.issuer.Now = func() time.Time { return time.Now().Add(-time.Hour) }
	tok, err := e.issuer.IssueAccessToken(ctx, u.ID)
	require.NoError(t, err)

	st, _, err := e.session.Check(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, SessionExpired, st)

	row, err := e.tokens.FindByToken(ctx, tok)
	require.NoError(t, err)
	assert.Nil(t, row)

	st, _, err = e.session.Check(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, SessionNotFound, st)
}

func TestMalformedTokenIsBadJSON(t *testing.T) {
	e := newEnv(t)
	_, _, err := e.session.Check(context.Background(), "garbage")
	assert.True(t, errs.Is(err, errs.BadJSON))
}

func TestSigningNotConfigured(t *testing.T) {
	e := newEnv(t)
	issuer := NewTokenIssuer(&auth.JWTer{}, e.tokens, zap.NewNop())
	_, err := issuer.IssueAccessToken(context.Background(), adminUserID)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.SigningNotConfigured))
	assert.Equal(t, 500, errs.E(err).Status())
}
