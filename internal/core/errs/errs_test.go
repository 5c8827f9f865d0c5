package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryCodeHasStatus(t *testing.T) {
	for _, c := range Codes() {
		e := New(c)
		assert.NotEmpty(t, e.Description, c)
		st := e.Status()
		assert.True(t, st >= 400 && st < 600, "code %s -> %d", c, st)
	}
}

func TestKindStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:   http.StatusBadRequest,
		KindConflict:     http.StatusBadRequest,
		KindSyntax:       http.StatusBadRequest,
		KindRestriction:  http.StatusBadRequest,
		KindNotFound:     http.StatusNotFound,
		KindUnauthorized: http.StatusUnauthorized,
		KindForbidden:    http.StatusForbidden,
		KindRateLimited:  http.StatusTooManyRequests,
		KindUnavailable:  http.StatusServiceUnavailable,
		KindInternal:     http.StatusInternalServerError,
	}
	for k, want := range cases {
		assert.Equal(t, want, k.HTTPStatus(), k.String())
	}
}

func TestWrapAndIs(t *testing.T) {
	cause := errors.New("db down")
	err := fmt.Errorf("create role: %w", Wrap(RoleNameMustBeUnique, cause))

	assert.True(t, Is(err, RoleNameMustBeUnique))
	assert.False(t, Is(err, RoleNotFound))
	assert.True(t, errors.Is(err, New(RoleNameMustBeUnique)))
	assert.True(t, errors.Is(err, cause))

	e := E(err)
	require.NotNil(t, e)
	assert.Equal(t, KindConflict, e.Kind)
}

func TestENormalizesUnknown(t *testing.T) {
	assert.Nil(t, E(nil))
	e := E(errors.New("boom"))
	assert.Equal(t, Unknown, e.Code)
	assert.Equal(t, http.StatusInternalServerError, e.Status())
}

func TestFromCode(t *testing.T) {
	assert.Equal(t, PermissionDenied, FromCode("PERMISSION_DENIED").Code)
	assert.Equal(t, Unknown, FromCode("NOPE").Code)
}
