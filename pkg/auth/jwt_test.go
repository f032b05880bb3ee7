package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frontierlab/labdesk/internal/model"
)

func TestIssueAndParse(t *testing.T) {
	svc := NewTokenService("secret")

	token, err := svc.Issue(model.Operator{ID: "u-1", Name: "Front Desk"}, time.Hour)
	require.NoError(t, err)

	op, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", op.ID)
	assert.Equal(t, "Front Desk", op.Name)
}

func TestParseRejectsBadTokens(t *testing.T) {
	svc := NewTokenService("secret")

	other, err := NewTokenService("other").Issue(model.Operator{ID: "u-1"}, time.Hour)
	require.NoError(t, err)
	_, err = svc.Parse(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := svc.Issue(model.Operator{ID: "u-1"}, -time.Minute)
	require.NoError(t, err)
	_, err = svc.Parse(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noSubject, err := svc.Issue(model.Operator{}, time.Hour)
	require.NoError(t, err)
	_, err = svc.Parse(noSubject)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "u-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.Parse(none)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
