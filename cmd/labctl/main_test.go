package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frontierlab/labdesk/pkg/auth"
	apperrors "github.com/frontierlab/labdesk/pkg/errors"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestReceiptRejectsUnknownCopyBeforeConnecting(t *testing.T) {
	_, err := run(t, "receipt", "--visit", "1", "--copy", "office")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestReportRequiresVisit(t *testing.T) {
	_, err := run(t, "report")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "visit")
}

func TestTokenIssue(t *testing.T) {
	t.Setenv("LAB_AUTH_SECRET", "test-secret")

	out, err := run(t, "token", "--operator", "u7", "--name", "Asma")
	require.NoError(t, err)

	op, err := auth.NewTokenService("test-secret").Parse(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "u7", op.ID)
	assert.Equal(t, "Asma", op.Name)
}

func TestTokenRequiresSecret(t *testing.T) {
	t.Setenv("LAB_AUTH_SECRET", "")

	_, err := run(t, "token", "--operator", "u7")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.secret")
}

func TestPruneSequencesRejectsZeroKeepDays(t *testing.T) {
	_, err := run(t, "migrate", "prune-sequences", "--keep-days", "0")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}
