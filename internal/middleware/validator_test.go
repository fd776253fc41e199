package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateProjectID(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateProjectID("scan-2026_01"))
	require.Error(t, ValidateProjectID(""))
	require.Error(t, ValidateProjectID("bad!slug"))
	require.Error(t, ValidateProjectID("a/b"))
}

func TestValidateTenantID(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateTenantID("acme"))
	require.Error(t, ValidateTenantID(""))
	require.Error(t, ValidateTenantID("white space"))
}

func TestValidatePageSize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 20, ValidatePageSize(0))
	assert.Equal(t, 20, ValidatePageSize(-5))
	assert.Equal(t, 50, ValidatePageSize(50))
	assert.Equal(t, 100, ValidatePageSize(500))
}

func TestSanitizeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "hello", SanitizeString("hello\x00"))
	assert.Equal(t, "a b", SanitizeString("  a b \x07 "))
}
