package validation_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/user/gotodo-api/apperror"
	"github.com/user/gotodo-api/validation"
)

func TestRules(t *testing.T) {
	t.Run("required", func(t *testing.T) {
		ok, _ := validation.Required()("")
		require.False(t, ok)
		ok, _ = validation.Required()("x")
		require.True(t, ok)
	})

	t.Run("non space", func(t *testing.T) {
		ok, _ := validation.NonSpace()("   ")
		require.False(t, ok)
		// ideographic space counts as whitespace too
		ok, _ = validation.NonSpace()("　　")
		require.False(t, ok)
		ok, _ = validation.NonSpace()("  x  ")
		require.True(t, ok)
	})

	t.Run("max len", func(t *testing.T) {
		ok, _ := validation.MaxLen(3)("abc")
		require.True(t, ok)
		ok, _ = validation.MaxLen(3)("abcd")
		require.False(t, ok)
	})

	t.Run("email", func(t *testing.T) {
		ok, _ := validation.Email()("alice@x.com")
		require.True(t, ok)
		for _, bad := range []string{"alice", "alice@", "@x.com", "a b@x.com"} {
			ok, _ := validation.Email()(bad)
			require.False(t, ok, "expected %q to be rejected", bad)
		}
	})
}

func TestValidatorAggregation(t *testing.T) {
	v := validation.New()
	v.Field("name", "", validation.Required(), validation.NonSpace(), validation.MaxLen(64))
	v.Field("email", "not-an-email", validation.Required(), validation.MaxLen(255), validation.Email())
	v.Field("title", strings.Repeat("a", 300), validation.Required(), validation.MaxLen(255))
	v.Check("isDone", false, "is required")

	require.False(t, v.Valid())
	err := v.Err()
	require.Error(t, err)
	require.True(t, apperror.IsValidationError(err))

	appErr, ok := apperror.FromError(err)
	require.True(t, ok)
	require.Equal(t, []string{"is required"}, appErr.Fields["name"], "absent field reports only the required message")
	require.Equal(t, []string{"must be a valid email address"}, appErr.Fields["email"])
	require.Equal(t, []string{"must be at most 255 characters"}, appErr.Fields["title"])
	require.Equal(t, []string{"is required"}, appErr.Fields["isDone"])
}

func TestValidatorPass(t *testing.T) {
	v := validation.New()
	v.Field("name", "alice", validation.Required(), validation.NonSpace(), validation.MaxLen(64))
	v.Check("isDone", true, "is required")
	require.True(t, v.Valid())
	require.NoError(t, v.Err())
}
