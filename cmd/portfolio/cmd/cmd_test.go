package cmd

import (
	"bytes"
	"testing"

	"github.com/ibcoder/portfolio/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteUsers(t *testing.T) {
	users := []domain.User{
		{ID: "u1", Username: "ada", Email: "ada@gmail.com", EmailVerified: true, PasswordHash: "$2a$secret"},
	}

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeUsers(&buf, "table", users))

		out := buf.String()
		assert.Contains(t, out, "USERNAME")
		assert.Contains(t, out, "ada@gmail.com")
		assert.NotContains(t, out, "$2a$")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeUsers(&buf, "json", nil))
		assert.JSONEq(t, `{"users":[]}`, buf.String())
	})

	t.Run("unknown format", func(t *testing.T) {
		assert.Error(t, writeUsers(&bytes.Buffer{}, "yaml", users))
	})
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "portfolio v"+version+"\n", buf.String())
}
