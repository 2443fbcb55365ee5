package testutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig(t *testing.T) {
	cfg := Config(t)

	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "sqlite", cfg.GetDBDriver())
	assert.NotEqual(t, cfg.GetDBDSN(), Config(t).GetDBDSN(), "each call gets its own database")
}
