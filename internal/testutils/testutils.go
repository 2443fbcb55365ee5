// Package testutils holds helpers shared by tests across packages.
package testutils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ibcoder/portfolio/internal/config"
	"github.com/joho/godotenv"
)

// SessionSecret signs cookies in tests.
const SessionSecret = "a-very-secret-key-for-testing-!"

// MemoryDSN returns a DSN for a private in-memory SQLite database.
func MemoryDSN() string {
	return "file:" + uuid.NewString() + "?mode=memory&cache=shared"
}

// Config returns a configuration for tests: values from the project's
// .env.test when it exists, then in-memory storage and test secrets on top.
func Config(t *testing.T) *config.Config {
	t.Helper()

	if root, ok := projectRoot(); ok {
		if env, err := godotenv.Read(filepath.Join(root, ".env.test")); err == nil {
			for key, value := range env {
				t.Setenv(key, value)
			}
		}
	}

	cfg := config.FromEnv()
	cfg.AppBaseURL = "http://portfolio.test"
	cfg.SessionSecret = SessionSecret
	cfg.SubmitTimeout = 5 * time.Second
	cfg.FormGateway = "local"
	cfg.DBDriver = "sqlite"
	cfg.DBDSN = MemoryDSN()
	cfg.ContactArchiveDir = "archive"
	cfg.EmailProvider = "log"
	cfg.AdminAPIToken = ""
	return cfg
}

// projectRoot walks up from the working directory to the go.mod.
func projectRoot() (string, bool) {
	path, err := os.Getwd()
	if err != nil {
		return "", false
	}
	for {
		if _, err := os.Stat(filepath.Join(path, "go.mod")); err == nil {
			return path, true
		}
		if path == filepath.Dir(path) {
			return "", false
		}
		path = filepath.Dir(path)
	}
}
