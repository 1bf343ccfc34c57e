package integration

import (
	"os"
	"testing"
)

var BaseURL string

func TestMain(m *testing.M) {
	// Integration tests need a running API; set API_BASE_URL to enable them.
	BaseURL = os.Getenv("API_BASE_URL")

	os.Exit(m.Run())
}

func requireServer(t *testing.T) {
	t.Helper()
	if BaseURL == "" {
		t.Skip("API_BASE_URL not set, skipping integration test")
	}
}
