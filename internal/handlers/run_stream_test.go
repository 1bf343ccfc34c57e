package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"simcontrol/internal/settings"
)

func TestCheckStreamOrigin(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com")
	settings.Reload()

	req := httptest.NewRequest(http.MethodGet, "/bot-simulation-runs/1/stream", nil)

	// non-browser clients send no Origin header
	assert.True(t, checkStreamOrigin(req))

	req.Header.Set("Origin", "https://app.example.com")
	assert.True(t, checkStreamOrigin(req))

	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, checkStreamOrigin(req))
}

func TestCheckStreamOriginNoConfiguredOrigins(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("ALLOWED_ORIGINS", "")
	settings.Reload()

	req := httptest.NewRequest(http.MethodGet, "/bot-simulation-runs/1/stream", nil)
	req.Header.Set("Origin", "https://app.example.com")
	assert.False(t, checkStreamOrigin(req))
}
