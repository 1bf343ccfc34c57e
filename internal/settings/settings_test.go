package settings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaultsToProduction(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("LOG_LEVEL", "")

	s := Load()
	assert.Equal(t, EnvProduction, s.Env)
	assert.Equal(t, "simcontrol", s.DBName)
	assert.Equal(t, "info", s.LogLevel)
	assert.False(t, s.Debug)
}

func TestLoadTestingTier(t *testing.T) {
	t.Setenv("APP_ENV", "testing")
	t.Setenv("DB_NAME", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("EMAIL_HOST", "smtp.example.com")

	s := Load()
	assert.Equal(t, EnvTesting, s.Env)
	assert.Equal(t, "simcontrol_test", s.DBName)
	assert.Equal(t, "debug", s.LogLevel)
	assert.True(t, s.Debug)
	// Testing never sends real mail even with a host configured.
	assert.True(t, s.Email.LogOnly)
}

func TestLoadStagingOriginDefault(t *testing.T) {
	t.Setenv("APP_ENV", "staging")
	t.Setenv("ALLOWED_ORIGINS", "")

	s := Load()
	assert.Equal(t, []string{"http://localhost:3000"}, s.AllowedOrigins)
	assert.Equal(t, "simcontrol_staging", s.DBName)
}

func TestLoadUnknownTierFallsBack(t *testing.T) {
	t.Setenv("APP_ENV", "qa")

	s := Load()
	assert.Equal(t, EnvProduction, s.Env)
}

func TestAllowedOriginsParsing(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("ALLOWED_ORIGINS", " https://app.example.com, https://admin.example.com ,,")

	s := Load()
	assert.Equal(t,
		[]string{"https://app.example.com", "https://admin.example.com"},
		s.AllowedOrigins)
}

func TestEnvOverridesTierDefault(t *testing.T) {
	t.Setenv("APP_ENV", "testing")
	t.Setenv("DB_NAME", "custom_db")
	t.Setenv("STALE_RUN_CUTOFF", "45m")

	s := Load()
	assert.Equal(t, "custom_db", s.DBName)
	assert.Equal(t, 45*time.Minute, s.StaleRunCutoff)
}

func TestEmailLogOnlyWithoutHost(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("EMAIL_HOST", "")

	s := Load()
	assert.True(t, s.Email.LogOnly)
}
