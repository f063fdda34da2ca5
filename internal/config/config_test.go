package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv isolates tests from the developer's shell.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APP_ENV", "LOG_LEVEL", "SERVER_ADDR", "SERVER_CORS_ALLOWED_ORIGINS",
		"IDP_DRIVER", "AWS_REGION", "IDP_REGION", "IDP_CLIENT_ID", "IDP_CLIENT_SECRET",
		"IDP_ENDPOINT", "IDP_TIMEOUT", "LOCAL_IDP_STORE", "LOCAL_IDP_CODE_SENDER", "LOCAL_IDP_SIGNING_KEY",
		"REDIS_ADDR", "SMTP_HOST", "SMTP_FROM", "METRICS_ENABLED",
	} {
		t.Setenv(k, "")
	}
}

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_YAMLWithDefaults(t *testing.T) {
	clearEnv(t)
	p := writeYAML(t, `
idp:
  region: eu-west-1
  client_id: abc123
  client_secret: shh
server:
  cors_allowed_origins: ["https://app.example.com"]
`)

	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, DriverCognito, cfg.IDP.Driver)
	assert.Equal(t, "eu-west-1", cfg.IDP.Region)
	assert.Equal(t, "abc123", cfg.IDP.ClientID)
	assert.Equal(t, "shh", cfg.IDP.ClientSecret.Value())
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.IDP.Timeout)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	clearEnv(t)
	p := writeYAML(t, `
idp:
  region: eu-west-1
  client_id: from-yaml
`)
	t.Setenv("IDP_CLIENT_ID", "from-env")
	t.Setenv("IDP_CLIENT_SECRET", "env-secret")
	t.Setenv("IDP_TIMEOUT", "3s")
	t.Setenv("SERVER_CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.IDP.ClientID)
	assert.Equal(t, "env-secret", cfg.IDP.ClientSecret.Value())
	assert.Equal(t, 3*time.Second, cfg.IDP.Timeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSAllowedOrigins)
}

func TestLoad_MissingFileUsesEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("IDP_CLIENT_ID", "cid")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", cfg.IDP.Region)
	assert.False(t, cfg.IDP.ClientSecret.IsSet())
}

func TestLoad_IDPRegionWinsOverAWSRegion(t *testing.T) {
	clearEnv(t)
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("IDP_REGION", "sa-east-1")
	t.Setenv("IDP_CLIENT_ID", "cid")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "sa-east-1", cfg.IDP.Region)
}

func TestValidate(t *testing.T) {
	t.Run("cognito requires region", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("IDP_CLIENT_ID", "cid")
		_, err := FromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "idp.region")
	})

	t.Run("cognito requires client id", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("IDP_REGION", "us-east-1")
		_, err := FromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "idp.client_id")
	})

	t.Run("local driver fills a client id", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("IDP_DRIVER", "local")
		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, "local-client", cfg.IDP.ClientID)
		assert.Equal(t, "memory", cfg.Local.Store)
	})

	t.Run("local redis store requires addr", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("IDP_DRIVER", "local")
		t.Setenv("LOCAL_IDP_STORE", "redis")
		_, err := FromEnv()
		require.Error(t, err)
	})

	t.Run("validate has no side effects", func(t *testing.T) {
		var c Config
		c.IDP.Driver = DriverLocal
		c.Local.Store = "memory"
		c.Local.CodeSender = "log"
		require.NoError(t, c.Validate())
		assert.Empty(t, c.IDP.ClientID)
	})

	t.Run("unknown driver", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("IDP_DRIVER", "okta")
		_, err := FromEnv()
		require.Error(t, err)
	})
}

func TestSecret_NeverPrinted(t *testing.T) {
	s := Secret("super-secret")

	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", s))
	assert.NotContains(t, fmt.Sprintf("%#v", s), "super-secret")

	b, err := json.Marshal(struct{ S Secret }{s})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "super-secret")

	assert.Equal(t, "", Secret("").String())
}
