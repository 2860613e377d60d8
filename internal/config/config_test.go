package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment cannot leak into tests.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range []string{
		BindPortEnvVar, BindAddressEnvVar, DBUrlEnvVar, DBUrlEnvVar + "_FILE",
		HostReadyTimeoutSecEnvVar, TelemetryEnabledEnvVar, LogLevelEnvVar, LogFormatEnvVar,
	} {
		t.Setenv(v, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	c, err := Load(afero.NewMemMapFs(), "")
	require.NoError(t, err)
	assert.Equal(t, BindPortDefault, c.Port)
	assert.Equal(t, BindAddressDefault, c.BindAddress)
	assert.Equal(t, HostReadyTimeoutSecDefault, c.ReadyTimeoutSec)
	assert.Empty(t, c.DatabaseURL)
	assert.False(t, c.TelemetryEnabled)
	assert.Equal(t, "http://127.0.0.1:8765", c.BaseURL())
	assert.Equal(t, "127.0.0.1:8765", c.ListenAddr())
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)

	fs := afero.NewMemMapFs()
	content := "port: \"9001\"\nready_timeout_sec: 3\ntelemetry_enabled: true\nlog_level: debug\n"
	require.NoError(t, afero.WriteFile(fs, DefaultConfigFile, []byte(content), 0o644))

	c, err := Load(fs, "")
	require.NoError(t, err)
	assert.Equal(t, "9001", c.Port)
	assert.Equal(t, 3, c.ReadyTimeoutSec)
	assert.True(t, c.TelemetryEnabled)
	assert.Equal(t, "debug", c.LogLevel)
}

func TestLoadExplicitFileMissing(t *testing.T) {
	clearEnv(t)

	_, err := Load(afero.NewMemMapFs(), "/etc/mathtools/missing.yaml")
	assert.Error(t, err)
}

func TestLoadMalformedFile(t *testing.T) {
	clearEnv(t)

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "bad.yaml", []byte("port: [1, 2"), 0o644))

	_, err := Load(fs, "bad.yaml")
	assert.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "conf.yaml", []byte("port: \"9001\"\n"), 0o644))

	t.Setenv(BindPortEnvVar, "9100")
	t.Setenv(HostReadyTimeoutSecEnvVar, "7")
	t.Setenv(TelemetryEnabledEnvVar, "FALSE")

	c, err := Load(fs, "conf.yaml")
	require.NoError(t, err)
	assert.Equal(t, "9100", c.Port)
	assert.Equal(t, 7, c.ReadyTimeoutSec)
	assert.False(t, c.TelemetryEnabled)
}

func TestInvalidEnvValues(t *testing.T) {
	testCases := []struct {
		name  string
		key   string
		value string
	}{
		{"bad port", BindPortEnvVar, "eighty"},
		{"port out of range", BindPortEnvVar, "70000"},
		{"bad timeout", HostReadyTimeoutSecEnvVar, "0"},
		{"bad telemetry flag", TelemetryEnabledEnvVar, "maybe"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)

			_, err := Load(afero.NewMemMapFs(), "")
			assert.Error(t, err)
		})
	}
}

func TestGetEnvOrFile(t *testing.T) {
	clearEnv(t)

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/run/secrets/db", []byte("postgres://u:p@db/x\n"), 0o600))

	t.Setenv(DBUrlEnvVar+"_FILE", "/run/secrets/db")
	v, err := GetEnvOrFile(fs, DBUrlEnvVar)
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db/x", v)

	t.Setenv(DBUrlEnvVar, "postgres://direct")
	v, err = GetEnvOrFile(fs, DBUrlEnvVar)
	require.NoError(t, err)
	assert.Equal(t, "postgres://direct", v)

	t.Setenv(DBUrlEnvVar, "")
	t.Setenv(DBUrlEnvVar+"_FILE", "/nope")
	_, err = GetEnvOrFile(fs, DBUrlEnvVar)
	assert.Error(t, err)
}

func TestBaseURLWildcardBind(t *testing.T) {
	c := Default()
	c.BindAddress = "0.0.0.0"
	assert.Equal(t, "http://127.0.0.1:8765", c.BaseURL())

	c.BindAddress = "::"
	assert.Equal(t, "http://[::1]:8765", c.BaseURL())
}

func TestAddressesWithIPv6Bind(t *testing.T) {
	c := Default()
	c.BindAddress = "::1"

	assert.Equal(t, "[::1]:8765", c.ListenAddr())
	assert.Equal(t, "http://[::1]:8765", c.BaseURL())

	c.BindAddress = "localhost"
	assert.Equal(t, "localhost:8765", c.ListenAddr())
	assert.Equal(t, "http://localhost:8765", c.BaseURL())
}
