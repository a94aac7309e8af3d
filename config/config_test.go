package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCredentials = `users:
  - name: Ada Lovelace
    username: ada
    password: "$2a$10$abcdefghijklmnopqrstuv"
  - name: Bob
    username: bob
    password: "$2a$10$zyxwvutsrqponmlkjihgfe"
api_keys:
  serpapi_key: file-serp
  openai_key: file-openai
  session_secret: file-secret
`

func writeCredentials(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func environ(kv ...string) func() []string {
	return func() []string { return kv }
}

func getenv(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadDefaults(t *testing.T) {
	path := writeCredentials(t, sampleCredentials)

	cfg, err := Load(Options{
		EnvFile: filepath.Join(t.TempDir(), "missing.env"),
		Environ: environ("CREDENTIALS_FILE=" + path),
		Getenv:  getenv(nil),
	})
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "app.log", cfg.Log.File)
	assert.Equal(t, "https://serpapi.com", cfg.Search.BaseURL)
	assert.Equal(t, "google", cfg.Search.Engine)
	assert.Equal(t, "gpt-4o", cfg.LLM.DefaultModel)
	assert.Equal(t, 4000, cfg.LLM.MaxTokens)
	assert.True(t, cfg.LLM.PrependContext)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "memory", cfg.Session.Store)
	assert.Equal(t, 128, cfg.Search.CacheSize)
	assert.Equal(t, "10-M", cfg.RateLimit.Login)

	assert.Equal(t, "file-serp", cfg.Search.APIKey)
	assert.Equal(t, "file-openai", cfg.LLM.OpenAIKey)
	assert.Equal(t, "file-secret", cfg.Session.Secret)
	require.Len(t, cfg.Credentials.Users, 2)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	path := writeCredentials(t, sampleCredentials)

	cfg, err := Load(Options{
		EnvFile: filepath.Join(t.TempDir(), "missing.env"),
		Environ: environ(
			"CREDENTIALS_FILE="+path,
			"PORT=8081",
			"LOG_LEVEL=debug",
			"SEARCH_TIMEOUT=2s",
			"SEARCH_MAX_RETRIES=5",
			"LLM_MAX_TOKENS=512",
			"LLM_PREPEND_CONTEXT=false",
			"SESSION_TTL=30m",
			"UNRELATED=ignored",
		),
		Getenv: getenv(map[string]string{
			"USER_PASSWORD":  "$2a$10$fromenvfromenvfromenvf",
			"SERPAPI_KEY":    "env-serp",
			"GEMINI_API_KEY": "env-gemini",
		}),
	})
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 2*time.Second, cfg.Search.Timeout)
	assert.Equal(t, uint64(5), cfg.Search.MaxRetries)
	assert.Equal(t, 512, cfg.LLM.MaxTokens)
	assert.False(t, cfg.LLM.PrependContext)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)

	assert.Equal(t, "env-serp", cfg.Search.APIKey)
	assert.Equal(t, "file-openai", cfg.LLM.OpenAIKey)
	assert.Equal(t, "env-gemini", cfg.LLM.GeminiKey)
	assert.Equal(t, "$2a$10$fromenvfromenvfromenvf", cfg.Credentials.Users[0].Password)
	assert.Equal(t, "$2a$10$zyxwvutsrqponmlkjihgfe", cfg.Credentials.Users[1].Password)
}

func TestLoadEnvFile(t *testing.T) {
	path := writeCredentials(t, sampleCredentials)
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("SEARCHDOC_TEST_MARKER=loaded\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("SEARCHDOC_TEST_MARKER") })

	_, err := Load(Options{
		EnvFile: envFile,
		Environ: environ("CREDENTIALS_FILE=" + path),
		Getenv:  getenv(nil),
	})
	require.NoError(t, err)
	assert.Equal(t, "loaded", os.Getenv("SEARCHDOC_TEST_MARKER"))
}

func TestLoadMissingCredentials(t *testing.T) {
	_, err := Load(Options{
		EnvFile: filepath.Join(t.TempDir(), "missing.env"),
		Environ: environ("CREDENTIALS_FILE=" + filepath.Join(t.TempDir(), "nope.yml")),
		Getenv:  getenv(nil),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	path := writeCredentials(t, sampleCredentials)

	for name, env := range map[string]string{
		"bad level":    "LOG_LEVEL=chatty",
		"bad port":     "PORT=http",
		"bad url":      "SEARCH_BASE_URL=not a url",
		"zero ttl":     "SESSION_TTL=0s",
		"zero limit":   "LLM_MAX_CONTEXT_CHARS=0",
		"bad store":    "SESSION_STORE=disk",
		"redis no url": "SESSION_STORE=redis",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(Options{
				EnvFile: filepath.Join(t.TempDir(), "missing.env"),
				Environ: environ("CREDENTIALS_FILE="+path, env),
				Getenv:  getenv(nil),
			})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
		})
	}
}

func TestSessionSecretFallback(t *testing.T) {
	cfg := Default()
	cfg.SetCredentials(Credentials{})
	assert.Equal(t, FallbackSessionSecret, cfg.Session.Secret)
}
