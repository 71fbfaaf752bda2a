package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xdao.co/hyperkeys/keys"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"HYPERKEYS_DIR", "HYPERKEYS_OUTPUT", "HYPERKEYS_ENCODING", "HYPERKEYS_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "dir: /srv/keys\noutput: json\nencoding: base58\nlog_level: debug\n")

	cfg, err := Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, Config{Dir: "/srv/keys", Output: "json", Encoding: "base58", LogLevel: "debug"}, cfg)
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	cfg, err := Load(missing, false)
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)

	_, err = Load(missing, true)
	require.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "dir: /from/file\noutput: yaml\n")
	t.Setenv("HYPERKEYS_DIR", "/from/env")
	t.Setenv("HYPERKEYS_OUTPUT", "text")

	cfg, err := Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.Dir)
	assert.Equal(t, "text", cfg.Output)
}

func TestLoadRejectsInvalid(t *testing.T) {
	clearEnv(t)
	for _, body := range []string{
		"output: xml\n",
		"encoding: z32\n",
		"encoding: mnemonic\n",
		"log_level: loud\n",
		"dir: [unterminated\n",
	} {
		_, err := Load(writeConfig(t, body), true)
		assert.Error(t, err, body)
	}
}

func TestStoreOptionsPrecedence(t *testing.T) {
	cfg := Config{Dir: "/process/default"}

	s, err := keys.New(cfg.StoreOptions("", nil))
	require.NoError(t, err)
	assert.Equal(t, "/process/default", s.Dir())

	s, err = keys.New(cfg.StoreOptions("/explicit", nil))
	require.NoError(t, err)
	assert.Equal(t, "/explicit", s.Dir())

	s, err = keys.New(Config{}.StoreOptions("", nil))
	require.NoError(t, err)
	def, err := keys.DefaultDirectory()
	require.NoError(t, err)
	assert.Equal(t, def, s.Dir())
}

func TestDefaultPath(t *testing.T) {
	t.Setenv(EnvConfig, "/etc/hyperkeys.yaml")
	p, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, "/etc/hyperkeys.yaml", p)

	t.Setenv(EnvConfig, "")
	p, err = DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, "config.yaml", filepath.Base(p))
}
