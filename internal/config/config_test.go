package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atharv3903/freightpath/internal/algo"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "freightpath.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestFromFlagsServer_Defaults(t *testing.T) {
	t.Setenv("FREIGHTPATH_CONFIG", "")
	cfg, err := FromFlagsServer(nil)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, algo.DuplicateLastWins, cfg.Policy())
	assert.GreaterOrEqual(t, cfg.Workers, 1)
}

func TestFromFlagsServer_Precedence(t *testing.T) {
	path := writeYAML(t, `
addr: ":9000"
workers: 3
duplicate_policy: keep-min
cache_capacity: 10
log_level: debug
read_timeout: 5s
`)
	t.Setenv("WORKERS", "5")
	t.Setenv("DB_DSN", "user:pw@tcp(db:3306)/freight")

	cfg, err := FromFlagsServer([]string{"-config", path, "-workers", "7"})
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, 7, cfg.Workers)
	assert.Equal(t, "user:pw@tcp(db:3306)/freight", cfg.MySQLDSN)
	assert.Equal(t, algo.DuplicateKeepMin, cfg.Policy())
	assert.Equal(t, 10, cfg.CacheCapacity)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.ReadTimeout)
}

func TestFromFlagsServer_EnvConfigPath(t *testing.T) {
	t.Setenv("FREIGHTPATH_CONFIG", writeYAML(t, "addr: \":7000\"\n"))
	cfg, err := FromFlagsServer(nil)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr)
}

func TestFromFlagsServer_MaxBody(t *testing.T) {
	t.Setenv("FREIGHTPATH_CONFIG", "")
	t.Setenv("MAX_BODY_BYTES", "4096")
	cfg, err := FromFlagsServer(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(4096), cfg.MaxBodyBytes)

	cfg, err = FromFlagsServer([]string{"-max-body", "1024"})
	require.NoError(t, err)
	assert.Equal(t, int64(1024), cfg.MaxBodyBytes)
}

func TestFromFlagsServer_BadEnv(t *testing.T) {
	t.Setenv("FREIGHTPATH_CONFIG", "")
	t.Setenv("WORKERS", "many")
	_, err := FromFlagsServer(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WORKERS")
}

func TestFromFlagsServer_MissingFile(t *testing.T) {
	_, err := FromFlagsServer([]string{"-config", filepath.Join(t.TempDir(), "nope.yaml")})
	assert.Error(t, err)
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Addr = ""
	cfg.Workers = 0
	cfg.DuplicatePolicy = "merge"
	cfg.LogFormat = "xml"
	cfg.Migrate = true
	cfg.MaxBodyBytes = 0

	err := cfg.Validate()
	require.Error(t, err)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 6)
}
