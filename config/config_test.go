package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/charge-engine/charge"
	"github.com/warp/charge-engine/config"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := config.Load("")

	require.NoError(t, err)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, 15*time.Second, c.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, c.Server.IdleTimeout)
	assert.Equal(t, "charges.db", c.Database.Path)
	assert.Equal(t, 10, c.Calc.DefaultPrecision)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, "json", c.Log.Format)
	assert.True(t, c.Catalog.SeedPresets)
	assert.NotEmpty(t, c.CORS.AllowedOrigins)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "charges.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
port = 9090
write_timeout = "5s"

[calc]
default_precision = 6

[log]
format = "console"
`), 0o644))

	c, err := config.Load(path)

	require.NoError(t, err)
	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, 5*time.Second, c.Server.WriteTimeout)
	assert.Equal(t, 6, c.Calc.DefaultPrecision)
	assert.Equal(t, "console", c.Log.Format)
	assert.Equal(t, "charges.db", c.Database.Path, "unset keys keep defaults")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("CHARGES_DATABASE_PATH", ":memory:")
	t.Setenv("CHARGES_CALC_DEFAULT_PRECISION", "4")

	c, err := config.Load("")

	require.NoError(t, err)
	assert.Equal(t, ":memory:", c.Database.Path)
	assert.Equal(t, 4, c.Calc.DefaultPrecision)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid, err := config.Load("")
	require.NoError(t, err)

	badPort := valid
	badPort.Server.Port = 0
	assert.ErrorIs(t, badPort.Validate(), config.ErrInvalidConfig)

	badPrecision := valid
	badPrecision.Calc.DefaultPrecision = -1
	assert.ErrorIs(t, badPrecision.Validate(), config.ErrInvalidConfig)

	hugePrecision := valid
	hugePrecision.Calc.DefaultPrecision = charge.MaxPrecision + 1
	assert.ErrorIs(t, hugePrecision.Validate(), config.ErrInvalidConfig)

	badFormat := valid
	badFormat.Log.Format = "xml"
	assert.ErrorIs(t, badFormat.Validate(), config.ErrInvalidConfig)
}

func TestLogConfig_NewLogger(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		logger, err := config.LogConfig{Level: "debug", Format: format}.NewLogger()
		require.NoError(t, err, format)
		assert.True(t, logger.Core().Enabled(-1), format)
	}

	_, err := config.LogConfig{Level: "loud", Format: "json"}.NewLogger()
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
