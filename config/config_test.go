package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"nftmarket/native/market"
)

func TestLoadCreatesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "market.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.FileExists(t, path)
	require.Equal(t, defaultDataDir, cfg.DataDir)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, filepath.Join(dir, "keys"), cfg.KeypairDir)
	require.EqualValues(t, 3480, cfg.RentPerByteYear)
	_, err = cfg.Program()
	require.NoError(t, err)

	// A second load reads the persisted program id back.
	again, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.ProgramID, again.ProgramID)
}

func TestLoadParsesFile(t *testing.T) {
	program := solana.NewWallet().PublicKey().String()
	path := filepath.Join(t.TempDir(), "market.toml")
	contents := `DataDir = "/var/lib/market"
Environment = "devnet"
ProgramID = "` + program + `"
LogLevel = "debug"
LogFile = "/var/log/market.log"
PushGateway = "http://127.0.0.1:9091"
RentPerByteYear = 10

[telemetry]
Endpoint = "collector:4318"
Traces = true
SampleRatio = 0.25
Headers = "x-api-key=abc"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/var/lib/market", cfg.DataDir)
	require.Equal(t, "devnet", cfg.Environment)
	require.Equal(t, program, cfg.ProgramID)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "/var/log/market.log", cfg.LogFile)
	require.Equal(t, "http://127.0.0.1:9091", cfg.PushGateway)
	require.EqualValues(t, 10, cfg.RentPerByteYear)
	require.True(t, cfg.Telemetry.Enabled())
	require.Equal(t, 0.25, cfg.Telemetry.SampleRatio)
	require.Equal(t, "x-api-key=abc", cfg.Telemetry.Headers)
}

func TestLoadRejectsUnknownAndInvalid(t *testing.T) {
	dir := t.TempDir()
	program := solana.NewWallet().PublicKey().String()

	unknown := filepath.Join(dir, "unknown.toml")
	require.NoError(t, os.WriteFile(unknown, []byte(`ProgramID = "`+program+`"
Bogus = 1
`), 0o600))
	_, err := Load(unknown)
	require.ErrorContains(t, err, "Bogus")

	badProgram := filepath.Join(dir, "program.toml")
	require.NoError(t, os.WriteFile(badProgram, []byte(`ProgramID = "not-base58!"`), 0o600))
	_, err = Load(badProgram)
	require.ErrorContains(t, err, "ProgramID")

	badLevel := filepath.Join(dir, "level.toml")
	require.NoError(t, os.WriteFile(badLevel, []byte(`ProgramID = "`+program+`"
LogLevel = "loud"
`), 0o600))
	_, err = Load(badLevel)
	require.ErrorContains(t, err, "LogLevel")

	badGateway := filepath.Join(dir, "gateway.toml")
	require.NoError(t, os.WriteFile(badGateway, []byte(`ProgramID = "`+program+`"
PushGateway = "localhost:9091"
`), 0o600))
	_, err = Load(badGateway)
	require.ErrorContains(t, err, "PushGateway")

	badRatio := filepath.Join(dir, "ratio.toml")
	require.NoError(t, os.WriteFile(badRatio, []byte(`ProgramID = "`+program+`"
[telemetry]
Endpoint = "collector:4318"
Metrics = true
SampleRatio = 2.0
`), 0o600))
	_, err = Load(badRatio)
	require.ErrorContains(t, err, "SampleRatio")
}

func TestEnvironmentOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "market.toml")
	program := solana.NewWallet().PublicKey().String()
	t.Setenv(EnvDataDir, "/tmp/override")
	t.Setenv(EnvProgramID, program)
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvRentRate, "42")
	t.Setenv(EnvOTLPHeaders, "authorization=Bearer t")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/tmp/override", cfg.DataDir)
	require.Equal(t, program, cfg.ProgramID)
	require.Equal(t, "warn", cfg.LogLevel)
	require.EqualValues(t, 42, cfg.RentPerByteYear)
	require.Equal(t, "authorization=Bearer t", cfg.Telemetry.Headers)

	t.Setenv(EnvRentRate, "lots")
	_, err = Load(path)
	require.Error(t, err)
}

func TestParseTiers(t *testing.T) {
	tiers, err := ParseTiers([]byte(`tiers:
  - amount: 500
    cost: 10000000
  - amount: 2000
    cost: 35000000
    bonus: 200
  - amount: 5000
    cost: 80000000
    bonus: 1000
`))
	require.NoError(t, err)
	require.Equal(t, market.Tier3, tiers[2].Tier)
	require.EqualValues(t, 200, tiers[1].Bonus)
	require.EqualValues(t, 10_000_000, tiers[0].Cost)

	_, err = ParseTiers([]byte("tiers:\n  - amount: 1\n    cost: 1\n"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "tiers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tiers: [{amount: 1, cost: 1}, {amount: 2, cost: 2}, {amount: 3, cost: 3}]"), 0o600))
	loaded, err := LoadTiers(path)
	require.NoError(t, err)
	require.EqualValues(t, 3, loaded[2].Amount)
}
