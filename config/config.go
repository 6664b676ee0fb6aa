package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gagliardetto/solana-go"
)

// Config is the market CLI configuration file.
type Config struct {
	DataDir     string `toml:"DataDir"`
	Environment string `toml:"Environment"`
	// ProgramID is the base58 address of the marketplace program every
	// derived address hangs off.
	ProgramID string `toml:"ProgramID"`
	// KeypairDir holds one JSON keypair file per named signer.
	KeypairDir string `toml:"KeypairDir"`
	LogLevel   string `toml:"LogLevel"`
	LogFile    string `toml:"LogFile,omitempty"`
	// PushGateway is the Prometheus push gateway URL metrics are pushed to
	// when a command finishes. Empty disables pushing.
	PushGateway     string    `toml:"PushGateway,omitempty"`
	RentPerByteYear uint64    `toml:"RentPerByteYear"`
	Telemetry       Telemetry `toml:"telemetry"`
}

// Environment variables consulted after the file is decoded. A .env file next
// to the working directory is loaded into the environment by the CLI.
const (
	EnvDataDir      = "MARKET_DATA_DIR"
	EnvProgramID    = "MARKET_PROGRAM_ID"
	EnvLogLevel     = "MARKET_LOG_LEVEL"
	EnvRentRate     = "MARKET_RENT_PER_BYTE_YEAR"
	EnvOTLPEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
	EnvOTLPHeaders  = "OTEL_EXPORTER_OTLP_HEADERS"
)

const (
	defaultLogLevel  = "info"
	defaultDataDir   = "./market-data"
	defaultKeyDir    = "keys"
	defaultRentValue = 3480
)

// Load loads the configuration from the given path, writing a default file
// when none exists.
func Load(path string) (*Config, error) {
	var cfg *Config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg, err = createDefault(path)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = &Config{}
		meta, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("config file %s has unknown field %s", path, undecoded[0])
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults(path)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Program returns the configured program id.
func (c *Config) Program() (solana.PublicKey, error) {
	return solana.PublicKeyFromBase58(strings.TrimSpace(c.ProgramID))
}

func (c *Config) applyDefaults(path string) {
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = defaultDataDir
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = defaultLogLevel
	}
	if strings.TrimSpace(c.KeypairDir) == "" {
		c.KeypairDir = filepath.Join(filepath.Dir(path), defaultKeyDir)
	}
	if c.RentPerByteYear == 0 {
		c.RentPerByteYear = defaultRentValue
	}
}

func applyEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		cfg.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvProgramID)); v != "" {
		cfg.ProgramID = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRentRate)); v != "" {
		rate, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRentRate, err)
		}
		cfg.RentPerByteYear = rate
	}
	if v := strings.TrimSpace(os.Getenv(EnvOTLPEndpoint)); v != "" {
		cfg.Telemetry.Endpoint = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvOTLPHeaders)); v != "" {
		cfg.Telemetry.Headers = v
	}
	return nil
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{
		DataDir:         defaultDataDir,
		Environment:     "local",
		ProgramID:       solana.NewWallet().PublicKey().String(),
		KeypairDir:      filepath.Join(filepath.Dir(path), defaultKeyDir),
		LogLevel:        defaultLogLevel,
		RentPerByteYear: defaultRentValue,
		Telemetry:       Telemetry{Endpoint: "localhost:4318", Insecure: true},
	}
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
