// Package config loads the ecsign TOML configuration file.
package config

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/curves"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/digest"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/ec"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/ecdh"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/schnorr"
)

// Config holds the defaults the CLI applies before its flags.
//
// Example file:
//
//	curve     = "secp256k1"
//	nonce     = "rfc6979"
//	hash      = "sha256"
//	canonical = true
//	variant   = "bip340"
//	ecdh_mode = "x"
//	workers   = 4
//	log_level = "info"
//	log_format = "text"
type Config struct {
	Curve     string `toml:"curve"`
	Nonce     string `toml:"nonce"`
	Hash      string `toml:"hash"`
	Canonical bool   `toml:"canonical"`
	Variant   string `toml:"variant"`
	ECDHMode  string `toml:"ecdh_mode"`
	Workers   int    `toml:"workers"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Curve:     "secp256k1",
		Nonce:     ec.NonceRFC6979.String(),
		Hash:      digest.SHA256.String(),
		Canonical: true,
		Variant:   schnorr.BIP340.String(),
		ECDHMode:  ecdh.ModeX.String(),
		LogLevel:  logrus.InfoLevel.String(),
		LogFormat: "text",
	}
}

// Load reads path over the defaults. Unknown keys are an error. An empty
// path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrap(err, "config file")
	}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.Errorf("%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid %s", path)
	}
	return cfg, nil
}

// Validate checks every field resolves.
func (c *Config) Validate() error {
	if _, err := c.CurveID(); err != nil {
		return err
	}
	if _, err := c.SignConfig(); err != nil {
		return err
	}
	if _, err := schnorr.ParseVariant(c.Variant); err != nil {
		return err
	}
	if _, err := ecdh.ParseMode(c.ECDHMode); err != nil {
		return err
	}
	if c.Workers < 0 {
		return errors.Errorf("workers must not be negative, got %d", c.Workers)
	}
	_, err := c.Logger()
	return err
}

// CurveID resolves the curve name.
func (c *Config) CurveID() (curves.ID, error) {
	return curves.ByName(c.Curve)
}

// SignConfig builds the signing configuration.
func (c *Config) SignConfig() (ec.SignConfig, error) {
	cfg := ec.DefaultSignConfig()
	src, err := ec.ParseNonceSource(c.Nonce)
	if err != nil {
		return cfg, err
	}
	alg, err := digest.Parse(c.Hash)
	if err != nil {
		return cfg, err
	}
	cfg.Nonce = src
	cfg.Hash = alg
	cfg.Canonical = c.Canonical
	return cfg, nil
}

// Logger builds a logrus logger with the configured level and format.
func (c *Config) Logger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, errors.Wrap(err, "log_level")
	}
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(level)
	switch c.LogFormat {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, errors.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	return logger, nil
}
