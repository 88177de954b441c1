package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/LedgerHQ/nanos-secure-sdk-sub002/internal/config"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/curves"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/ec"
)

// app is the state shared by the subcommands once the configuration is
// loaded.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *logrus.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:          "ecsign",
		Short:        "Elliptic curve signatures and key agreement",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to a TOML configuration file")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level (overrides the configuration file)")

	cmd.AddCommand(
		newKeygenCommand(a),
		newPubkeyCommand(a),
		newSignCommand(a),
		newVerifyCommand(a),
		newECDHCommand(a),
		newBatchCommand(a),
	)
	return cmd
}

func (a *app) load() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	logger, err := cfg.Logger()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	ec.SetLogger(logger)
	return nil
}

// curve resolves a --curve flag, falling back to the configured curve.
func (a *app) curve(name string) (curves.ID, error) {
	if name == "" {
		name = a.cfg.Curve
	}
	id, err := curves.ByName(name)
	if err != nil {
		return 0, errors.Wrap(err, "--curve")
	}
	return id, nil
}

func decodeHex(flag, s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrapf(err, "--%s", flag)
	}
	return b, nil
}

// message returns --message-hex when set, otherwise the --message text.
func message(text, hexText string) ([]byte, error) {
	if hexText != "" {
		return decodeHex("message-hex", hexText)
	}
	return []byte(text), nil
}

func printField(w io.Writer, name string, b []byte) {
	fmt.Fprintf(w, "%s: %x\n", name, b)
}
