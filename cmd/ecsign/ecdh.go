package main

import (
	"github.com/spf13/cobra"

	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/ecdh"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/mode"
)

type ecdhOptions struct {
	curve      string
	key        string
	peer       string
	mode       string
	legacyMode uint32
	x25519     bool
}

func newECDHCommand(a *app) *cobra.Command {
	opts := &ecdhOptions{}
	cmd := &cobra.Command{
		Use:   "ecdh",
		Short: "Derive a shared secret with a peer public key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runECDH(cmd, a, opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.curve, "curve", "", "Curve name")
	flags.StringVar(&opts.key, "key", "", "Private key (hex)")
	flags.StringVar(&opts.peer, "peer", "", "Peer public key, 0x04 || x || y (hex)")
	flags.StringVar(&opts.mode, "output", "", "Output: point or x")
	flags.Uint32Var(&opts.legacyMode, "mode", 0, "Legacy packed mode flags; overrides --output")
	flags.BoolVar(&opts.x25519, "x25519", false, "Run RFC 7748 X25519 on little-endian key and peer u")
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("peer")
	return cmd
}

func runECDH(cmd *cobra.Command, a *app, opts *ecdhOptions) error {
	peer, err := decodeHex("peer", opts.peer)
	if err != nil {
		return err
	}
	if opts.x25519 {
		scalar, err := decodeHex("key", opts.key)
		if err != nil {
			return err
		}
		secret, err := ecdh.X25519(scalar, peer)
		if err != nil {
			return err
		}
		printField(cmd.OutOrStdout(), "shared_secret", secret)
		return nil
	}

	priv, err := a.privateKey(opts.curve, opts.key)
	if err != nil {
		return err
	}
	defer priv.Zero()

	name := opts.mode
	if name == "" {
		name = a.cfg.ECDHMode
	}
	m, err := ecdh.ParseMode(name)
	if err != nil {
		return err
	}
	if opts.legacyMode != 0 {
		if m, err = mode.Flags(opts.legacyMode).ECDHMode(); err != nil {
			return err
		}
	}

	size, err := ecdh.OutputLen(priv.Curve, m)
	if err != nil {
		return err
	}
	secret := make([]byte, size)
	n, err := ecdh.Derive(secret, priv, peer, m, nil)
	if err != nil {
		return err
	}
	printField(cmd.OutOrStdout(), "shared_secret", secret[:n])
	return nil
}
