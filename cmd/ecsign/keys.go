package main

import (
	"github.com/spf13/cobra"

	"github.com/LedgerHQ/nanos-secure-sdk-sub002/internal/arith"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/curves"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/ec"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/eddsa"
)

type keyOptions struct {
	curve      string
	key        string
	compressed bool
}

func newKeygenCommand(a *app) *cobra.Command {
	opts := &keyOptions{}
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a private key and print it with its public key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.curve(opts.curve)
			if err != nil {
				return err
			}
			priv, err := ec.GenerateKey(id, nil)
			if err != nil {
				return err
			}
			defer priv.Zero()
			pub, err := publicKey(priv, opts.compressed)
			if err != nil {
				return err
			}
			printField(cmd.OutOrStdout(), "private_key", priv.D)
			printField(cmd.OutOrStdout(), "public_key", pub)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.curve, "curve", "", "Curve name")
	flags.BoolVar(&opts.compressed, "compressed", false, "Print a SEC1 compressed Weierstrass key")
	return cmd
}

func newPubkeyCommand(a *app) *cobra.Command {
	opts := &keyOptions{}
	cmd := &cobra.Command{
		Use:   "pubkey",
		Short: "Derive the public key of a private key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			priv, err := a.privateKey(opts.curve, opts.key)
			if err != nil {
				return err
			}
			defer priv.Zero()
			pub, err := publicKey(priv, opts.compressed)
			if err != nil {
				return err
			}
			printField(cmd.OutOrStdout(), "public_key", pub)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.curve, "curve", "", "Curve name")
	flags.StringVar(&opts.key, "key", "", "Private key (hex)")
	flags.BoolVar(&opts.compressed, "compressed", false, "Print a SEC1 compressed Weierstrass key")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func (a *app) privateKey(curve, key string) (*ec.PrivateKey, error) {
	id, err := a.curve(curve)
	if err != nil {
		return nil, err
	}
	d, err := decodeHex("key", key)
	if err != nil {
		return nil, err
	}
	return ec.NewPrivateKey(id, d)
}

// publicKey renders the public key the way verify expects it back: the
// RFC 8032 encoding for Edwards curves, 0x04 || x || y or SEC1 compressed
// otherwise.
func publicKey(priv *ec.PrivateKey, compressed bool) ([]byte, error) {
	params, err := priv.Params()
	if err != nil {
		return nil, err
	}
	if params.Family == curves.TwistedEdwards {
		pub, err := eddsa.PublicKey(priv, eddsa.DefaultConfig(priv.Curve))
		if err != nil {
			return nil, err
		}
		return eddsa.Encode(pub)
	}
	pub, err := priv.PublicKey()
	if err != nil {
		return nil, err
	}
	if !compressed || params.Family != curves.Weierstrass {
		return pub.W, nil
	}
	p, err := pub.Point()
	if err != nil {
		return nil, err
	}
	return arith.MarshalCompressed(params, p), nil
}
