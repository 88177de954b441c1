package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/digest"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/ec"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/ecdsa"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/eddsa"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/mode"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/schnorr"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/verifier"
)

var errInvalidSignature = errors.New("signature is not valid")

type signOptions struct {
	curve       string
	key         string
	pub         string
	algorithm   string
	variant     string
	nonce       string
	hash        string
	k           string
	aux         string
	noCanonical bool
	legacyMode  uint32
	message     string
	messageHex  string
	signature   string
}

func addMessageFlags(cmd *cobra.Command, opts *signOptions) {
	flags := cmd.Flags()
	flags.StringVar(&opts.curve, "curve", "", "Curve name")
	flags.StringVarP(&opts.algorithm, "algorithm", "a", string(verifier.ECDSA), "Signature scheme: ecdsa, eddsa or schnorr")
	flags.StringVar(&opts.variant, "variant", "", "Schnorr variant")
	flags.StringVar(&opts.hash, "hash", "", "Digest algorithm")
	flags.StringVarP(&opts.message, "message", "m", "", "Message text")
	flags.StringVar(&opts.messageHex, "message-hex", "", "Message bytes (hex)")
}

func newSignCommand(a *app) *cobra.Command {
	opts := &signOptions{}
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a message",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSign(cmd, a, opts)
		},
	}
	addMessageFlags(cmd, opts)
	flags := cmd.Flags()
	flags.StringVar(&opts.key, "key", "", "Private key (hex)")
	flags.StringVar(&opts.nonce, "nonce", "", "Nonce source: rfc6979, random or provided")
	flags.StringVar(&opts.k, "k", "", "Provided nonce (hex)")
	flags.StringVar(&opts.aux, "aux", "", "BIP-340 auxiliary randomness (hex)")
	flags.BoolVar(&opts.noCanonical, "no-canonical", false, "Keep high-S signatures")
	flags.Uint32Var(&opts.legacyMode, "mode", 0, "Legacy packed mode flags; overrides --nonce, --variant and --no-canonical")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

// signConfig layers the command flags over the configuration file.
func (a *app) signConfig(opts *signOptions) (ec.SignConfig, error) {
	cfg, err := a.cfg.SignConfig()
	if err != nil {
		return cfg, err
	}
	if opts.nonce != "" {
		if cfg.Nonce, err = ec.ParseNonceSource(opts.nonce); err != nil {
			return cfg, err
		}
	}
	if opts.hash != "" {
		if cfg.Hash, err = digest.Parse(opts.hash); err != nil {
			return cfg, errors.Wrap(err, "--hash")
		}
	}
	if opts.noCanonical {
		cfg.Canonical = false
	}
	if opts.legacyMode != 0 {
		m, err := mode.Flags(opts.legacyMode).SignConfig()
		if err != nil {
			return cfg, err
		}
		cfg.Nonce, cfg.Canonical = m.Nonce, m.Canonical
	}
	if opts.k != "" {
		if cfg.K, err = decodeHex("k", opts.k); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func (a *app) schnorrConfig(opts *signOptions) (schnorr.Config, error) {
	sc, err := a.signConfig(opts)
	if err != nil {
		return schnorr.Config{}, err
	}
	name := opts.variant
	if name == "" {
		name = a.cfg.Variant
	}
	v, err := schnorr.ParseVariant(name)
	if err != nil {
		return schnorr.Config{}, err
	}
	if opts.legacyMode != 0 {
		if v, err = mode.Flags(opts.legacyMode).SchnorrVariant(); err != nil {
			return schnorr.Config{}, err
		}
	}
	cfg := schnorr.Config{SignConfig: sc, Variant: v}
	if opts.aux != "" {
		if cfg.Aux, err = decodeHex("aux", opts.aux); err != nil {
			return schnorr.Config{}, err
		}
	}
	return cfg, nil
}

func runSign(cmd *cobra.Command, a *app, opts *signOptions) error {
	priv, err := a.privateKey(opts.curve, opts.key)
	if err != nil {
		return err
	}
	defer priv.Zero()
	msg, err := message(opts.message, opts.messageHex)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	switch verifier.Algorithm(opts.algorithm) {
	case verifier.ECDSA:
		cfg, err := a.signConfig(opts)
		if err != nil {
			return err
		}
		h, err := digest.Sum(cfg.Hash, 0, msg)
		if err != nil {
			return errors.Wrap(err, "--hash")
		}
		res, err := ecdsa.Sign(priv, h, cfg)
		if err != nil {
			return err
		}
		printField(out, "signature", res.Signature)
		fmt.Fprintf(out, "recovery_id: %d\n", res.Info.RecoveryID())

	case verifier.EdDSA:
		cfg := eddsa.DefaultConfig(priv.Curve)
		if opts.hash != "" {
			if cfg.Hash, err = digest.Parse(opts.hash); err != nil {
				return errors.Wrap(err, "--hash")
			}
		}
		sig, err := eddsa.Sign(priv, msg, cfg)
		if err != nil {
			return err
		}
		printField(out, "signature", sig)

	case verifier.Schnorr:
		cfg, err := a.schnorrConfig(opts)
		if err != nil {
			return err
		}
		res, err := schnorr.Sign(priv, msg, cfg)
		if err != nil {
			return err
		}
		printField(out, "signature", res.Signature)

	default:
		return errors.Errorf("unknown algorithm %q", opts.algorithm)
	}
	return nil
}

func newVerifyCommand(a *app) *cobra.Command {
	opts := &signOptions{}
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a signature; exits non-zero when it does not verify",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, a, opts)
		},
	}
	addMessageFlags(cmd, opts)
	flags := cmd.Flags()
	flags.StringVar(&opts.pub, "pub", "", "Public key (hex)")
	flags.StringVarP(&opts.signature, "signature", "s", "", "Signature (hex)")
	_ = cmd.MarkFlagRequired("pub")
	_ = cmd.MarkFlagRequired("signature")
	return cmd
}

func runVerify(cmd *cobra.Command, a *app, opts *signOptions) error {
	rec := verifier.Record{
		Algorithm: opts.algorithm,
		Curve:     opts.curve,
		Variant:   opts.variant,
		PublicKey: opts.pub,
		Digest:    opts.hash,
		Signature: opts.signature,
	}
	if rec.Curve == "" {
		rec.Curve = a.cfg.Curve
	}
	if rec.Variant == "" {
		rec.Variant = a.cfg.Variant
	}
	job, err := rec.Job(0)
	if err != nil {
		return err
	}
	if job.Message, err = message(opts.message, opts.messageHex); err != nil {
		return err
	}
	if job.Algorithm != verifier.EdDSA && job.Digest == 0 {
		sc, err := a.cfg.SignConfig()
		if err != nil {
			return err
		}
		job.Digest = sc.Hash
	}

	ok, err := verifier.Verify(job)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "invalid")
		return errInvalidSignature
	}
	fmt.Fprintln(cmd.OutOrStdout(), "valid")
	return nil
}
