package verifier

import (
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"

	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/curves"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/digest"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/ec"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/ecdsa"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/eddsa"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/schnorr"
)

// Algorithm names a signature scheme.
type Algorithm string

// Supported schemes.
const (
	ECDSA   Algorithm = "ecdsa"
	EdDSA   Algorithm = "eddsa"
	Schnorr Algorithm = "schnorr"
)

// Job is one signature to check.
type Job struct {
	Index     int
	Algorithm Algorithm
	Curve     curves.ID
	Variant   schnorr.Variant  // Schnorr only
	Digest    digest.Algorithm // zero selects the scheme default
	PublicKey []byte
	Message   []byte
	Signature []byte
}

// Record is the textual form of a job shared by the JSON and CSV formats.
// Binary fields are hex, optionally 0x-prefixed. A message without the 0x
// prefix is taken verbatim.
type Record struct {
	Algorithm string `json:"algorithm"`
	Curve     string `json:"curve"`
	Variant   string `json:"variant,omitempty"`
	PublicKey string `json:"public_key"`
	Message   string `json:"message"`
	Digest    string `json:"digest,omitempty"`
	Signature string `json:"signature"`
}

func hexDecode(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	s = strings.TrimPrefix(s, "0X")
	return hex.DecodeString(s)
}

// Job validates the record and converts it.
func (r *Record) Job(index int) (*Job, error) {
	job := &Job{Index: index, Algorithm: Algorithm(strings.ToLower(strings.TrimSpace(r.Algorithm)))}
	switch job.Algorithm {
	case ECDSA, EdDSA, Schnorr:
	default:
		return nil, errors.Errorf("job %d: unknown algorithm %q", index, r.Algorithm)
	}

	var err error
	if job.Curve, err = curves.ByName(r.Curve); err != nil {
		return nil, errors.Wrapf(err, "job %d", index)
	}
	if job.Algorithm == Schnorr {
		name := r.Variant
		if name == "" {
			name = schnorr.BIP340.String()
		}
		if job.Variant, err = schnorr.ParseVariant(name); err != nil {
			return nil, errors.Wrapf(err, "job %d", index)
		}
	}
	if r.Digest != "" {
		if job.Digest, err = digest.Parse(r.Digest); err != nil {
			return nil, errors.Wrapf(err, "job %d", index)
		}
	}
	if job.PublicKey, err = hexDecode(r.PublicKey); err != nil {
		return nil, errors.Wrapf(err, "job %d: public_key", index)
	}
	if job.Signature, err = hexDecode(r.Signature); err != nil {
		return nil, errors.Wrapf(err, "job %d: signature", index)
	}
	if strings.HasPrefix(r.Message, "0x") {
		if job.Message, err = hexDecode(r.Message); err != nil {
			return nil, errors.Wrapf(err, "job %d: message", index)
		}
	} else {
		job.Message = []byte(r.Message)
	}
	return job, nil
}

// Verify checks a single job. ECDSA jobs hash the message with the job
// digest, SHA-256 by default; the other schemes hash internally.
func Verify(job *Job) (bool, error) {
	pub := &ec.PublicKey{Curve: job.Curve, W: job.PublicKey}
	switch job.Algorithm {
	case ECDSA:
		alg := job.Digest
		if alg == 0 {
			alg = digest.SHA256
		}
		h, err := digest.Sum(alg, 0, job.Message)
		if err != nil {
			return false, ec.NewError(ec.ErrUnsupportedHash, err.Error())
		}
		return ecdsa.Verify(pub, h, job.Signature)
	case EdDSA:
		cfg := eddsa.DefaultConfig(job.Curve)
		if job.Digest != 0 {
			cfg.Hash = job.Digest
		}
		return eddsa.Verify(pub, job.Message, job.Signature, cfg)
	case Schnorr:
		cfg := schnorr.DefaultConfig(job.Variant)
		if job.Digest != 0 {
			cfg.Hash = job.Digest
		}
		return schnorr.Verify(pub, job.Message, job.Signature, cfg)
	}
	return false, ec.NewError(ec.ErrInvalidParameter, "unknown algorithm "+string(job.Algorithm))
}
