package verifier

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/curves"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/ec"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/ecdsa"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/eddsa"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/schnorr"
)

// fixturesDir returns the path to the fixtures directory (works regardless of test cwd).
func fixturesDir() string {
	_, f, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(f), "..", "..", "fixtures")
}

func TestVerifyFixtureFiles(t *testing.T) {
	for _, name := range []string{"batch.json", "batch.csv"} {
		t.Run(name, func(t *testing.T) {
			results, err := NewClient().WithWorkers(2).VerifyFile(context.Background(), filepath.Join(fixturesDir(), name))
			require.NoError(t, err)
			require.Len(t, results, 4)

			want := []bool{true, true, true, false}
			for i, r := range results {
				require.NoError(t, r.Err, spew.Sdump(r))
				assert.Equal(t, i, r.Index)
				assert.Equal(t, want[i], r.Verified, "job %d", i)
			}
			v, rej, failed := Tally(results)
			assert.Equal(t, [3]int{3, 1, 0}, [3]int{v, rej, failed})
		})
	}
}

func TestWithParserOverridesExtension(t *testing.T) {
	src := filepath.Join(fixturesDir(), "batch.json")
	_, err := NewClient().WithParser(&CSVParser{}).VerifyFile(context.Background(), src)
	assert.Error(t, err)
}

// signedJobs signs one message per scheme and returns the jobs, the odd
// ones carrying a corrupted message.
func signedJobs(t *testing.T) []*Job {
	t.Helper()
	var jobs []*Job
	add := func(job *Job) {
		job.Index = len(jobs)
		if job.Index%2 == 1 {
			job.Message = append(job.Message, '!')
		}
		jobs = append(jobs, job)
	}

	for _, id := range []curves.ID{curves.Secp256k1, curves.Secp384r1} {
		priv, err := ec.GenerateKey(id, rand.Reader)
		require.NoError(t, err)
		pub, err := priv.PublicKey()
		require.NoError(t, err)
		for i := 0; i < 2; i++ {
			msg := []byte{'e', byte(i)}
			h := sha256.Sum256(msg)
			res, err := ecdsa.Sign(priv, h[:], ec.DefaultSignConfig())
			require.NoError(t, err)
			add(&Job{Algorithm: ECDSA, Curve: id, PublicKey: pub.W, Message: msg, Signature: res.Signature})
		}
	}

	for _, id := range []curves.ID{curves.Ed25519, curves.Ed448} {
		priv, err := ec.GenerateKey(id, rand.Reader)
		require.NoError(t, err)
		cfg := eddsa.DefaultConfig(id)
		pub, err := eddsa.PublicKey(priv, cfg)
		require.NoError(t, err)
		for i := 0; i < 2; i++ {
			msg := []byte{'d', byte(i)}
			sig, err := eddsa.Sign(priv, msg, cfg)
			require.NoError(t, err)
			add(&Job{Algorithm: EdDSA, Curve: id, PublicKey: pub.W, Message: msg, Signature: sig})
		}
	}

	priv, err := ec.GenerateKey(curves.Secp256k1, rand.Reader)
	require.NoError(t, err)
	pub, err := priv.PublicKey()
	require.NoError(t, err)
	for _, v := range []schnorr.Variant{schnorr.BIP340, schnorr.ISO14888XY, schnorr.ISO14888X, schnorr.BSI03111, schnorr.LibSecp, schnorr.Z} {
		msg := []byte("s " + v.String())
		res, err := schnorr.Sign(priv, msg, schnorr.DefaultConfig(v))
		require.NoError(t, err)
		add(&Job{Algorithm: Schnorr, Curve: curves.Secp256k1, Variant: v, PublicKey: pub.W, Message: msg, Signature: res.Signature})
	}
	return jobs
}

func TestVerifyJobsInParallel(t *testing.T) {
	jobs := signedJobs(t)
	results, err := NewClient().WithWorkers(3).VerifyJobs(context.Background(), jobs)
	require.NoError(t, err)
	require.Len(t, results, len(jobs))
	for i, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, i%2 == 0, r.Verified, "job %d (%s)", i, jobs[i].Algorithm)
	}
}

func TestParameterErrorsStayPerJob(t *testing.T) {
	jobs := signedJobs(t)[:2]
	jobs = append(jobs, &Job{Index: 2, Algorithm: ECDSA, Curve: curves.Secp256k1, PublicKey: []byte{0x04, 1, 2}})
	jobs = append(jobs, &Job{Index: 3, Algorithm: ECDSA, Curve: curves.Ed25519, PublicKey: jobs[0].PublicKey})

	results, err := NewClient().VerifyJobs(context.Background(), jobs)
	require.NoError(t, err)
	assert.True(t, results[0].Verified)
	assert.ErrorIs(t, results[2].Err, ec.ErrInvalidPublicKey)
	assert.ErrorIs(t, results[3].Err, ec.ErrUnsupportedCurve)

	v, rej, failed := Tally(results)
	assert.Equal(t, [3]int{1, 1, 2}, [3]int{v, rej, failed})
}

func TestCancelledBatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient().VerifyJobs(ctx, signedJobs(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecordErrors(t *testing.T) {
	valid := Record{Algorithm: "ecdsa", Curve: "secp256k1", PublicKey: "04", Message: "m", Signature: "30"}
	tests := []struct {
		name   string
		mutate func(r *Record)
	}{
		{"algorithm", func(r *Record) { r.Algorithm = "rsa" }},
		{"curve", func(r *Record) { r.Curve = "curve448" }},
		{"digest", func(r *Record) { r.Digest = "md5" }},
		{"public key hex", func(r *Record) { r.PublicKey = "zz" }},
		{"signature hex", func(r *Record) { r.Signature = "0x1" }},
		{"message hex", func(r *Record) { r.Message = "0xqq" }},
		{"variant", func(r *Record) { r.Algorithm = "schnorr"; r.Variant = "ecdsa" }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := valid
			test.mutate(&r)
			_, err := r.Job(7)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "job 7")
		})
	}

	job, err := valid.Job(0)
	require.NoError(t, err)
	assert.Equal(t, []byte("m"), job.Message)

	s := Record{Algorithm: "Schnorr", Curve: "secp256k1", Message: "0x00ff"}
	job, err = s.Job(1)
	require.NoError(t, err)
	assert.Equal(t, schnorr.BIP340, job.Variant)
	assert.Equal(t, []byte{0x00, 0xff}, job.Message)
}

func TestParserErrors(t *testing.T) {
	_, err := (&CSVParser{}).Decode(strings.NewReader("algorithm,curve,message,signature\n"))
	assert.ErrorContains(t, err, "public_key")

	_, err = (&JSONParser{}).Decode(strings.NewReader(`[{"algo": "ecdsa"}]`))
	assert.Error(t, err)

	_, err = (&JSONParser{}).ParseJobs(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "jobs.CSV")
	require.NoError(t, os.WriteFile(path, []byte("signature,message,public_key,curve,algorithm\n"), 0o600))
	assert.IsType(t, &CSVParser{}, ParserFor(path))
	jobs, err := ParserFor(path).ParseJobs(path)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}
