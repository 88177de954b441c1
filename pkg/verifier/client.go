// Package verifier checks batches of signatures read from JSON or CSV job
// files, fanning the work out over a worker pool.
package verifier

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/LedgerHQ/nanos-secure-sdk-sub002/internal/workpool"
	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/ec"
)

// Result is the outcome of one job. Err carries parameter errors such as
// an unsupported curve or a malformed public key; a well-formed but wrong
// signature is Verified false with a nil Err.
type Result struct {
	Index    int
	Verified bool
	Err      error
}

// Client verifies job files.
type Client struct {
	parser  Parser
	workers int
	logger  logrus.FieldLogger
}

// NewClient creates a client that picks the parser from the file extension
// and uses one worker per CPU.
func NewClient() *Client {
	return &Client{}
}

// WithParser sets a fixed parser.
func (c *Client) WithParser(parser Parser) *Client {
	c.parser = parser
	return c
}

// WithWorkers sets the number of parallel workers. Zero means
// runtime.NumCPU.
func (c *Client) WithWorkers(n int) *Client {
	c.workers = n
	return c
}

// WithLogger sets the logger. The default is ec.Logger().
func (c *Client) WithLogger(logger logrus.FieldLogger) *Client {
	c.logger = logger
	return c
}

func (c *Client) log() logrus.FieldLogger {
	if c.logger != nil {
		return c.logger
	}
	return ec.Logger()
}

// VerifyFile parses source and verifies every job in it.
func (c *Client) VerifyFile(ctx context.Context, source string) ([]Result, error) {
	parser := c.parser
	if parser == nil {
		parser = ParserFor(source)
	}
	jobs, err := parser.ParseJobs(source)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", source)
	}
	return c.VerifyJobs(ctx, jobs)
}

// VerifyJobs verifies in-memory jobs. Results are in job order. A cancelled
// context aborts the batch.
func (c *Client) VerifyJobs(ctx context.Context, jobs []*Job) ([]Result, error) {
	log := c.log()
	results := make([]Result, len(jobs))
	pool := workpool.New(c.workers, log)

	log.WithFields(logrus.Fields{"jobs": len(jobs), "workers": pool.Workers}).Debug("starting batch verification")
	err := pool.Run(ctx, len(jobs), func(_ context.Context, i int) error {
		job := jobs[i]
		ok, err := Verify(job)
		results[i] = Result{Index: job.Index, Verified: ok, Err: err}
		log.WithFields(logrus.Fields{
			"job":       job.Index,
			"algorithm": job.Algorithm,
			"curve":     job.Curve.String(),
			"verified":  ok,
		}).Debug("job verified")
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "batch verification aborted")
	}
	return results, nil
}

// Tally counts verified, rejected and errored results.
func Tally(results []Result) (verified, rejected, failed int) {
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
		case r.Verified:
			verified++
		default:
			rejected++
		}
	}
	return verified, rejected, failed
}
