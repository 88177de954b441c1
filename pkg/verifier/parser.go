package verifier

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Parser reads jobs from a source.
type Parser interface {
	ParseJobs(source string) ([]*Job, error)
}

// ParserFor picks a parser from the file extension: .csv is CSV, anything
// else JSON.
func ParserFor(source string) Parser {
	if strings.EqualFold(filepath.Ext(source), ".csv") {
		return &CSVParser{}
	}
	return &JSONParser{}
}

// JSONParser reads a JSON array of Record objects.
type JSONParser struct{}

// ParseJobs parses a JSON job file.
//
// Expected format:
//
//	[
//	  {"algorithm": "ecdsa", "curve": "secp256k1", "public_key": "04...",
//	   "message": "...", "digest": "sha256", "signature": "30..."},
//	  ...
//	]
func (p *JSONParser) ParseJobs(source string) ([]*Job, error) {
	file, err := os.Open(source)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open job file")
	}
	defer file.Close()
	return p.Decode(file)
}

// Decode parses JSON jobs from r.
func (p *JSONParser) Decode(r io.Reader) ([]*Job, error) {
	var records []Record
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&records); err != nil {
		return nil, errors.Wrap(err, "failed to parse JSON")
	}
	jobs := make([]*Job, 0, len(records))
	for i := range records {
		job, err := records[i].Job(i)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// CSVParser reads a CSV file whose header names the Record fields.
// Column order is free; variant and digest columns are optional.
type CSVParser struct{}

// ParseJobs parses a CSV job file.
func (p *CSVParser) ParseJobs(source string) ([]*Job, error) {
	file, err := os.Open(source)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open job file")
	}
	defer file.Close()
	return p.Decode(file)
}

// Decode parses CSV jobs from r.
func (p *CSVParser) Decode(r io.Reader) ([]*Job, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read header")
	}
	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"algorithm", "curve", "public_key", "message", "signature"} {
		if _, ok := cols[required]; !ok {
			return nil, errors.Errorf("missing required column %q", required)
		}
	}
	field := func(rec []string, name string) string {
		if i, ok := cols[name]; ok && i < len(rec) {
			return rec[i]
		}
		return ""
	}

	var jobs []*Job
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to read record")
		}
		r := Record{
			Algorithm: field(rec, "algorithm"),
			Curve:     field(rec, "curve"),
			Variant:   field(rec, "variant"),
			PublicKey: field(rec, "public_key"),
			Message:   field(rec, "message"),
			Digest:    field(rec, "digest"),
			Signature: field(rec, "signature"),
		}
		job, err := r.Job(len(jobs))
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
