// Package tabular reads delimited text files into typed records.
//
// The declared columns of a record type are the csv struct tags of its
// fields. Every declared column must appear in the header; extra columns are
// ignored and column order is irrelevant.
package tabular

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/jszwec/csvutil"
	"github.com/vvka-141/tourload/internal/source"
	"github.com/vvka-141/tourload/pkg/tourload"
)

const tagName = "csv"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Options controls how the input is tokenized.
type Options struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune
}

// Validator is implemented by records that check themselves once decoded.
// A failed check is reported as a TypeCoercionError for that row.
type Validator interface {
	Validate() error
}

// Read decodes every data row of r into a T. name identifies the input in
// errors. A header-only input yields an empty, non-nil slice.
func Read[T any](r io.Reader, name string, opts Options) ([]T, error) {
	required, err := csvutil.Header(new(T), tagName)
	if err != nil {
		return nil, fmt.Errorf("record type for %s: %w", name, err)
	}

	cr := csv.NewReader(SkipBOM(r))
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.TrimLeadingSpace = true

	dec, err := csvutil.NewDecoder(cr)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &tourload.ParseError{File: name, Err: errors.New("empty input: no header row")}
		}
		return nil, &tourload.ParseError{File: name, Err: err}
	}
	dec.Tag = tagName
	dec.DisallowMissingColumns = true

	if missing := missingColumns(dec.Header(), required); len(missing) > 0 {
		return nil, &tourload.ParseError{File: name, Columns: missing, Err: errors.New("missing columns")}
	}

	records := make([]T, 0)
	for row := 1; ; row++ {
		var rec T
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, classify(name, row, err)
		}
		if v, ok := any(&rec).(Validator); ok {
			if err := v.Validate(); err != nil {
				return nil, &tourload.TypeCoercionError{File: name, Row: row, Err: err}
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// File is the decoded content of one input file.
type File[T any] struct {
	Location string
	Records  []T

	// SHA256 is the hex digest of the raw bytes read.
	SHA256 string
}

// ReadFile opens location through opener and decodes it, fingerprinting the
// raw bytes on the way.
func ReadFile[T any](ctx context.Context, opener source.Opener, location string, opts Options) (*File[T], error) {
	rc, err := opener.Open(ctx, location)
	if err != nil {
		return nil, &tourload.ParseError{File: location, Err: err}
	}
	defer rc.Close()

	h := sha256.New()
	records, err := Read[T](io.TeeReader(rc, h), location, opts)
	if err != nil {
		return nil, err
	}
	// Drain anything the decoder did not consume so the digest covers the whole file.
	if _, err := io.Copy(h, rc); err != nil {
		return nil, &tourload.ParseError{File: location, Err: err}
	}

	return &File[T]{Location: location, Records: records, SHA256: hex.EncodeToString(h.Sum(nil))}, nil
}

func classify(name string, row int, err error) error {
	var missing *csvutil.MissingColumnsError
	if errors.As(err, &missing) {
		return &tourload.ParseError{File: name, Columns: missing.Columns, Err: err}
	}
	var syntax *csv.ParseError
	if errors.As(err, &syntax) {
		return &tourload.ParseError{File: name, Err: err}
	}
	return &tourload.TypeCoercionError{File: name, Row: row, Err: err}
}

func missingColumns(header, required []string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	var missing []string
	for _, col := range required {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

// SkipBOM drops a leading UTF-8 byte order mark.
func SkipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}
