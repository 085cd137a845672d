package ics

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"csv2ics/internal/model"
)

// DefaultDelimiter is the column separator used when none is configured.
const DefaultDelimiter = ';'

// Source describes the table to convert.
type Source struct {
	Path      string
	Delimiter rune
	// HasHeader drops the first row before any validation.
	HasHeader bool
	// Encoding is a WHATWG label such as "utf-8" or "windows-1252".
	// Empty means UTF-8.
	Encoding string
}

// RowReader streams rows from a delimited table in source order.
type RowReader struct {
	csv *csv.Reader
}

// NewRowReader wraps r, decoding it from the named encoding first.
func NewRowReader(r io.Reader, delimiter rune, encodingName string) (*RowReader, error) {
	t, err := decoderFor(encodingName)
	if err != nil {
		return nil, err
	}
	if delimiter == 0 {
		delimiter = DefaultDelimiter
	}

	cr := csv.NewReader(transform.NewReader(r, t))
	cr.Comma = delimiter
	// Field count is checked per row by the caller, not by the reader.
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	return &RowReader{csv: cr}, nil
}

// Next returns the next row, or io.EOF when the table is exhausted. Any other
// error wraps ErrSourceUnreadable.
func (rr *RowReader) Next() (model.Row, error) {
	fields, err := rr.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return model.Row{}, io.EOF
		}
		return model.Row{}, fmt.Errorf("%w: %v", ErrSourceUnreadable, err)
	}
	line, _ := rr.csv.FieldPos(0)
	return model.Row{Line: line, Fields: fields}, nil
}

// openSource opens path and classifies failures.
func openSource(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrSourceUnreadable, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrSourceUnreadable, err)
	}
	if fi.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%w: %s is a directory", ErrSourceUnreadable, path)
	}
	return f, nil
}

// decoderFor returns a transformer producing valid UTF-8 from the named
// encoding. UTF-8 input is validated and its BOM stripped.
func decoderFor(name string) (transform.Transformer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return transform.Chain(encoding.UTF8Validator, unicode.UTF8BOM.NewDecoder()), nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: unsupported encoding %q", ErrSourceUnreadable, name)
	}
	return enc.NewDecoder(), nil
}
