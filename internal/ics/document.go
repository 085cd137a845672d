package ics

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	appLog "csv2ics/internal/log"
	"csv2ics/internal/model"
)

// Extension is the file extension of generated calendars.
const Extension = ".ics"

// Result summarizes one conversion run.
type Result struct {
	Source string
	Target string

	Events  int
	Skipped int

	// Written is false when no valid rows were found and no file was created.
	Written bool
}

// Collect reads the whole table and translates every row with exactly four
// fields, in source order.
//
// Rows with the wrong field count are logged and skipped. Any other failure,
// including an unparsable date, aborts and returns no events.
func Collect(src Source) ([]model.Event, int, error) {
	f, err := openSource(src.Path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	return collectFrom(f, src)
}

func collectFrom(r io.Reader, src Source) ([]model.Event, int, error) {
	rr, err := NewRowReader(r, src.Delimiter, src.Encoding)
	if err != nil {
		return nil, 0, err
	}

	if src.HasHeader {
		if _, err := rr.Next(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, 0, nil
			}
			return nil, 0, err
		}
	}

	events := make([]model.Event, 0)
	skipped := 0

	for {
		row, err := rr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, err
		}

		if !row.Valid() {
			skipped++
			appLog.Error("skipping invalid row", ErrMalformedRow,
				"path", src.Path,
				"line", row.Line,
				"fields", len(row.Fields),
				"row", fmt.Sprintf("%q", row.Fields),
			)
			continue
		}

		ev, err := Translate(row)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, ev)
	}

	return events, skipped, nil
}

// Convert turns the table at src.Path into a calendar written next to it.
//
// Nothing is written when the table has no valid rows; that is not an error.
func Convert(src Source, nl LineEnding) (Result, error) {
	res := Result{Source: src.Path}

	target := TargetPath(src.Path)
	if filepath.Clean(target) == filepath.Clean(src.Path) {
		return res, fmt.Errorf("%w: %s", ErrTargetIsSource, src.Path)
	}

	events, skipped, err := Collect(src)
	if err != nil {
		return res, err
	}
	res.Events = len(events)
	res.Skipped = skipped

	appLog.Info(fmt.Sprintf("%d events created", len(events)), "path", src.Path, "skipped", skipped)
	if len(events) == 0 {
		return res, nil
	}

	var buf bytes.Buffer
	if err := WriteDocument(&buf, events, nl); err != nil {
		return res, fmt.Errorf("render calendar: %w", err)
	}

	if err := writeFileAtomic(target, buf.Bytes()); err != nil {
		return res, fmt.Errorf("write %s: %w", target, err)
	}
	res.Target = target
	res.Written = true

	appLog.Info("ICS file created", "path", target, "events", len(events))
	return res, nil
}

// TargetPath replaces the final extension of path with Extension, keeping
// directory and base name. Dots in directory names are not extensions.
func TargetPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + Extension
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it over path, so readers never observe a half-written calendar.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".csv2ics-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
