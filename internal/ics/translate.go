package ics

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"csv2ics/internal/model"
)

const (
	// StatusConfirmed is the STATUS of every generated event.
	StatusConfirmed = "CONFIRMED"
	// Category is the CATEGORIES tag of every generated event.
	Category = "Feiertag"

	isoDateLayout = "2006-01-02"
)

// Namespace seeds UID derivation. It must never change: calendars that
// were imported earlier rely on the same UIDs coming out again.
var Namespace = uuid.MustParse("8e1072d6-0f2f-407d-b6c2-42eb1584414b")

// Translate turns one source row into a full-day Event.
//
// The end column is inclusive in the table and converted to the exclusive
// DTEND boundary here; an empty end column means a single-day event.
func Translate(row model.Row) (model.Event, error) {
	if !row.Valid() {
		return model.Event{}, &RowError{Line: row.Line, Fields: row.Fields, Err: fmt.Errorf("%w: want %d fields, got %d", ErrMalformedRow, model.RowFieldCount, len(row.Fields))}
	}

	start, err := parseDate(row.Fields[0])
	if err != nil {
		return model.Event{}, &RowError{Line: row.Line, Fields: row.Fields, Err: fmt.Errorf("start date: %w", err)}
	}

	last := start
	if row.Fields[1] != "" {
		last, err = parseDate(row.Fields[1])
		if err != nil {
			return model.Event{}, &RowError{Line: row.Line, Fields: row.Fields, Err: fmt.Errorf("end date: %w", err)}
		}
	}

	summary := row.Fields[2]

	return model.Event{
		UID:         EventUID(start, summary),
		Summary:     summary,
		Description: row.Fields[3],
		Status:      StatusConfirmed,
		Category:    Category,
		Start:       start,
		End:         last.AddDate(0, 0, 1),
	}, nil
}

// EventUID derives the UID from the start date and the name only, so edits
// to the end date or description keep the UID stable.
func EventUID(start time.Time, summary string) string {
	return uuid.NewMD5(Namespace, []byte(start.Format(isoDateLayout)+summary)).String()
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(isoDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not YYYY-MM-DD", ErrInvalidDate, s)
	}
	return t, nil
}
