package model

import "time"

// Row is one data row of the source table, in column order:
// start date, end date, name, description.
type Row struct {
	// Line is the 1-based line number in the source where the row starts.
	Line   int
	Fields []string
}

// RowFieldCount is the number of columns a valid Row has.
const RowFieldCount = 4

// Valid reports whether the row has exactly RowFieldCount fields.
func (r Row) Valid() bool {
	return len(r.Fields) == RowFieldCount
}

// Event is a full-day calendar event derived from a Row.
//
// Start is inclusive and End is exclusive, both at midnight UTC with no
// meaningful time component. Description is empty when absent.
type Event struct {
	UID string

	Summary     string
	Description string

	Status   string
	Category string

	Start time.Time
	End   time.Time
}

// HasDescription reports whether the DESCRIPTION property should be emitted.
func (e Event) HasDescription() bool {
	return e.Description != ""
}

// Days returns the number of calendar days the event spans.
func (e Event) Days() int {
	return int(e.End.Sub(e.Start).Hours() / 24)
}

// ParsedEvent is a VEVENT read back from an existing calendar file.
type ParsedEvent struct {
	UID string

	Summary     string
	Description string
	Status      string
	Categories  []string

	AllDay bool
	Start  time.Time
	End    time.Time
}
