package ics

import (
	"fmt"
	"io"
	"strings"

	ical "github.com/arran4/golang-ical"

	"csv2ics/internal/model"
)

// LineEnding is the line terminator used when serializing a calendar.
type LineEnding string

const (
	LineEndingLF   LineEnding = "\n"
	LineEndingCRLF LineEnding = "\r\n"
)

// ParseLineEnding accepts "lf" or "crlf" (case-insensitive); empty means lf.
func ParseLineEnding(name string) (LineEnding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "lf":
		return LineEndingLF, nil
	case "crlf":
		return LineEndingCRLF, nil
	default:
		return "", fmt.Errorf("unknown line ending %q (expected lf|crlf)", name)
	}
}

// maxLineLength is the folding limit for content lines, in octets.
const maxLineLength = 75

func serializeConfig(nl LineEnding) *ical.SerializationConfiguration {
	if nl == "" {
		nl = LineEndingLF
	}
	return &ical.SerializationConfiguration{
		MaxLength:         maxLineLength,
		PropertyMaxLength: maxLineLength,
		NewLine:           string(nl),
	}
}

// newVEvent builds the VEVENT for ev. Property order is fixed:
// UID, STATUS, CATEGORIES, DTSTART, DTEND, SUMMARY, DESCRIPTION.
func newVEvent(ev model.Event) *ical.VEvent {
	ve := ical.NewEvent(ev.UID)
	ve.SetStatus(ical.ObjectStatus(ev.Status))
	ve.AddCategory(ev.Category)
	ve.SetAllDayStartAt(ev.Start)
	ve.SetAllDayEndAt(ev.End)
	ve.SetSummary(ev.Summary)
	if ev.HasDescription() {
		ve.SetDescription(ev.Description)
	}
	return ve
}

// RenderEvent returns the VEVENT block for ev, terminated by nl.
func RenderEvent(ev model.Event, nl LineEnding) string {
	return newVEvent(ev).Serialize(serializeConfig(nl))
}

// NewCalendar wraps events in a VCALENDAR carrying only VERSION and CALSCALE.
func NewCalendar(events []model.Event) *ical.Calendar {
	cal := &ical.Calendar{
		Components:         make([]ical.Component, 0, len(events)),
		CalendarProperties: []ical.CalendarProperty{},
	}
	cal.SetVersion("2.0")
	cal.SetCalscale("GREGORIAN")

	for _, ev := range events {
		cal.AddVEvent(newVEvent(ev))
	}
	return cal
}

// WriteDocument serializes the whole calendar document for events to w.
func WriteDocument(w io.Writer, events []model.Event, nl LineEnding) error {
	return NewCalendar(events).SerializeTo(w, serializeConfig(nl))
}
