package ics

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "csv2ics/internal/log"
	"csv2ics/internal/model"
)

// ParseICS parses a calendar payload into ParsedEvent values, in document
// order. VEVENTs that cannot be read are logged and skipped.
func ParseICS(body []byte) ([]model.ParsedEvent, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	events := make([]model.ParsedEvent, 0)

	for _, comp := range cal.Events() {
		ev, perr := parseVEvent(comp)
		if perr != nil {
			// Log and skip this event, but keep parsing others.
			appLog.Error("ics vevent parse failed", perr)
			continue
		}
		events = append(events, ev)
	}

	return events, nil
}

// ParseFile reads and parses the calendar at path.
func ParseFile(path string) ([]model.ParsedEvent, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	events, err := ParseICS(body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	appLog.Debug("ics parse completed", "path", path, "event_count", len(events))
	return events, nil
}

func parseVEvent(ve *ical.VEvent) (model.ParsedEvent, error) {
	var out model.ParsedEvent

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uidProp.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyStatus); p != nil {
		out.Status = p.Value
	}
	for _, p := range ve.GetProperties(ical.ComponentPropertyCategories) {
		out.Categories = append(out.Categories, p.Value)
	}

	// All-day if DTSTART has VALUE=DATE or no time part.
	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return out, fmt.Errorf("event %s: missing DTSTART", out.UID)
	}
	if vs, ok := dtStart.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		out.AllDay = true
	}
	if !strings.Contains(dtStart.Value, "T") {
		out.AllDay = true
	}

	var err error
	if out.AllDay {
		out.Start, err = parseDateValue(dtStart.Value)
		if err != nil {
			return out, fmt.Errorf("event %s: DTSTART: %w", out.UID, err)
		}
		out.End = out.Start.AddDate(0, 0, 1)
		if dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd); dtEnd != nil {
			out.End, err = parseDateValue(dtEnd.Value)
			if err != nil {
				return out, fmt.Errorf("event %s: DTEND: %w", out.UID, err)
			}
		}
		return out, nil
	}

	out.Start, err = ve.GetStartAt()
	if err != nil {
		return out, fmt.Errorf("event %s: DTSTART: %w", out.UID, err)
	}
	out.End, err = ve.GetEndAt()
	if err != nil {
		return out, fmt.Errorf("event %s: DTEND: %w", out.UID, err)
	}
	return out, nil
}

// parseDateValue parses a DATE value (YYYYMMDD) as midnight UTC, matching
// how Translate represents dates.
func parseDateValue(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.New("empty date value")
	}
	return time.Parse("20060102", v)
}
