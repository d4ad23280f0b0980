// Package calendar renders schedule events as an iCalendar (.ics) document.
package calendar

import (
	"fmt"
	"iter"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/pfrederiksen/defcamp-calendar/internal/event"
	"github.com/pfrederiksen/defcamp-calendar/internal/logger"
)

// ProductID identifies this tool in the PRODID property
const ProductID = "defcamp-calendar"

// Options configures the generated calendar
type Options struct {
	// Name is written as X-WR-CALNAME when non-empty
	Name string
	// Now stamps DTSTAMP; defaults to time.Now
	Now func() time.Time
}

// Build consumes events in order and adds one VEVENT per event. Events are
// neither sorted nor deduplicated. It returns the calendar and the number of
// events added, or the first error produced by the sequence.
func Build(events iter.Seq2[*event.Event, error], opts Options) (*ics.Calendar, int, error) {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	stamp := now().UTC()

	cal := ics.NewCalendarFor(ProductID)
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ics.MethodPublish)
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}

	count := 0
	for evt, err := range events {
		if err != nil {
			return nil, count, fmt.Errorf("extracting events: %w", err)
		}
		addEvent(cal, evt, stamp)
		count++

		logger.Debug("Added event", logger.Fields{
			"title":    evt.Title,
			"start":    event.FormatNaive(evt.StartsAt()),
			"end":      event.FormatNaive(evt.EndsAt()),
			"location": evt.Track.Location(),
		})
	}

	return cal, count, nil
}

// addEvent appends a VEVENT for evt. TEXT values are passed unescaped; the
// library escapes them on serialization.
func addEvent(cal *ics.Calendar, evt *event.Event, stamp time.Time) {
	vevent := cal.AddEvent(evt.ID())
	vevent.SetDtStampTime(stamp)
	vevent.SetSummary(evt.Title)
	if desc := evt.Description(); desc != "" {
		vevent.SetDescription(desc)
	}
	vevent.SetStartAt(evt.StartsAt())
	vevent.SetEndAt(evt.EndsAt())
	vevent.SetLocation(evt.Track.Location())
}

// Serialize renders the calendar with CRLF line endings
func Serialize(cal *ics.Calendar) string {
	return cal.Serialize(ics.WithNewLineWindows)
}
