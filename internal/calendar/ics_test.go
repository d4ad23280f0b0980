package calendar

import (
	"errors"
	"iter"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/defcamp-calendar/internal/event"
)

var conf = event.Conference{Year: 2023, Month: 11, Day: 14}

func fixedNow() time.Time {
	return time.Date(2023, time.October, 1, 9, 0, 0, 0, time.UTC)
}

// seq turns events into a sequence; a non-nil err is yielded after them
func seq(err error, events ...*event.Event) iter.Seq2[*event.Event, error] {
	return func(yield func(*event.Event, error) bool) {
		for _, evt := range events {
			if !yield(evt, nil) {
				return
			}
		}
		if err != nil {
			yield(nil, err)
		}
	}
}

func TestBuild(t *testing.T) {
	keynote := event.NewEvent(conf, 0, event.TrackOne, 0,
		event.TimeOfDay{Hour: 7, Minute: 0}, event.TimeOfDay{Hour: 7, Minute: 45},
		"Opening Keynote", &event.Speaker{Name: "Jane Doe", Position: "CISO"})
	lunch := event.NewEvent(conf, 1, event.TrackTwo, 0,
		event.TimeOfDay{Hour: 10, Minute: 0}, event.TimeOfDay{Hour: 11, Minute: 0},
		"Lunch", nil)

	cal, count, err := Build(seq(nil, keynote, lunch), Options{Name: "DefCamp 2023", Now: fixedNow})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if count != 2 {
		t.Errorf("Build() count = %d, want 2", count)
	}

	out := Serialize(cal)

	requiredFields := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//defcamp-calendar//Golang ICS Library",
		"METHOD:PUBLISH",
		"X-WR-CALNAME:DefCamp 2023",
		"UID:" + keynote.ID(),
		"UID:" + lunch.ID(),
		"DTSTAMP:20231001T090000Z",
		"SUMMARY:Opening Keynote",
		"DESCRIPTION:Speaker: Jane Doe (CISO)",
		"DTSTART:20231114T070000Z",
		"DTEND:20231114T074500Z",
		"LOCATION:Track I",
		"SUMMARY:Lunch",
		"DTSTART:20231115T100000Z",
		"DTEND:20231115T110000Z",
		"LOCATION:Track II",
		"END:VCALENDAR",
	}

	for _, field := range requiredFields {
		if !strings.Contains(out, field) {
			t.Errorf("ICS missing field: %s", field)
		}
	}

	if n := strings.Count(out, "BEGIN:VEVENT"); n != 2 {
		t.Errorf("expected 2 BEGIN:VEVENT, got %d", n)
	}
	if n := strings.Count(out, "DESCRIPTION:"); n != 1 {
		t.Errorf("expected 1 DESCRIPTION, got %d", n)
	}
	if !strings.Contains(out, "\r\n") {
		t.Error("ICS should use \\r\\n line endings")
	}
}

func TestBuild_PreservesOrder(t *testing.T) {
	late := event.NewEvent(conf, 1, event.TrackOne, 0, event.TimeOfDay{Hour: 15}, event.TimeOfDay{Hour: 16}, "Late Talk", nil)
	early := event.NewEvent(conf, 0, event.TrackOne, 0, event.TimeOfDay{Hour: 7}, event.TimeOfDay{Hour: 8}, "Early Talk", nil)

	cal, _, err := Build(seq(nil, late, early), Options{Now: fixedNow})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	out := Serialize(cal)
	if strings.Index(out, "SUMMARY:Late Talk") > strings.Index(out, "SUMMARY:Early Talk") {
		t.Error("events should keep input order")
	}
}

func TestBuild_NoCalendarName(t *testing.T) {
	cal, count, err := Build(seq(nil), Options{Now: fixedNow})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}

	out := Serialize(cal)
	if strings.Contains(out, "X-WR-CALNAME:") {
		t.Error("should not include X-WR-CALNAME when name is empty")
	}
	if strings.Contains(out, "BEGIN:VEVENT") {
		t.Error("empty sequence should produce no VEVENT")
	}
}

func TestBuild_SequenceError(t *testing.T) {
	boom := errors.New("malformed listing")
	talk := event.NewEvent(conf, 0, event.TrackOne, 0, event.TimeOfDay{Hour: 7}, event.TimeOfDay{Hour: 8}, "Talk", nil)

	cal, count, err := Build(seq(boom, talk), Options{Now: fixedNow})
	if !errors.Is(err, boom) {
		t.Fatalf("Build() error = %v, want %v", err, boom)
	}
	if cal != nil {
		t.Error("Build() should not return a calendar on error")
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestBuild_EscapesText(t *testing.T) {
	talk := event.NewEvent(conf, 0, event.TrackOne, 0, event.TimeOfDay{Hour: 7}, event.TimeOfDay{Hour: 8}, "Red, Blue; Purple", nil)

	cal, _, err := Build(seq(nil, talk), Options{Now: fixedNow})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	out := Serialize(cal)
	if !strings.Contains(out, `SUMMARY:Red\, Blue\; Purple`) {
		t.Errorf("special characters should be escaped in SUMMARY:\n%s", out)
	}
	if strings.Contains(out, `\\`) {
		t.Errorf("special characters should be escaped once:\n%s", out)
	}
}

func TestBuild_EscapesDescription(t *testing.T) {
	talk := event.NewEvent(conf, 0, event.TrackOne, 0, event.TimeOfDay{Hour: 7}, event.TimeOfDay{Hour: 8},
		"Panel", &event.Speaker{Name: "Roe, John", Position: "CTO; Founder"})

	cal, _, err := Build(seq(nil, talk), Options{Now: fixedNow})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	out := Serialize(cal)
	if !strings.Contains(out, `DESCRIPTION:Speaker: Roe\, John (CTO\; Founder)`) {
		t.Errorf("special characters should be escaped in DESCRIPTION:\n%s", out)
	}
}

func TestSerialize_CRLF(t *testing.T) {
	cal, _, err := Build(seq(nil), Options{Now: fixedNow})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	out := Serialize(cal)
	if n := strings.Count(out, "\n"); n == 0 || n != strings.Count(out, "\r\n") {
		t.Errorf("every line should end with \\r\\n:\n%q", out)
	}
}
