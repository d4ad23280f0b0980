package event

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NaiveLayout is the layout used when printing event start and end times
const NaiveLayout = "2006-01-02 15:04:05"

// namespace scopes event UIDs to this tool
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://def.camp/schedule/"))

// Conference holds the date the conference starts on. All event dates are
// derived from it.
type Conference struct {
	Year  int
	Month int
	Day   int
}

// NewConference validates and returns conference details
func NewConference(year, month, day int) (Conference, error) {
	if month < 1 || month > 12 {
		return Conference{}, fmt.Errorf("invalid month: %d", month)
	}
	if day < 1 || day > 31 {
		return Conference{}, fmt.Errorf("invalid day: %d", day)
	}
	return Conference{Year: year, Month: month, Day: day}, nil
}

// Date returns the calendar day offset days after the conference start
func (c Conference) Date(offset int) time.Time {
	return time.Date(c.Year, time.Month(c.Month), c.Day+offset, 0, 0, 0, 0, time.UTC)
}

// Track identifies a parallel session stream
type Track int

const (
	TrackOne Track = 1
	TrackTwo Track = 2
)

// Location returns the calendar location for the track
func (t Track) Location() string {
	if t == TrackOne {
		return "Track I"
	}
	return "Track II"
}

// Speaker is the person presenting a talk. An event without a speaker has a
// nil *Speaker, so name and position are always present together.
type Speaker struct {
	Name     string
	Position string
}

// Event is a single schedule listing, normalized to UTC
type Event struct {
	Conference Conference
	DayOffset  int // 0 for the first conference day, 1 for the second
	Track      Track
	Index      int // position of the listing within its section
	Start      TimeOfDay
	End        TimeOfDay
	Title      string
	Speaker    *Speaker
}

// NewEvent creates an Event for the index-th listing found in the given track
// on the given conference day
func NewEvent(conf Conference, dayOffset int, track Track, index int, start, end TimeOfDay, title string, speaker *Speaker) *Event {
	return &Event{
		Conference: conf,
		DayOffset:  dayOffset,
		Track:      track,
		Index:      index,
		Start:      start,
		End:        end,
		Title:      title,
		Speaker:    speaker,
	}
}

// Day returns the day of month the event happens on
func (e *Event) Day() int {
	return e.Conference.Date(e.DayOffset).Day()
}

// Description returns the speaker line, or "" when the event has no speaker
func (e *Event) Description() string {
	if e.Speaker == nil {
		return ""
	}
	return fmt.Sprintf("Speaker: %s (%s)", e.Speaker.Name, e.Speaker.Position)
}

// StartsAt returns the UTC start of the event
func (e *Event) StartsAt() time.Time {
	return e.Start.On(e.Conference.Date(e.DayOffset))
}

// EndsAt returns the UTC end of the event
func (e *Event) EndsAt() time.Time {
	return e.End.On(e.Conference.Date(e.DayOffset))
}

// ID returns a deterministic identifier for the event. The same listing
// produces the same ID across runs so calendar clients update rather than
// duplicate imported events. Repeated listings in one section differ by index.
func (e *Event) ID() string {
	key := strings.Join([]string{
		e.StartsAt().Format(NaiveLayout),
		e.Track.Location(),
		strconv.Itoa(e.Index),
		strings.ToLower(strings.TrimSpace(e.Title)),
	}, "|")
	return uuid.NewSHA1(namespace, []byte(key)).String()
}

// FormatNaive renders t as "YYYY-MM-DD HH:MM:SS" without a zone suffix
func FormatNaive(t time.Time) string {
	return t.UTC().Format(NaiveLayout)
}
