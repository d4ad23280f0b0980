package scraper

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/defcamp-calendar/internal/event"
	"github.com/pfrederiksen/defcamp-calendar/internal/logger"
)

// UTCOffset is the conference's local offset from UTC, in hours (EET)
const UTCOffset = 2

var (
	ErrNoScheduleContainer = errors.New("schedule container not found")
	ErrTooManyDays         = errors.New("track appears on more than two days")
	ErrTimeRange           = errors.New("malformed time range")
	ErrMalformedListing    = errors.New("malformed schedule listing")
)

// SectionKind classifies a tab of the schedule container
type SectionKind int

const (
	SectionOther SectionKind = iota
	SectionTrack1
	SectionTrack2
)

// ClassifySection maps a tab id to its kind
func ClassifySection(id string) SectionKind {
	switch id {
	case "tab_Track1":
		return SectionTrack1
	case "tab_Track2":
		return SectionTrack2
	default:
		return SectionOther
	}
}

// Track returns the event track for the section, false for SectionOther
func (k SectionKind) Track() (event.Track, bool) {
	switch k {
	case SectionTrack1:
		return event.TrackOne, true
	case SectionTrack2:
		return event.TrackTwo, true
	default:
		return 0, false
	}
}

func (k SectionKind) String() string {
	switch k {
	case SectionTrack1:
		return "track1"
	case SectionTrack2:
		return "track2"
	default:
		return "other"
	}
}

// SectionPolicy decides what happens when a tab is neither Track 1 nor Track 2
type SectionPolicy string

const (
	// PolicyStop ends the scan at the first unrecognized tab
	PolicyStop SectionPolicy = "stop"
	// PolicySkip ignores unrecognized tabs and keeps scanning
	PolicySkip SectionPolicy = "skip"
)

// ParseSectionPolicy validates a policy name
func ParseSectionPolicy(s string) (SectionPolicy, error) {
	switch p := SectionPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyStop, PolicySkip:
		return p, nil
	default:
		return "", fmt.Errorf("invalid section policy: %s (must be 'stop' or 'skip')", s)
	}
}

// ExtractOptions controls how listings are normalized
type ExtractOptions struct {
	UTCOffset       int
	UnknownSections SectionPolicy
}

// DefaultExtractOptions returns the options matching the public schedule page
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{
		UTCOffset:       UTCOffset,
		UnknownSections: PolicyStop,
	}
}

// Extract parses schedule markup from r and yields one event per listing in
// document order. The sequence reads r on first iteration and cannot be
// restarted. It stops after the first error.
func Extract(r io.Reader, conf event.Conference, opts ExtractOptions) iter.Seq2[*event.Event, error] {
	return func(yield func(*event.Event, error) bool) {
		doc, err := goquery.NewDocumentFromReader(r)
		if err != nil {
			yield(nil, fmt.Errorf("parsing HTML: %w", err))
			return
		}

		sections, err := scheduleSections(doc)
		if err != nil {
			yield(nil, err)
			return
		}

		// occurrences of each track so far; the n-th occurrence is day n-1
		seen := make(map[event.Track]int)

		for i := range sections.Length() {
			section := sections.Eq(i)
			id, _ := section.Attr("id")

			kind := ClassifySection(id)
			track, ok := kind.Track()
			if !ok {
				if opts.UnknownSections == PolicySkip {
					logger.Debug("Skipping unrecognized section", logger.Fields{"id": id, "kind": kind.String(), "index": i})
					continue
				}
				logger.Debug("Stopping at unrecognized section", logger.Fields{
					"id":        id,
					"kind":      kind.String(),
					"index":     i,
					"remaining": sections.Length() - i - 1,
				})
				return
			}

			dayOffset := seen[track]
			seen[track]++
			if dayOffset > 1 {
				yield(nil, fmt.Errorf("%w: section %q", ErrTooManyDays, id))
				return
			}

			listings := section.Find("div.schedule-listing")
			logger.Debug("Reading section", logger.Fields{
				"id":       id,
				"kind":     kind.String(),
				"day":      dayOffset,
				"listings": listings.Length(),
			})
			for j := range listings.Length() {
				evt, err := parseListing(listings.Eq(j), conf, dayOffset, track, j, opts.UTCOffset)
				if err != nil {
					yield(nil, fmt.Errorf("section %q listing %d: %w", id, j, err))
					return
				}
				if !yield(evt, nil) {
					return
				}
			}
		}
	}
}

// ExtractAll collects every event from the markup, stopping at the first error
func ExtractAll(r io.Reader, conf event.Conference, opts ExtractOptions) ([]*event.Event, error) {
	events := make([]*event.Event, 0)
	for evt, err := range Extract(r, conf, opts) {
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	return events, nil
}

// scheduleSections returns the track/day tabs of the first tab container.
// The tabs are its direct children carrying a tab id when there are any,
// otherwise the children of the single pane wrapping them.
func scheduleSections(doc *goquery.Document) (*goquery.Selection, error) {
	container := doc.Find("div.tab-content").First()
	if container.Length() == 0 {
		return nil, ErrNoScheduleContainer
	}

	children := container.Children()
	if tabs := children.FilterFunction(isTab); tabs.Length() > 0 {
		return tabs, nil
	}
	return children.First().Children(), nil
}

func isTab(_ int, sel *goquery.Selection) bool {
	id, _ := sel.Attr("id")
	return strings.HasPrefix(id, "tab_")
}

// parseListing converts the index-th div.schedule-listing of a section into
// an event
func parseListing(sel *goquery.Selection, conf event.Conference, dayOffset int, track event.Track, index, utcOffset int) (*event.Event, error) {
	slot := sel.Find("span.schedule-slot-time").First()
	if slot.Length() == 0 {
		return nil, fmt.Errorf("%w: no slot time", ErrMalformedListing)
	}
	start, end, err := parseTimeRange(slot.Contents().First().Text(), utcOffset)
	if err != nil {
		return nil, err
	}

	heading := sel.Find("h3.schedule-slot-title").First()
	if heading.Length() == 0 {
		return nil, fmt.Errorf("%w: no title", ErrMalformedListing)
	}
	// the heading may start with an icon element; the title is the last node
	title := strings.TrimSpace(heading.Contents().Last().Text())

	speaker := parseSpeaker(sel.Find("h4.schedule-slot-speaker-name").First())

	return event.NewEvent(conf, dayOffset, track, index, start, end, title, speaker), nil
}

// parseTimeRange splits "HH:MM - HH:MM" and shifts both ends to UTC
func parseTimeRange(s string, utcOffset int) (event.TimeOfDay, event.TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), " - ")
	if len(parts) != 2 {
		return event.TimeOfDay{}, event.TimeOfDay{}, fmt.Errorf("%w: %q", ErrTimeRange, s)
	}

	start, err := toUTC(parts[0], utcOffset)
	if err != nil {
		return event.TimeOfDay{}, event.TimeOfDay{}, err
	}
	end, err := toUTC(parts[1], utcOffset)
	if err != nil {
		return event.TimeOfDay{}, event.TimeOfDay{}, err
	}

	return start, end, nil
}

// toUTC converts a local "HH:MM" string to UTC
func toUTC(s string, utcOffset int) (event.TimeOfDay, error) {
	local, err := event.ParseTimeOfDay(s)
	if err != nil {
		return event.TimeOfDay{}, err
	}
	return local.Shift(-utcOffset)
}

// parseSpeaker reads "<a>Name</a> / Position". It returns nil when the
// listing has no speaker heading.
func parseSpeaker(sel *goquery.Selection) *event.Speaker {
	if sel.Length() == 0 {
		return nil
	}

	nameElem := sel.Children().First()
	if nameElem.Length() == 0 {
		name, position, _ := strings.Cut(sel.Text(), " / ")
		return newSpeaker(name, position)
	}

	var rest strings.Builder
	afterName := false
	sel.Contents().Each(func(_ int, node *goquery.Selection) {
		if goquery.NodeName(node) != "#text" {
			afterName = true
			return
		}
		if afterName {
			rest.WriteString(node.Text())
		}
	})

	return newSpeaker(nameElem.Text(), strings.ReplaceAll(rest.String(), " / ", ""))
}

func newSpeaker(name, position string) *event.Speaker {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	position = strings.TrimSpace(position)
	position = strings.TrimSpace(strings.TrimPrefix(position, "/"))
	return &event.Speaker{Name: name, Position: position}
}
