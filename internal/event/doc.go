// Package event provides the data model for conference schedule listings.
//
// A Conference anchors every date; an Event is one talk tagged with its track,
// its conference day and UTC-normalized start and end times. Speaker details
// are optional as a whole: an event either has a *Speaker with both a name and
// a position, or none at all.
package event
