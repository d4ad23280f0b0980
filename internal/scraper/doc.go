// Package scraper provides HTTP fetching and HTML parsing for the DefCamp schedule page.
//
// The Fetcher downloads the schedule page with a short timeout. Extract walks the
// tabbed schedule container, classifies each tab as Track 1, Track 2 or something
// else, and yields one event per schedule listing with its times shifted from the
// conference's local time to UTC.
package scraper
