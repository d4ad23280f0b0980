// Package cli implements the command-line interface for defcamp-calendar.
//
// The cli package provides the Cobra-based command that takes the conference
// start date and an export path, then coordinates the scraper, calendar and
// storage packages: fetch the schedule page, extract the listings, build the
// calendar and write it out. A wrong number of arguments prints the usage line
// and exits with status 1 before anything is fetched or written.
package cli
