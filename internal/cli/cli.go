package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pfrederiksen/defcamp-calendar/internal/calendar"
	"github.com/pfrederiksen/defcamp-calendar/internal/event"
	"github.com/pfrederiksen/defcamp-calendar/internal/logger"
	"github.com/pfrederiksen/defcamp-calendar/internal/scraper"
	"github.com/pfrederiksen/defcamp-calendar/internal/storage"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

const usageArgs = "EVENT_YEAR EVENT_MONTH EVENT_DAY EXPORT_FILE"

var errUsage = errors.New("expected " + usageArgs)

var (
	flagURL             string
	flagTimeout         time.Duration
	flagUTCOffset       int
	flagUnknownSections string
	flagCalendarName    string
	flagLogLevel        string
	flagVerbose         bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "defcamp-calendar " + usageArgs,
		Short: "Export the DefCamp schedule as an iCalendar file",
		Long: `Fetches the DefCamp schedule page, extracts the talks of both tracks
over the two conference days and writes them to an .ics file with times in UTC.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 4 {
				return errUsage
			}
			return nil
		},
		RunE:          runExport,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	fetch := scraper.DefaultOptions()
	extract := scraper.DefaultExtractOptions()

	cmd.Flags().StringVar(&flagURL, "url", fetch.URL, "Schedule page URL")
	cmd.Flags().DurationVar(&flagTimeout, "timeout", fetch.Timeout, "Timeout for fetching the schedule page")
	cmd.Flags().IntVar(&flagUTCOffset, "utc-offset", extract.UTCOffset, "Hours the schedule's local time is ahead of UTC")
	cmd.Flags().StringVar(&flagUnknownSections, "unknown-sections", string(extract.UnknownSections), "What to do with tabs other than Track 1/2: stop or skip")
	cmd.Flags().StringVar(&flagCalendarName, "calendar-name", "", "Calendar name (X-WR-CALNAME)")
	cmd.Flags().StringVar(&flagLogLevel, "log-level", string(logger.LevelWarn), "Minimum log level: debug, info, warn or error")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging (same as --log-level debug)")

	return cmd
}

// runExport is the main command logic
func runExport(cmd *cobra.Command, args []string) error {
	level, err := logger.ParseLevel(flagLogLevel)
	if err != nil {
		return err
	}
	if flagVerbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, cmd.ErrOrStderr()))

	conf, err := parseConference(args[0], args[1], args[2])
	if err != nil {
		return err
	}

	policy, err := scraper.ParseSectionPolicy(flagUnknownSections)
	if err != nil {
		return err
	}

	fetchOpts := scraper.DefaultOptions()
	fetchOpts.URL = flagURL
	fetchOpts.Timeout = flagTimeout
	fetcher := scraper.New(fetchOpts)

	logger.Debug("Fetching schedule", logger.Fields{
		"url":     fetcher.URL(),
		"timeout": flagTimeout.String(),
	})

	page, err := fetcher.Fetch(cmd.Context())
	if err != nil {
		logger.Error("Fetching schedule failed", logger.Fields{"url": fetcher.URL()}, err)
		return fmt.Errorf("fetching schedule: %w", err)
	}

	logger.Debug("Fetched schedule", logger.Fields{"bytes": len(page)})

	extractOpts := scraper.DefaultExtractOptions()
	extractOpts.UTCOffset = flagUTCOffset
	extractOpts.UnknownSections = policy
	events := scraper.Extract(strings.NewReader(page), conf, extractOpts)

	cal, count, err := calendar.Build(events, calendar.Options{Name: flagCalendarName})
	if err != nil {
		return err
	}

	path, err := storage.WriteExport(args[3], calendar.Serialize(cal))
	if err != nil {
		logger.Error("Writing export failed", logger.Fields{"path": args[3]}, err)
		return err
	}

	logger.Info("Exported schedule", logger.Fields{
		"events": count,
		"path":   path,
	})

	return nil
}

// parseConference builds the conference start date from the positional arguments
func parseConference(year, month, day string) (event.Conference, error) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return event.Conference{}, fmt.Errorf("invalid EVENT_YEAR %q: %w", year, err)
	}
	m, err := strconv.Atoi(month)
	if err != nil {
		return event.Conference{}, fmt.Errorf("invalid EVENT_MONTH %q: %w", month, err)
	}
	d, err := strconv.Atoi(day)
	if err != nil {
		return event.Conference{}, fmt.Errorf("invalid EVENT_DAY %q: %w", day, err)
	}
	return event.NewConference(y, m, d)
}

// Run executes the command with args and returns the process exit code. A
// wrong number of positional arguments prints the usage line to stdout.
func Run(args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(stdout, "Usage: %s %s\n", cmd.Name(), usageArgs)
			return ExitError
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitError
	}

	return ExitSuccess
}

// Execute runs the CLI
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}
