package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/benmeehan/batch-geotag/internal/constants"
	"github.com/benmeehan/batch-geotag/internal/services"
	"github.com/benmeehan/batch-geotag/internal/utils"
	"github.com/benmeehan/batch-geotag/pkg/exif"
	"github.com/benmeehan/batch-geotag/pkg/file"
	"github.com/benmeehan/batch-geotag/pkg/timezone"
	"github.com/benmeehan/batch-geotag/pkg/track"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "tag":
		runTag(os.Args[2:])
	case "convert":
		runConvert(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(2)
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `usage: geotag <command> [flags]

Commands:
  tag      write track positions into photos by matching capture times
  convert  convert a coordinate track into the plain CSV format

Run 'geotag <command> -h' for the flags of a command.
`)
}

// newLogger sets up console logging tagged with a unique run ID.
func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Str("run_id", uuid.New().String()).
		Logger()
}

func verbosityLevel(verbosity int) zerolog.Level {
	switch {
	case verbosity <= 1:
		return zerolog.ErrorLevel
	case verbosity == 2:
		return zerolog.InfoLevel
	default:
		return zerolog.DebugLevel
	}
}

func runTag(args []string) {
	fs := flag.NewFlagSet("tag", flag.ExitOnError)
	configPath := fs.String("config", "", "path to the YAML configuration file")
	coordinates := fs.String("coordinates", "", "coordinate track file")
	format := fs.String("format", "", "track format: auto, csv, gpx, nmea or history")
	photos := fs.String("photos", "", "folder holding the JPEG files")
	recursive := fs.Bool("recursive", false, "descend into subfolders")
	interval := fs.Int("interval", constants.DefaultResampleSeconds, "resample interval in seconds")
	overwrite := fs.Bool("overwrite", false, "replace geodata already present in a photo")
	dryRun := fs.Bool("dry-run", false, "report matches without writing")
	zone := fs.String("zone", "", "reference zone the coordinate timeline is aligned to")
	sourceZone := fs.String("source-zone", "", "clock of naive coordinate timestamps")
	cameraZone := fs.String("camera-zone", "", "camera clock for the static resolver")
	resolver := fs.String("resolver", "", "camera zone resolver: static, track or google")
	mapsAPIKey := fs.String("maps-api-key", "", "Google Maps API key for the google resolver")
	workers := fs.Int("workers", 0, "number of photos processed in parallel")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	verbosity := fs.Int("verbosity", constants.DefaultVerbosity, "log detail from 1 errors only to 3 debug")
	fs.Parse(args)

	logger := newLogger()
	fileClient := file.NewFileService()

	// Load configuration from file when given
	cfg := utils.DefaultConfig()
	if *configPath != "" {
		loaded, err := utils.LoadConfig(*configPath, fileClient)
		if err != nil {
			logger.Fatal().Err(err).Str("config", *configPath).Msg("Failed to load configuration")
		}
		cfg = loaded
	}

	// Flags given explicitly win over the file
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "coordinates":
			cfg.Coordinates.File = *coordinates
		case "format":
			cfg.Coordinates.Format = *format
		case "photos":
			cfg.Photos.Folder = *photos
		case "recursive":
			cfg.Photos.Recursive = *recursive
		case "interval":
			cfg.Resample.IntervalSeconds = *interval
		case "overwrite":
			cfg.Photos.Overwrite = *overwrite
		case "zone":
			cfg.Zones.Reference = *zone
		case "source-zone":
			cfg.Zones.Source = *sourceZone
		case "camera-zone":
			cfg.Zones.Camera = *cameraZone
		case "resolver":
			cfg.Zones.Resolver = *resolver
		case "maps-api-key":
			cfg.Zones.MapsAPIKey = *mapsAPIKey
		case "workers":
			cfg.Workers = *workers
		case "verbosity":
			cfg.Verbosity = *verbosity
		}
	})
	logger = logger.Level(verbosityLevel(cfg.Verbosity))

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Resolve the clocks everything is aligned to
	reference, err := timezone.Resolve(cfg.Zones.Reference)
	if err != nil {
		logger.Fatal().Err(err).Msg("Unknown reference zone")
	}
	sourceClock := reference
	if cfg.Zones.Source != "" {
		if sourceClock, err = timezone.Resolve(cfg.Zones.Source); err != nil {
			logger.Fatal().Err(err).Msg("Unknown source zone")
		}
	}
	cameraResolver, err := buildCameraResolver(cfg, reference)
	if err != nil {
		logger.Fatal().Err(err).Msg("Cannot set up camera zone resolver")
	}

	// Open the coordinate source
	opts := track.Options{Clock: sourceClock}
	if opts.History, err = cfg.HistoryOptions(); err != nil {
		logger.Fatal().Err(err).Msg("Invalid history filters")
	}
	source, err := track.NewSource(track.Format(cfg.Coordinates.Format), cfg.Coordinates.File, opts, fileClient)
	if err != nil {
		logger.Fatal().Err(err).Msg("Cannot open coordinate source")
	}

	// Writing into photos is destructive, so ask first
	if !*yes && !*dryRun {
		found, err := fileClient.ListImages(cfg.Photos.Folder, cfg.Photos.Recursive)
		if err != nil {
			logger.Fatal().Err(err).Str("folder", cfg.Photos.Folder).Msg("Cannot scan photo folder")
		}
		if !confirm(os.Stdin, os.Stderr, len(found), cfg.Photos.Folder) {
			logger.Info().Msg("Aborted")
			return
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	service := services.NewGeotagService(
		cfg.Photos.Folder,
		cfg.Photos.Recursive,
		cfg.Interval(),
		cfg.Photos.Overwrite,
		*dryRun,
		cfg.Workers,
		reference,
		cameraResolver,
		source,
		exif.NewJpegCodec(fileClient),
		fileClient,
		logger,
	)

	report, err := service.Run(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("Tagging run failed")
	}
	if report.Counts[constants.OutcomeUnreadable]+report.Counts[constants.OutcomeWriteFailed] > 0 {
		os.Exit(1)
	}
}

func runConvert(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	configPath := fs.String("config", "", "path to the YAML configuration file")
	coordinates := fs.String("coordinates", "", "coordinate track file")
	format := fs.String("format", "", "track format: auto, csv, gpx, nmea or history")
	out := fs.String("out", "", "CSV file to write, defaults to the input with a .csv extension")
	zone := fs.String("zone", "", "clock of naive coordinate timestamps")
	historyStart := fs.String("history-start", "", "first day of location history to keep (YYYY-MM-DD)")
	historyEnd := fs.String("history-end", "", "last day of location history to keep (YYYY-MM-DD)")
	maxAccuracy := fs.Float64("max-accuracy", 0, "drop fixes with a larger accuracy radius in meters")
	verbosity := fs.Int("verbosity", constants.DefaultVerbosity, "log detail from 1 errors only to 3 debug")
	fs.Parse(args)

	logger := newLogger()
	fileClient := file.NewFileService()

	cfg := utils.DefaultConfig()
	if *configPath != "" {
		loaded, err := utils.LoadConfig(*configPath, fileClient)
		if err != nil {
			logger.Fatal().Err(err).Str("config", *configPath).Msg("Failed to load configuration")
		}
		cfg = loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "coordinates":
			cfg.Coordinates.File = *coordinates
		case "format":
			cfg.Coordinates.Format = *format
		case "zone":
			cfg.Zones.Source = *zone
		case "history-start":
			cfg.History.Start = *historyStart
		case "history-end":
			cfg.History.End = *historyEnd
		case "max-accuracy":
			cfg.History.MaxAccuracy = *maxAccuracy
		case "verbosity":
			cfg.Verbosity = *verbosity
		}
	})
	logger = logger.Level(verbosityLevel(cfg.Verbosity))

	if cfg.Coordinates.File == "" {
		logger.Fatal().Msg("No coordinate file given, pass -coordinates")
	}

	// The source clock only matters for naive CSV timestamps
	clockName := cfg.Zones.Source
	if clockName == "" {
		clockName = cfg.Zones.Reference
	}
	clock, err := timezone.Resolve(clockName)
	if err != nil {
		logger.Fatal().Err(err).Msg("Unknown source zone")
	}

	opts := track.Options{Clock: clock}
	if opts.History, err = cfg.HistoryOptions(); err != nil {
		logger.Fatal().Err(err).Msg("Invalid history filters")
	}
	source, err := track.NewSource(track.Format(cfg.Coordinates.Format), cfg.Coordinates.File, opts, fileClient)
	if err != nil {
		logger.Fatal().Err(err).Msg("Cannot open coordinate source")
	}

	outPath := *out
	if outPath == "" {
		outPath = strings.TrimSuffix(cfg.Coordinates.File, filepath.Ext(cfg.Coordinates.File)) + ".csv"
	}
	if outPath == cfg.Coordinates.File {
		logger.Fatal().Str("out", outPath).Msg("Output would overwrite the input, pass a different -out")
	}

	if err := services.NewConvertService(source, fileClient, logger).Run(outPath); err != nil {
		logger.Fatal().Err(err).Msg("Conversion failed")
	}
}

// buildCameraResolver picks the strategy for the camera clock. The static
// resolver reads the configured camera zone up front and falls back to the
// reference zone when none is set.
func buildCameraResolver(cfg *utils.Config, reference *time.Location) (timezone.Resolver, error) {
	switch cfg.Zones.Resolver {
	case constants.ZoneResolverTrack:
		return timezone.NewTrackResolver(), nil
	case constants.ZoneResolverGoogle:
		return timezone.NewGoogleResolver(cfg.Zones.MapsAPIKey)
	default:
		if cfg.Zones.Camera == "" {
			return timezone.NewFixedResolver(reference), nil
		}
		loc, err := timezone.Resolve(cfg.Zones.Camera)
		if err != nil {
			return nil, err
		}
		return timezone.NewFixedResolver(loc), nil
	}
}

// confirm asks before touching the photos. Only an explicit yes proceeds.
func confirm(in io.Reader, out io.Writer, count int, folder string) bool {
	fmt.Fprintf(out, "About to modify up to %d photos in %s. Continue? [y/N] ", count, folder)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
