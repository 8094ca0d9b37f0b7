package utils

import (
	"fmt"
	"runtime"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/benmeehan/batch-geotag/internal/constants"
	"github.com/benmeehan/batch-geotag/pkg/file"
	"github.com/benmeehan/batch-geotag/pkg/track"
)

// Config represents the structure of the configuration file.
type Config struct {
	Coordinates struct {
		File   string `yaml:"file" validate:"required"` // Path to the coordinate track file
		Format string `yaml:"format"`                   // Track format, auto infers it from the extension
	} `yaml:"coordinates"`

	Photos struct {
		Folder    string `yaml:"folder" validate:"required"` // Folder holding the JPEG files
		Recursive bool   `yaml:"recursive"`                  // Descend into subfolders
		Overwrite bool   `yaml:"overwrite"`                  // Replace geodata already present in a photo
	} `yaml:"photos"`

	Resample struct {
		IntervalSeconds int `yaml:"interval_seconds" validate:"gt=0"` // Grid spacing in seconds
	} `yaml:"resample"`

	Zones struct {
		Reference  string `yaml:"reference" validate:"required"`                 // Zone the coordinate timeline is aligned to
		Source     string `yaml:"source"`                                        // Clock of naive coordinate timestamps, defaults to the reference
		Camera     string `yaml:"camera"`                                        // Camera clock for the static resolver, defaults to the reference
		Resolver   string `yaml:"resolver" validate:"oneof=static track google"` // How the camera zone is determined
		MapsAPIKey string `yaml:"maps_api_key"`                                  // Google Maps API key for the google resolver
	} `yaml:"zones"`

	History struct {
		Start       string  `yaml:"start" validate:"omitempty,datetime=2006-01-02"` // First day of location history to keep, inclusive
		End         string  `yaml:"end" validate:"omitempty,datetime=2006-01-02"`   // Last day of location history to keep, inclusive
		MaxAccuracy float64 `yaml:"max_accuracy" validate:"gte=0"`                  // Drop fixes with a larger accuracy radius in meters
	} `yaml:"history"`

	Workers   int `yaml:"workers" validate:"gt=0"`          // Number of photos processed in parallel
	Verbosity int `yaml:"verbosity" validate:"gte=1,lte=3"` // Log detail from 1 errors only to 3 debug
}

// DefaultConfig returns a configuration carrying the defaults that apply when
// a field is absent from the file.
func DefaultConfig() *Config {
	var cfg Config
	cfg.Coordinates.Format = string(track.FormatAuto)
	cfg.Resample.IntervalSeconds = constants.DefaultResampleSeconds
	cfg.Zones.Reference = "Local"
	cfg.Zones.Resolver = constants.ZoneResolverStatic
	cfg.Workers = runtime.NumCPU()
	cfg.Verbosity = constants.DefaultVerbosity
	return &cfg
}

// LoadConfig loads the YAML configuration from the specified file on top of
// the defaults. It returns a pointer to the Config struct and an error if
// loading fails.
func LoadConfig(filename string, fileClient file.FileOperations) (*Config, error) {
	config := DefaultConfig()
	if err := fileClient.ReadYamlFile(filename, config); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration against its declared field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if c.Zones.Resolver == constants.ZoneResolverGoogle && c.Zones.MapsAPIKey == "" {
		return fmt.Errorf("zones: the %s resolver needs a maps_api_key", constants.ZoneResolverGoogle)
	}

	return nil
}

// Interval returns the resample grid spacing as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Resample.IntervalSeconds) * time.Second
}

// HistoryOptions converts the configured history filters into source options.
// The day bounds are read as UTC dates.
func (c *Config) HistoryOptions() (track.HistoryOptions, error) {
	opts := track.HistoryOptions{MaxAccuracy: c.History.MaxAccuracy}

	if c.History.Start != "" {
		start, err := time.Parse(time.DateOnly, c.History.Start)
		if err != nil {
			return opts, fmt.Errorf("history start: %w", err)
		}
		opts.Start = start
	}
	if c.History.End != "" {
		end, err := time.Parse(time.DateOnly, c.History.End)
		if err != nil {
			return opts, fmt.Errorf("history end: %w", err)
		}
		opts.End = end
	}

	return opts, nil
}
