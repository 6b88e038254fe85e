// Package config loads zxscan settings from defaults, a zxscan.yaml file,
// ZXSCAN_* environment variables and bound command-line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/ericlevine/zxpipe"
	"github.com/ericlevine/zxpipe/binarizer"
	"github.com/ericlevine/zxpipe/pipeline"
)

// Config is the complete zxscan configuration.
type Config struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	Decode DecodeConfig `mapstructure:"decode" yaml:"decode" json:"decode"`
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`
}

// DecodeConfig mirrors the pipeline hints and options.
type DecodeConfig struct {
	TryHarder       bool     `mapstructure:"try_harder" yaml:"try_harder" json:"try_harder"`
	PureBarcode     bool     `mapstructure:"pure_barcode" yaml:"pure_barcode" json:"pure_barcode"`
	AlsoInverted    bool     `mapstructure:"also_inverted" yaml:"also_inverted" json:"also_inverted"`
	AssumeGS1       bool     `mapstructure:"assume_gs1" yaml:"assume_gs1" json:"assume_gs1"`
	Code39Check     bool     `mapstructure:"code39_check_digit" yaml:"code39_check_digit" json:"code39_check_digit"`
	Code39FullASCII bool     `mapstructure:"code39_full_ascii" yaml:"code39_full_ascii" json:"code39_full_ascii"`
	CharacterSet    string   `mapstructure:"character_set" yaml:"character_set" json:"character_set"`
	PossibleFormats []string `mapstructure:"possible_formats" yaml:"possible_formats" json:"possible_formats"`
	AutoRotate      bool     `mapstructure:"auto_rotate" yaml:"auto_rotate" json:"auto_rotate"`
	Multi           bool     `mapstructure:"multi" yaml:"multi" json:"multi"`
	Binarizer       string   `mapstructure:"binarizer" yaml:"binarizer" json:"binarizer"`
}

// OutputConfig selects how results are printed.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

// ServerConfig configures zxscan serve.
type ServerConfig struct {
	Host        string `mapstructure:"host" yaml:"host" json:"host"`
	Port        int    `mapstructure:"port" yaml:"port" json:"port"`
	MaxUploadMB int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
}

// OutputFormats lists the accepted output.format values.
var OutputFormats = []string{"text", "json", "yaml"}

var logLevels = []string{"debug", "info", "warn", "error"}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Decode: DecodeConfig{
			AutoRotate: true,
			Binarizer:  "hybrid",
		},
		Output: OutputConfig{Format: "text"},
		Server: ServerConfig{
			Host:        "localhost",
			Port:        8080,
			MaxUploadMB: 20,
		},
	}
}

// Validate checks every field and joins all problems into one error.
func (c *Config) Validate() error {
	var errs []error
	if !slices.Contains(logLevels, c.LogLevel) {
		errs = append(errs, fmt.Errorf("invalid log_level %q (want one of %s)", c.LogLevel, strings.Join(logLevels, ", ")))
	}
	if !slices.Contains(OutputFormats, c.Output.Format) {
		errs = append(errs, fmt.Errorf("invalid output.format %q (want one of %s)", c.Output.Format, strings.Join(OutputFormats, ", ")))
	}
	if _, err := binarizer.Factory(c.Decode.Binarizer); err != nil {
		errs = append(errs, fmt.Errorf("decode.binarizer: %w", err))
	}
	if _, err := c.Decode.Formats(); err != nil {
		errs = append(errs, err)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid server.port %d (must be between 1 and 65535)", c.Server.Port))
	}
	if c.Server.MaxUploadMB < 1 {
		errs = append(errs, fmt.Errorf("server.max_upload_mb must be positive, got %d", c.Server.MaxUploadMB))
	}
	return errors.Join(errs...)
}

// Level returns the slog level, debug when Verbose is set.
func (c *Config) Level() slog.Level {
	if c.Verbose {
		return slog.LevelDebug
	}
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Formats parses PossibleFormats. Entries may also be comma separated,
// which is how a single environment variable carries several.
func (d *DecodeConfig) Formats() ([]zxpipe.Format, error) {
	var formats []zxpipe.Format
	for _, entry := range d.PossibleFormats {
		for _, name := range strings.Split(entry, ",") {
			if name = strings.TrimSpace(name); name == "" {
				continue
			}
			f, err := zxpipe.ParseFormat(name)
			if err != nil {
				return nil, fmt.Errorf("decode.possible_formats: %w", err)
			}
			formats = append(formats, f)
		}
	}
	return formats, nil
}

// Hints builds the hint set the pipeline starts with.
func (d *DecodeConfig) Hints() (*zxpipe.Hints, error) {
	formats, err := d.Formats()
	if err != nil {
		return nil, err
	}
	h := &zxpipe.Hints{}
	h.SetFlag(zxpipe.HintTryHarder, d.TryHarder)
	h.SetFlag(zxpipe.HintPureBarcode, d.PureBarcode)
	h.SetFlag(zxpipe.HintAlsoInverted, d.AlsoInverted)
	h.SetFlag(zxpipe.HintAssumeGS1, d.AssumeGS1)
	h.SetFlag(zxpipe.HintAssumeCode39CheckDigit, d.Code39Check)
	h.SetFlag(zxpipe.HintCode39FullASCII, d.Code39FullASCII)
	if d.CharacterSet != "" {
		h.Set(zxpipe.HintCharacterSet, zxpipe.CharacterSet(d.CharacterSet))
	}
	if len(formats) > 0 {
		h.Set(zxpipe.HintPossibleFormats, zxpipe.Formats(formats...))
	}
	return h, nil
}

// PipelineOptions turns the decode section into pipeline options. Callers
// append their own logger and metrics.
func (d *DecodeConfig) PipelineOptions() ([]pipeline.Option, error) {
	hints, err := d.Hints()
	if err != nil {
		return nil, err
	}
	factory, err := binarizer.Factory(d.Binarizer)
	if err != nil {
		return nil, err
	}
	return []pipeline.Option{
		pipeline.WithHints(hints),
		pipeline.WithAutoRotate(d.AutoRotate),
		pipeline.WithBinarizer(factory),
	}, nil
}
