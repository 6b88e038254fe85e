package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// FileName is the config file base name, searched with any extension
	// viper understands.
	FileName = "zxscan"

	// EnvPrefix prefixes environment overrides, e.g. ZXSCAN_DECODE_TRY_HARDER.
	EnvPrefix = "ZXSCAN"
)

// Loader resolves a Config. Each Loader owns its viper instance.
type Loader struct {
	v *viper.Viper
}

// NewLoader returns a loader with defaults and environment binding set up.
func NewLoader() *Loader {
	l := &Loader{v: viper.New()}
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	l.v.AutomaticEnv()
	l.setDefaults()
	return l
}

// BindFlag makes the named flag override key when it was set.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("bind %s: no such flag", key)
	}
	return l.v.BindPFlag(key, flag)
}

// Load reads file when given, otherwise the first zxscan config found on
// the search path. A missing search-path file is not an error.
func (l *Loader) Load(file string) (*Config, error) {
	if file != "" {
		if _, err := os.Stat(file); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		l.v.SetConfigFile(file)
	} else {
		l.v.SetConfigName(FileName)
		for _, p := range SearchPaths() {
			l.v.AddConfigPath(p)
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// FileUsed returns the config file that was read, if any.
func (l *Loader) FileUsed() string {
	return l.v.ConfigFileUsed()
}

// SearchPaths lists the directories searched for zxscan.yaml, in order.
func SearchPaths() []string {
	paths := []string{"."}
	home, herr := os.UserHomeDir()
	if herr == nil {
		paths = append(paths, home)
	}
	if dir, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		paths = append(paths, filepath.Join(dir, "zxscan"))
	} else if herr == nil {
		paths = append(paths, filepath.Join(home, ".config", "zxscan"))
	}
	return append(paths, "/etc/zxscan")
}

func (l *Loader) setDefaults() {
	d := DefaultConfig()
	l.v.SetDefault("log_level", d.LogLevel)
	l.v.SetDefault("verbose", d.Verbose)

	l.v.SetDefault("decode.try_harder", d.Decode.TryHarder)
	l.v.SetDefault("decode.pure_barcode", d.Decode.PureBarcode)
	l.v.SetDefault("decode.also_inverted", d.Decode.AlsoInverted)
	l.v.SetDefault("decode.assume_gs1", d.Decode.AssumeGS1)
	l.v.SetDefault("decode.code39_check_digit", d.Decode.Code39Check)
	l.v.SetDefault("decode.code39_full_ascii", d.Decode.Code39FullASCII)
	l.v.SetDefault("decode.character_set", d.Decode.CharacterSet)
	l.v.SetDefault("decode.possible_formats", []string{})
	l.v.SetDefault("decode.auto_rotate", d.Decode.AutoRotate)
	l.v.SetDefault("decode.multi", d.Decode.Multi)
	l.v.SetDefault("decode.binarizer", d.Decode.Binarizer)

	l.v.SetDefault("output.format", d.Output.Format)

	l.v.SetDefault("server.host", d.Server.Host)
	l.v.SetDefault("server.port", d.Server.Port)
	l.v.SetDefault("server.max_upload_mb", d.Server.MaxUploadMB)
}
