package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/RobLoach/babel/internal/logger"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Path of the file this was loaded from, if any
	Path string

	// Loose:  "super.foo()" => "_Base.prototype.foo.call(this)"
	// Strict: "super.foo()" => "_get(Object.getPrototypeOf(Foo.prototype), "foo", this).call(this)"
	//
	// Loose mode also assigns plain methods directly to the prototype instead
	// of defining them with property descriptors, which makes them enumerable.
	Loose bool

	// Reference helpers as "babelHelpers.inherits" instead of declaring them
	// at the top of each file
	ExternalHelpers bool
	HelperNamespace string

	LogLevel   logger.LogLevel
	Color      logger.UseColor
	ErrorLimit int
}

const DefaultHelperNamespace = "babelHelpers"

func Default() Config {
	return Config{
		HelperNamespace: DefaultHelperNamespace,
		LogLevel:        logger.LevelInfo,
		ErrorLimit:      10,
	}
}

type configDisk struct {
	Loose           *bool   `yaml:"loose"`
	ExternalHelpers *bool   `yaml:"externalHelpers"`
	HelperNamespace *string `yaml:"helperNamespace"`
	LogLevel        *string `yaml:"logLevel"`
	Color           *bool   `yaml:"color"`
	ErrorLimit      *int    `yaml:"errorLimit"`
}

// LoadFile reads a YAML config file. Keys that are missing from the file keep
// their default values and unknown keys are an error.
func LoadFile(path string) (Config, error) {
	if path == "" {
		return Config{}, fmt.Errorf("config: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	config, err := Parse(file)
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", abs, err)
	}
	config.Path = abs
	return config, nil
}

func Parse(reader io.Reader) (Config, error) {
	var raw configDisk
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	return raw.toConfig()
}

func (raw configDisk) toConfig() (Config, error) {
	config := Default()

	if raw.Loose != nil {
		config.Loose = *raw.Loose
	}
	if raw.ExternalHelpers != nil {
		config.ExternalHelpers = *raw.ExternalHelpers
	}
	if raw.HelperNamespace != nil {
		if *raw.HelperNamespace == "" {
			return Config{}, errors.New("helperNamespace must not be empty")
		}
		config.HelperNamespace = *raw.HelperNamespace
	}
	if raw.LogLevel != nil {
		level, ok := ParseLogLevel(*raw.LogLevel)
		if !ok {
			return Config{}, fmt.Errorf("Invalid log level: %q", *raw.LogLevel)
		}
		config.LogLevel = level
	}
	if raw.Color != nil {
		if *raw.Color {
			config.Color = logger.ColorAlways
		} else {
			config.Color = logger.ColorNever
		}
	}
	if raw.ErrorLimit != nil {
		if *raw.ErrorLimit < 0 {
			return Config{}, fmt.Errorf("Invalid error limit: %d", *raw.ErrorLimit)
		}
		config.ErrorLimit = *raw.ErrorLimit
	}

	return config, nil
}

// Uses the same names as the "--log-level" flag
func ParseLogLevel(text string) (logger.LogLevel, bool) {
	switch text {
	case "info":
		return logger.LevelInfo, true
	case "warning":
		return logger.LevelWarning, true
	case "error":
		return logger.LevelError, true
	case "silent":
		return logger.LevelSilent, true
	}
	return logger.LevelNone, false
}
