// Package cli holds the configuration and logging shared by the commands.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Configuration keys.
const (
	KeyTolerance  = "tolerance"
	KeyLogFile    = "logfile"
	KeyBufferSize = "buffer_size"
	KeyVerbose    = "verbose"
)

// DefaultBufferSize matches the buffered writer's default ceiling.
const DefaultBufferSize = 5 << 20

// Config is the resolved configuration of a command.
type Config struct {
	Tolerance  float64
	LogFile    string
	BufferSize int
	Verbose    bool
}

// SetupConfig returns a viper instance for app with defaults set, reading
// config.{yaml,toml,json} from /etc/<app>, $HOME/.<app> or the working
// directory when present. Environment variables <APP>_<KEY> override the
// file.
func SetupConfig(app string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(KeyTolerance, 0.0)
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyBufferSize, DefaultBufferSize)
	v.SetDefault(KeyVerbose, false)

	v.SetConfigName("config")
	v.AddConfigPath(filepath.FromSlash("/etc/" + app))
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, "."+app))
	}
	v.AddConfigPath(".")
	v.SetEnvPrefix(app)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return v, nil
}

// Load resolves v into a Config.
func Load(v *viper.Viper) (Config, error) {
	c := Config{
		Tolerance:  v.GetFloat64(KeyTolerance),
		LogFile:    v.GetString(KeyLogFile),
		BufferSize: v.GetInt(KeyBufferSize),
		Verbose:    v.GetBool(KeyVerbose),
	}
	if c.Tolerance < 0 {
		return c, fmt.Errorf("negative %s %g", KeyTolerance, c.Tolerance)
	}
	if c.BufferSize <= 0 {
		return c, fmt.Errorf("%s must be positive, got %d", KeyBufferSize, c.BufferSize)
	}
	return c, nil
}

// NewLogger returns a logger for c. Output goes to a rotating log file when
// one is configured, to stderr when verbose, and nowhere otherwise.
func NewLogger(c Config, stderr io.Writer) *log.Logger {
	switch {
	case c.LogFile != "":
		return log.New(&lumberjack.Logger{
			Filename:   c.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 4,
			MaxAge:     180, // days
			Compress:   true,
		}, "", log.LstdFlags)
	case c.Verbose:
		return log.New(stderr, "", log.LstdFlags)
	default:
		return log.New(io.Discard, "", 0)
	}
}
