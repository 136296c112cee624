/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	fluke45 "github.com/allbin/go-fluke45"
	"github.com/allbin/go-fluke45/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// settings are the persistent flags after merging config file and environment
type settings struct {
	Port      string        `mapstructure:"port"`
	Baud      int           `mapstructure:"baud"`
	Timeout   time.Duration `mapstructure:"timeout"`
	LogLevel  string        `mapstructure:"log-level"`
	LogFormat string        `mapstructure:"log-format"`
}

var (
	v   = viper.New()
	cfg settings
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fluke45",
	Short: "Read a Fluke 45 bench multimeter over its serial interface",
	Long: `fluke45 talks to a Fluke 45 bench multimeter through its RS-232 remote
interface. It finds the meter among the serial ports, takes readings and
reports the meter's function, range and active modes.

Settings are read from flags, FLUKE45_* environment variables and
$HOME/.config/fluke45/config.yaml, in that order of precedence:

  port: /dev/ttyUSB0
  baud: 9600
  timeout: 2s
  log-level: info`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFile, _ := cmd.Flags().GetString("config")
		s, err := loadSettings(v, configFile)
		if err != nil {
			return err
		}
		cfg = s
		return setupLogger(s)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default $HOME/.config/fluke45/config.yaml)")
	flags.StringP("port", "p", "", "serial port of the meter (empty: scan all ports)")
	flags.IntP("baud", "b", 9600, "baud rate")
	flags.Duration("timeout", 2*time.Second, "how long to wait for each reply line")
	flags.String("log-level", "warn", "log level: debug, info, warn, error")
	flags.String("log-format", "console", "log format: auto, console, json, text")

	for _, name := range []string{"port", "baud", "timeout", "log-level", "log-format"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}
}

// loadSettings merges defaults, config file and environment into settings.
// A missing default config file is not an error; a missing explicit one is.
func loadSettings(v *viper.Viper, path string) (settings, error) {
	v.SetConfigType("yaml")
	v.SetEnvPrefix("FLUKE45")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("baud", 9600)
	v.SetDefault("timeout", 2*time.Second)
	v.SetDefault("log-level", "warn")
	v.SetDefault("log-format", "console")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "fluke45"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return settings{}, fmt.Errorf("read config: %w", err)
		}
	}

	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return settings{}, fmt.Errorf("decode config: %w", err)
	}
	return s, nil
}

func setupLogger(s settings) error {
	level, err := logger.ParseLevel(s.LogLevel)
	if err != nil {
		return err
	}
	format, ok := logger.ParseFormat(s.LogFormat)
	if !ok {
		return fmt.Errorf("unknown log format %q", s.LogFormat)
	}
	logger.SetLogger(logger.NewSlog(os.Stderr, level, format))
	return nil
}

// meterOptions turns the settings into session options.
func meterOptions(s settings) []fluke45.Option {
	return []fluke45.Option{
		fluke45.WithBaudRate(s.Baud),
		fluke45.WithTimeout(s.Timeout),
		fluke45.WithLogger(logger.GetLogger()),
	}
}

// connectMeter opens a session on the configured port, scanning when none is set.
func connectMeter() (*fluke45.Session, error) {
	if cfg.Port == "" {
		fmt.Fprintln(os.Stderr, "Scanning ports...")
	}
	return fluke45.Connect(cfg.Port, meterOptions(cfg)...)
}
