// Package config loads the analyzer configuration from a YAML file, a .env
// file and BVA_ prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/detector"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/kinematics"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/motion"
)

// EnvPrefix is the prefix of environment overrides, e.g. BVA_SERVER_ADDR.
const EnvPrefix = "BVA"

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Detector DetectorConfig `mapstructure:"detector"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr      string `mapstructure:"addr"`
	StaticDir string `mapstructure:"static_dir"`
}

// StorageConfig holds the pose cache location
type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// DetectorConfig holds pose service configuration
type DetectorConfig struct {
	ScriptPath            string  `mapstructure:"script_path"`
	PythonPath            string  `mapstructure:"python_path"`
	MinConfidence         float64 `mapstructure:"min_confidence"`
	MinTrackingConfidence float64 `mapstructure:"min_tracking_confidence"`
}

// MotionConfig holds interval detection parameters for one motion kind
type MotionConfig struct {
	Policy     string  `mapstructure:"policy"`
	K          float64 `mapstructure:"k"`
	Percentile float64 `mapstructure:"percentile"`
	NearZero   float64 `mapstructure:"near_zero"`
	Floor      float64 `mapstructure:"floor"`
	Fixed      float64 `mapstructure:"fixed"`
	MinFrames  int     `mapstructure:"min_frames"`
}

// AnalysisConfig holds analysis defaults
type AnalysisConfig struct {
	ThrowingArm  string       `mapstructure:"throwing_arm"`
	ImageScaling bool         `mapstructure:"image_scaling"`
	SyncLandmark string       `mapstructure:"sync_landmark"`
	Swing        MotionConfig `mapstructure:"swing"`
	Pitch        MotionConfig `mapstructure:"pitch"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from path, a .env file in the working directory and
// environment variables. An empty path or a missing file leaves the defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("server.static_dir", "")

	v.SetDefault("storage.db_path", "./data/baseball-analyzer.db")

	v.SetDefault("detector.script_path", "")
	v.SetDefault("detector.python_path", "")
	v.SetDefault("detector.min_confidence", 0.5)
	v.SetDefault("detector.min_tracking_confidence", 0.5)

	swing := motion.SwingConfig()
	pitch := motion.PitchConfig()
	v.SetDefault("analysis.throwing_arm", "right")
	v.SetDefault("analysis.image_scaling", true)
	v.SetDefault("analysis.sync_landmark", "start")
	setMotionDefaults(v, "analysis.swing", swing)
	setMotionDefaults(v, "analysis.pitch", pitch)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

func setMotionDefaults(v *viper.Viper, prefix string, c motion.Config) {
	v.SetDefault(prefix+".policy", c.Policy.String())
	v.SetDefault(prefix+".k", c.K)
	v.SetDefault(prefix+".percentile", c.Percentile)
	v.SetDefault(prefix+".near_zero", c.NearZero)
	v.SetDefault(prefix+".floor", c.Floor)
	v.SetDefault(prefix+".fixed", c.Fixed)
	v.SetDefault(prefix+".min_frames", c.MinFrames)
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required")
	}

	if c.Detector.MinConfidence < 0 || c.Detector.MinConfidence > 1 {
		return fmt.Errorf("detector.min_confidence must be between 0.0 and 1.0")
	}
	if c.Detector.MinTrackingConfidence < 0 || c.Detector.MinTrackingConfidence > 1 {
		return fmt.Errorf("detector.min_tracking_confidence must be between 0.0 and 1.0")
	}

	if _, err := kinematics.ParseArm(c.Analysis.ThrowingArm); err != nil {
		return fmt.Errorf("analysis.throwing_arm: %w", err)
	}
	for name, m := range map[string]MotionConfig{"swing": c.Analysis.Swing, "pitch": c.Analysis.Pitch} {
		if _, err := m.Motion(); err != nil {
			return fmt.Errorf("analysis.%s: %w", name, err)
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}

// Motion converts m to a motion.Config.
func (m MotionConfig) Motion() (motion.Config, error) {
	policy, err := motion.ParsePolicy(m.Policy)
	if err != nil {
		return motion.Config{}, err
	}
	if m.MinFrames < 1 {
		return motion.Config{}, fmt.Errorf("min_frames must be at least 1")
	}
	if policy == motion.Percentile && (m.Percentile <= 0 || m.Percentile > 100) {
		return motion.Config{}, fmt.Errorf("percentile must be in (0, 100]")
	}
	return motion.Config{
		Policy:     policy,
		K:          m.K,
		Percentile: m.Percentile,
		NearZero:   m.NearZero,
		Floor:      m.Floor,
		Fixed:      m.Fixed,
		MinFrames:  m.MinFrames,
	}, nil
}

// DetectorConfig converts the detector section to a detector.Config.
func (c *Config) DetectorConfig() detector.Config {
	return detector.Config{
		ScriptPath:      c.Detector.ScriptPath,
		PythonPath:      c.Detector.PythonPath,
		MinConfidence:   c.Detector.MinConfidence,
		MinTrackingConf: c.Detector.MinTrackingConfidence,
	}
}

// Arm returns the configured throwing arm, defaulting to the right arm.
func (c *Config) Arm() kinematics.Arm {
	arm, err := kinematics.ParseArm(c.Analysis.ThrowingArm)
	if err != nil {
		return kinematics.RightArm
	}
	return arm
}
