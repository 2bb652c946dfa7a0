package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/kinematics"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/motion"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	if cfg.Server.Addr != "127.0.0.1:8080" {
		t.Errorf("server.addr = %q", cfg.Server.Addr)
	}
	if cfg.Arm() != kinematics.RightArm {
		t.Errorf("Arm() = %v, want right", cfg.Arm())
	}

	swing, err := cfg.Analysis.Swing.Motion()
	if err != nil {
		t.Fatalf("swing config: %v", err)
	}
	if swing != motion.SwingConfig() {
		t.Errorf("swing = %+v, want %+v", swing, motion.SwingConfig())
	}
	pitch, err := cfg.Analysis.Pitch.Motion()
	if err != nil {
		t.Fatalf("pitch config: %v", err)
	}
	if pitch != motion.PitchConfig() {
		t.Errorf("pitch = %+v, want %+v", pitch, motion.PitchConfig())
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("logging.level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	content := `
server:
  addr: ":9000"
storage:
  db_path: "/tmp/cache.db"
analysis:
  throwing_arm: left
  pitch:
    policy: mean_std
    k: 1.2
    floor: 0.5
    min_frames: 3
logging:
  level: debug
  format: json
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BVA_STORAGE_DB_PATH", "/tmp/override.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if cfg.Server.Addr != ":9000" {
		t.Errorf("server.addr = %q, want :9000", cfg.Server.Addr)
	}
	if cfg.Storage.DBPath != "/tmp/override.db" {
		t.Errorf("storage.db_path = %q, want env override", cfg.Storage.DBPath)
	}
	if cfg.Arm() != kinematics.LeftArm {
		t.Errorf("Arm() = %v, want left", cfg.Arm())
	}

	pitch, err := cfg.Analysis.Pitch.Motion()
	if err != nil {
		t.Fatalf("pitch config: %v", err)
	}
	if pitch.Policy != motion.MeanStd || pitch.K != 1.2 || pitch.MinFrames != 3 {
		t.Errorf("pitch = %+v", pitch)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Analysis.Swing.MinFrames != 4 {
		t.Errorf("swing.min_frames = %d, want default 4", cfg.Analysis.Swing.MinFrames)
	}
}

func TestValidateErrors(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"empty db path", func(c *Config) { c.Storage.DBPath = "" }},
		{"confidence above 1", func(c *Config) { c.Detector.MinConfidence = 1.5 }},
		{"tracking below 0", func(c *Config) { c.Detector.MinTrackingConfidence = -0.1 }},
		{"unknown arm", func(c *Config) { c.Analysis.ThrowingArm = "both" }},
		{"unknown policy", func(c *Config) { c.Analysis.Swing.Policy = "median" }},
		{"zero min frames", func(c *Config) { c.Analysis.Pitch.MinFrames = 0 }},
		{"bad percentile", func(c *Config) { c.Analysis.Pitch.Percentile = 120 }},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestDetectorConfig(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cfg.Detector.ScriptPath = "/opt/pose_service.py"

	dc := cfg.DetectorConfig()
	if dc.ScriptPath != "/opt/pose_service.py" || dc.MinConfidence != 0.5 || dc.MinTrackingConf != 0.5 {
		t.Errorf("DetectorConfig() = %+v", dc)
	}
}
