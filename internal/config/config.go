package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Attendance  AttendanceConfig  `yaml:"attendance"`
	FaceService FaceServiceConfig `yaml:"face_service"`
	Web         WebConfig         `yaml:"web"`
	Log         LogConfig         `yaml:"log"`
	Database    DatabaseConfig    `yaml:"-"`
}

// AttendanceConfig is the recognition and debounce policy.
type AttendanceConfig struct {
	Tolerance      float64 `yaml:"tolerance"`       // match when distance is strictly below
	FrameThreshold int     `yaml:"frame_threshold"` // matched frames before attendance is committed
	Downscale      float64 `yaml:"downscale"`       // frame resize factor before detection
	EmbeddingDim   int     `yaml:"embedding_dim"`   // expected embedding length
}

type FaceServiceConfig struct {
	URL        string `yaml:"url"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// Timeout returns the per-request timeout of the face service client.
func (c FaceServiceConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

type WebConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // optional rotating log file
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// envList reads a comma separated list. Blank items are dropped.
func envList(key string, defaultVal []string) []string {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}

func defaults() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}
	return cfg
}

func Load() *Config {
	d := defaults()

	return &Config{
		Attendance: AttendanceConfig{
			Tolerance:      envFloat("ATTENDANCE_TOLERANCE", d.Attendance.Tolerance),
			FrameThreshold: envInt("ATTENDANCE_FRAME_THRESHOLD", d.Attendance.FrameThreshold),
			Downscale:      envFloat("ATTENDANCE_DOWNSCALE", d.Attendance.Downscale),
			EmbeddingDim:   envInt("EMBEDDING_DIM", d.Attendance.EmbeddingDim),
		},
		FaceService: FaceServiceConfig{
			URL:        envString("FACE_SERVICE_URL", d.FaceService.URL),
			TimeoutSec: envInt("FACE_SERVICE_TIMEOUT_SEC", d.FaceService.TimeoutSec),
		},
		Web: WebConfig{
			Host:           envString("WEB_HOST", d.Web.Host),
			Port:           envInt("WEB_PORT", d.Web.Port),
			AllowedOrigins: envList("WEB_ALLOWED_ORIGINS", d.Web.AllowedOrigins),
		},
		Log: LogConfig{
			Level: envString("LOG_LEVEL", d.Log.Level),
			File:  os.Getenv("LOG_FILE"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
	}
}

// Validate rejects a policy the recognition engine cannot run with.
func (c *Config) Validate() error {
	var errs []error
	a := c.Attendance
	if a.Tolerance <= 0 {
		errs = append(errs, fmt.Errorf("tolerance must be positive, got %v", a.Tolerance))
	}
	if a.FrameThreshold < 1 {
		errs = append(errs, fmt.Errorf("frame threshold must be at least 1, got %d", a.FrameThreshold))
	}
	if a.Downscale <= 0 || a.Downscale > 1 {
		errs = append(errs, fmt.Errorf("downscale must be in (0, 1], got %v", a.Downscale))
	}
	if a.EmbeddingDim < 1 {
		errs = append(errs, fmt.Errorf("embedding dimension must be positive, got %d", a.EmbeddingDim))
	}
	if c.FaceService.URL == "" {
		errs = append(errs, errors.New("face service URL is required"))
	}
	return errors.Join(errs...)
}
