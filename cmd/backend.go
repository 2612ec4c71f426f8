package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/database/postgres"
	"github.com/kozaktomas/face-attendance/internal/facedetect"
	"github.com/kozaktomas/face-attendance/internal/logging"
)

// loadConfig loads and validates configuration and sets up the logger.
func loadConfig() (*config.Config, *logrus.Logger, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	return cfg, log, nil
}

// initBackend connects to PostgreSQL, applies migrations and registers the repositories.
func initBackend(cfg *config.Config) error {
	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}
	if err := postgres.Initialize(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	return nil
}

// newAttendanceService wires the registered repositories and the face service client.
func newAttendanceService(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*attendance.Service, error) {
	identities, err := database.GetIdentityWriter(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting identity store: %w", err)
	}
	records, err := database.GetAttendanceWriter(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting attendance store: %w", err)
	}

	detector := facedetect.NewClient(cfg.FaceService.URL, cfg.FaceService.Timeout())
	return attendance.NewService(identities, records, detector, attendance.PolicyFromConfig(cfg.Attendance), log), nil
}

func outputJSON(data any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
