package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kozaktomas/face-attendance/internal/attendance"
)

var studentsImportCmd = &cobra.Command{
	Use:   "import <roster.yaml>",
	Short: "Enroll students from a roster file",
	Long: `Enrolls every student listed in a YAML roster. Image paths are resolved
relative to the roster file. Students that are already enrolled are skipped.

Example roster:

  students:
    - student_id: "S001"
      student_name: "Ana Novak"
      image: photos/ana.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runStudentsImport,
}

func init() {
	studentsCmd.AddCommand(studentsImportCmd)

	studentsImportCmd.Flags().Int("concurrency", 4, "Number of parallel enrollments")
	studentsImportCmd.Flags().Bool("json", false, "Output as JSON")
}

// RosterEntry is one student of a roster file.
type RosterEntry struct {
	StudentID   string `yaml:"student_id"`
	StudentName string `yaml:"student_name"`
	Image       string `yaml:"image"`
}

type roster struct {
	Students []RosterEntry `yaml:"students"`
}

// ImportFailure describes a roster entry that could not be enrolled.
type ImportFailure struct {
	StudentID string `json:"student_id"`
	Error     string `json:"error"`
}

// ImportResult summarizes a roster import.
type ImportResult struct {
	Success       bool            `json:"success"`
	Total         int             `json:"total"`
	Enrolled      int             `json:"enrolled"`
	Skipped       int             `json:"skipped"`
	Failed        []ImportFailure `json:"failed"`
	DurationMs    int64           `json:"duration_ms"`
	DurationHuman string          `json:"duration_human,omitempty"`
}

// parseRoster decodes a roster and resolves relative image paths against baseDir.
func parseRoster(data []byte, baseDir string) ([]RosterEntry, error) {
	var r roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing roster: %w", err)
	}

	seen := make(map[string]struct{}, len(r.Students))
	for i := range r.Students {
		e := &r.Students[i]
		if e.StudentID == "" || e.Image == "" {
			return nil, fmt.Errorf("roster entry %d: student_id and image are required", i+1)
		}
		if _, dup := seen[e.StudentID]; dup {
			return nil, fmt.Errorf("roster entry %d: duplicate student_id %q", i+1, e.StudentID)
		}
		seen[e.StudentID] = struct{}{}
		if !filepath.IsAbs(e.Image) {
			e.Image = filepath.Join(baseDir, e.Image)
		}
	}
	return r.Students, nil
}

// enroller is the part of the attendance service used by the import.
type enroller interface {
	Enroll(ctx context.Context, req attendance.EnrollRequest) (*attendance.Identity, error)
}

// importRoster enrolls entries with at most concurrency enrollments in flight.
// onDone is called after each entry.
func importRoster(ctx context.Context, svc enroller, entries []RosterEntry, concurrency int, onDone func()) ImportResult {
	if concurrency < 1 {
		concurrency = 1
	}

	var enrolled, skipped int64
	var mu sync.Mutex
	failed := make([]ImportFailure, 0)

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for _, entry := range entries {
		wg.Add(1)
		go func(e RosterEntry) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			err := enrollEntry(ctx, svc, e)
			switch {
			case err == nil:
				atomic.AddInt64(&enrolled, 1)
			case errors.Is(err, attendance.ErrAlreadyEnrolled):
				atomic.AddInt64(&skipped, 1)
			default:
				mu.Lock()
				failed = append(failed, ImportFailure{StudentID: e.StudentID, Error: err.Error()})
				mu.Unlock()
			}

			if onDone != nil {
				onDone()
			}
		}(entry)
	}

	wg.Wait()

	return ImportResult{
		Success:  len(failed) == 0,
		Total:    len(entries),
		Enrolled: int(enrolled),
		Skipped:  int(skipped),
		Failed:   failed,
	}
}

func enrollEntry(ctx context.Context, svc enroller, e RosterEntry) error {
	data, err := os.ReadFile(e.Image)
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}
	_, err = svc.Enroll(ctx, attendance.EnrollRequest{
		StudentID:   e.StudentID,
		StudentName: e.StudentName,
		Image:       data,
	})
	return err
}

func runStudentsImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	concurrency := mustGetInt(cmd, "concurrency")
	jsonOutput := mustGetBool(cmd, "json")
	startTime := time.Now()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading roster: %w", err)
	}
	entries, err := parseRoster(data, filepath.Dir(args[0]))
	if err != nil {
		return err
	}

	svc, err := setupService(ctx)
	if err != nil {
		return err
	}

	if !jsonOutput {
		fmt.Printf("Found %d students to enroll\n\n", len(entries))
	}

	// Create progress bar (only for non-JSON output)
	var bar *progressbar.ProgressBar
	if !jsonOutput {
		bar = progressbar.NewOptions(len(entries),
			progressbar.OptionSetDescription("Enrolling"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("students"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionFullWidth(),
		)
	}

	result := importRoster(ctx, svc, entries, concurrency, func() {
		if bar != nil {
			bar.Add(1)
		}
	})

	duration := time.Since(startTime)
	result.DurationMs = duration.Milliseconds()

	if jsonOutput {
		return outputJSON(result)
	}

	fmt.Println()
	result.DurationHuman = formatDuration(duration)

	fmt.Println("\nImport complete!")
	fmt.Printf("  Enrolled: %d\n", result.Enrolled)
	if result.Skipped > 0 {
		fmt.Printf("  Skipped:  %d (already enrolled)\n", result.Skipped)
	}
	for _, f := range result.Failed {
		fmt.Printf("  Failed:   %s: %s\n", f.StudentID, f.Error)
	}
	fmt.Printf("  Duration: %s\n", result.DurationHuman)

	if !result.Success {
		return fmt.Errorf("%d of %d students failed to enroll", len(result.Failed), result.Total)
	}
	return nil
}
