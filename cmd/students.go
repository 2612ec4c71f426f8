package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/attendance"
)

var studentsCmd = &cobra.Command{
	Use:   "students",
	Short: "Manage enrolled students",
}

var studentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List enrolled students",
	Long:  `Lists enrolled students in enrollment order. --query filters by ID or name, ignoring case and diacritics.`,
	Args:  cobra.NoArgs,
	RunE:  runStudentsList,
}

var studentsEnrollCmd = &cobra.Command{
	Use:   "enroll <student-id> <student-name> <image>",
	Short: "Enroll a student from a face photo",
	Long: `Detects the face in the image and stores the student with its embedding.
If the photo contains several faces the first detected one is used.`,
	Args: cobra.ExactArgs(3),
	RunE: runStudentsEnroll,
}

var studentsRemoveCmd = &cobra.Command{
	Use:   "remove <student-id>",
	Short: "Remove an enrolled student",
	Args:  cobra.ExactArgs(1),
	RunE:  runStudentsRemove,
}

func init() {
	rootCmd.AddCommand(studentsCmd)
	studentsCmd.AddCommand(studentsListCmd)
	studentsCmd.AddCommand(studentsEnrollCmd)
	studentsCmd.AddCommand(studentsRemoveCmd)

	studentsListCmd.Flags().String("query", "", "Filter by student ID or name")
	studentsListCmd.Flags().Bool("json", false, "Output as JSON")
}

// setupService loads configuration, connects the backend and builds the service.
func setupService(ctx context.Context) (*attendance.Service, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := initBackend(cfg); err != nil {
		return nil, err
	}
	return newAttendanceService(ctx, cfg, log)
}

func runStudentsList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	query := mustGetString(cmd, "query")
	jsonOutput := mustGetBool(cmd, "json")

	svc, err := setupService(ctx)
	if err != nil {
		return err
	}

	students, err := svc.ListIdentities(ctx, query)
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(students)
	}

	if len(students) == 0 {
		fmt.Println("No students found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tENROLLED")
	fmt.Fprintln(w, "--\t----\t--------")
	for _, s := range students {
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.StudentID, s.StudentName, s.EnrolledAt.Format("2006-01-02 15:04"))
	}
	w.Flush()

	fmt.Printf("\nTotal: %d students\n", len(students))
	return nil
}

func runStudentsEnroll(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	data, err := os.ReadFile(args[2])
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}

	svc, err := setupService(ctx)
	if err != nil {
		return err
	}

	identity, err := svc.Enroll(ctx, attendance.EnrollRequest{
		StudentID:   args[0],
		StudentName: args[1],
		Image:       data,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Student %s (ID: %s) enrolled.\n", identity.StudentName, identity.StudentID)
	return nil
}

func runStudentsRemove(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	svc, err := setupService(ctx)
	if err != nil {
		return err
	}

	if err := svc.Remove(ctx, args[0]); err != nil {
		if errors.Is(err, attendance.ErrNotFound) {
			return fmt.Errorf("student %s is not enrolled", args[0])
		}
		return err
	}

	fmt.Printf("Student %s removed.\n", args[0])
	return nil
}
