package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var attendanceCmd = &cobra.Command{
	Use:   "attendance",
	Short: "Show recorded attendance",
	Long:  `Lists the students recorded present in the current session, in the order they were recognized.`,
	Args:  cobra.NoArgs,
	RunE:  runAttendance,
}

func init() {
	rootCmd.AddCommand(attendanceCmd)

	attendanceCmd.Flags().Bool("json", false, "Output as JSON")
}

func runAttendance(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	jsonOutput := mustGetBool(cmd, "json")

	svc, err := setupService(ctx)
	if err != nil {
		return err
	}

	records, err := svc.ListAttendance(ctx)
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(records)
	}

	if len(records) == 0 {
		fmt.Println("No attendance recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tMARKED")
	fmt.Fprintln(w, "--\t----\t------")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.StudentID, r.StudentName, r.MarkedAt.Format("15:04:05"))
	}
	w.Flush()

	fmt.Printf("\nPresent: %d students\n", len(records))
	return nil
}
