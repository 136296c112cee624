/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/allbin/go-fluke45/internal/tui/styles"
	"github.com/spf13/cobra"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the meter is set to a function and modes",
	Long: `Check that the meter is set to the given function with exactly the given
modes. Exits with status 1 if it is not, so test scripts can refuse to run
against a wrongly configured meter.

Functions: voltage, current, resistance, frequency
Modes:     auto, ac, dc, comp, rel, dbw, db, hold, max, min

Examples:
  fluke45 check --function voltage --modes auto,dc
  fluke45 check -f resistance -m auto`,
	Run: func(cmd *cobra.Command, args []string) {
		function, _ := cmd.Flags().GetString("function")
		modes, _ := cmd.Flags().GetStringSlice("modes")
		quiet, _ := cmd.Flags().GetBool("quiet")

		session, err := connectMeter()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting to meter: %v\n", err)
			os.Exit(1)
		}
		defer session.Close()

		modes = cleanModes(modes)
		ok := session.IsSet(function, modes)

		if !quiet {
			want := fmt.Sprintf("%s [%s]", function, strings.Join(modes, ", "))
			if ok {
				fmt.Printf("%s %s\n", styles.StatusReadingStyle.Render("OK"), want)
			} else {
				got := "unknown"
				if st, err := session.GetState(); err == nil {
					got = fmt.Sprintf("%s [%s]", st.Function, strings.Join(st.Modes, ", "))
				}
				fmt.Printf("%s want %s, meter is %s\n", styles.ErrorStyle.Render("MISMATCH"), want, got)
			}
		}

		if !ok {
			session.Close()
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringP("function", "f", "", "Expected function (case-insensitive)")
	checkCmd.Flags().StringSliceP("modes", "m", nil, "Expected modes, comma-separated")
	checkCmd.Flags().BoolP("quiet", "q", false, "Only set the exit status")
	_ = checkCmd.MarkFlagRequired("function")
}

// cleanModes drops empty entries and lower-cases the rest
func cleanModes(modes []string) []string {
	out := make([]string, 0, len(modes))
	for _, m := range modes {
		m = strings.ToLower(strings.TrimSpace(m))
		if m != "" {
			out = append(out, m)
		}
	}
	return out
}
