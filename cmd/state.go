/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	fluke45 "github.com/allbin/go-fluke45"
	"github.com/allbin/go-fluke45/internal/tui/styles"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// stateCmd represents the state command
var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show the meter's function, range, modes and value",
	Long: `Query the meter's full state and print it.

Examples:
  fluke45 state
  fluke45 state -o yaml
  fluke45 state -o json | jq .modes`,
	Run: func(cmd *cobra.Command, args []string) {
		format, _ := cmd.Flags().GetString("output")

		session, err := connectMeter()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting to meter: %v\n", err)
			os.Exit(1)
		}
		defer session.Close()

		st, err := session.GetState()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading state: %v\n", err)
			os.Exit(1)
		}

		if err := renderState(os.Stdout, st, format); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(stateCmd)

	stateCmd.Flags().StringP("output", "o", "text", "Output format: text, yaml, json")
}

// renderState writes a snapshot in the requested format
func renderState(w io.Writer, st fluke45.Snapshot, format string) error {
	switch strings.ToLower(format) {
	case "", "text":
		rows := [][2]string{
			{"Device", st.Device},
			{"Info", st.Info},
			{"Function", st.Function},
			{"Value", fmt.Sprintf("%s %s%s", st.Mantissa, st.Multiplier, st.Units)},
			{"Range", fmt.Sprintf("%d", st.Range)},
			{"Modes", strings.Join(st.Modes, ", ")},
			{"Display", st.Display},
		}
		for _, r := range rows {
			if _, err := fmt.Fprintf(w, "%s %s\n", styles.LabelStyle.Render(r[0]+":"), r[1]); err != nil {
				return err
			}
		}
		return nil
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(st); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	default:
		return fmt.Errorf("unknown output format %q (valid: text, yaml, json)", format)
	}
}
