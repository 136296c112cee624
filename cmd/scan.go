/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"

	fluke45 "github.com/allbin/go-fluke45"
	"github.com/spf13/cobra"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Find the ports a meter answers on",
	Long: `Probe every serial port for a meter and print those that answer.

Each port is opened in turn, flushed, and given two chances to show the
meter's "=>" prompt; a silent port is sent ETX once in between.

Examples:
  fluke45 scan
  fluke45 scan --timeout 500ms`,
	Run: func(cmd *cobra.Command, args []string) {
		ports, err := fluke45.FindPorts(meterOptions(cfg)...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error scanning ports: %v\n", err)
			os.Exit(1)
		}

		if len(ports) == 0 {
			fmt.Fprintln(os.Stderr, "No meter found")
			os.Exit(1)
		}

		for _, port := range ports {
			fmt.Println(port)
		}
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
