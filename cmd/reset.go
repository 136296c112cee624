/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"

	fluke45 "github.com/allbin/go-fluke45"
	"github.com/allbin/go-fluke45/serialport"
	"github.com/spf13/cobra"
)

// resetCmd represents the reset command
var resetCmd = &cobra.Command{
	Use:   "reset <port>",
	Short: "Reset the USB serial adapter the meter is attached to",
	Long: `Perform a USB-level reset on the serial adapter behind a port. This can
recover an adapter that stopped passing data without unplugging it.

The adapter re-enumerates after the reset, so the port path may change
(e.g. /dev/ttyUSB0 might become /dev/ttyUSB1).

Requirements:
- usbreset utility must be installed (from usbutils package)
- Root/sudo permissions required for USB operations

Examples:
  sudo fluke45 reset /dev/ttyUSB0
  sudo fluke45 reset /dev/ttyUSB0 --probe`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if !serialport.IsUSBResetAvailable() {
			fmt.Fprintln(os.Stderr, "Error: usbreset utility not available")
			fmt.Fprintln(os.Stderr, "Install with: sudo apt-get install usbutils")
			os.Exit(1)
		}

		portPath := args[0]
		fmt.Printf("Resetting USB device: %s\n", portPath)

		if err := serialport.ResetUSBDevice(portPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			if errors.Is(err, serialport.ErrUSBInfoNotAvailable) {
				fmt.Fprintln(os.Stderr, "This device does not appear to be a USB device")
			}
			os.Exit(1)
		}

		fmt.Println("USB device reset successfully")

		if probe, _ := cmd.Flags().GetBool("probe"); probe {
			if fluke45.Probe(portPath, meterOptions(cfg)...) {
				fmt.Printf("Meter answering on %s\n", portPath)
				return
			}
			fmt.Printf("No meter on %s yet; the port path may have changed\n", portPath)
		}
		fmt.Println("\nUse 'fluke45 scan' to find the meter again")
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)

	resetCmd.Flags().Bool("probe", false, "Check for the meter after the reset")
}
