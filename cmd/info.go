/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"

	fluke45 "github.com/allbin/go-fluke45"
	"github.com/allbin/go-fluke45/internal/tui/styles"
	"github.com/allbin/go-fluke45/serialport"
	"github.com/spf13/cobra"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <port>",
	Short: "Display detailed information about a serial port",
	Long: `Display detailed information about a serial port, including the USB
adapter behind it, and check whether a meter answers on it.

Examples:
  fluke45 info /dev/ttyUSB0
  fluke45 info /dev/ttyUSB0 --probe=false`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		portPath := args[0]

		info, err := serialport.GetPortInfo(portPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting port info: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Port Information: %s\n\n", info.Path)
		printField("Name", info.Name)
		printField("Description", info.Description)

		if info.IsUSB() {
			fmt.Println("\nUSB Device Information:")
			printField("Vendor ID", info.VendorID)
			printField("Product ID", info.ProductID)
			printField("Serial", info.SerialNumber)
			printField("Bus", info.BusNumber)
			printField("Device", info.DeviceNumber)
			printField("Manufacturer", info.Manufacturer)
			printField("Product", info.Product)
		}

		if probe, _ := cmd.Flags().GetBool("probe"); !probe {
			return
		}

		fmt.Println("\nMeter:")
		t, err := fluke45.ProbePort(portPath, meterOptions(cfg)...)
		if err != nil {
			printField("Status", styles.ErrorStyle.Render("no meter answered"))
			return
		}
		s, err := fluke45.NewSession(portPath, t, meterOptions(cfg)...)
		if err != nil {
			printField("Status", styles.ErrorStyle.Render(err.Error()))
			return
		}
		defer s.Close()

		st, err := s.GetState()
		if err != nil {
			printField("Status", styles.ErrorStyle.Render(err.Error()))
			return
		}
		printField("Status", styles.StatusReadingStyle.Render("answering"))
		printField("Identity", st.Info)
		printField("Function", st.Function)
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().Bool("probe", true, "Check whether a meter answers on the port")
}

// printField prints an indented label/value line, skipping empty values
func printField(label, value string) {
	if value == "" {
		return
	}
	fmt.Printf("  %s %s\n", styles.LabelStyle.Render(label+":"), value)
}
