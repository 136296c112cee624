/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	fluke45 "github.com/allbin/go-fluke45"
	"github.com/allbin/go-fluke45/internal/tui/colors"
	"github.com/allbin/go-fluke45/serialport"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available serial ports",
	Long: `List the serial ports a meter could be attached to.

With --probe every port is checked for a meter, which takes up to two
response timeouts per silent port.

Examples:
  fluke45 list
  fluke45 list --table --filter usb
  fluke45 list --table --probe`,
	Run: func(cmd *cobra.Command, args []string) {
		ports, err := serialport.ListPorts()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing ports: %v\n", err)
			os.Exit(1)
		}

		filterType, _ := cmd.Flags().GetString("filter")
		tableFormat, _ := cmd.Flags().GetBool("table")
		probe, _ := cmd.Flags().GetBool("probe")

		filteredPorts := filterPorts(ports, filterType)
		if len(filteredPorts) == 0 {
			if filterType != "" {
				fmt.Printf("No serial ports found matching filter: %s\n", filterType)
			} else {
				fmt.Println("No serial ports found")
			}
			return
		}

		rows := make([]portRow, 0, len(filteredPorts))
		for _, port := range filteredPorts {
			row := newPortRow(port)
			if probe {
				row.probed = true
				row.meter = fluke45.Probe(port, meterOptions(cfg)...)
			}
			rows = append(rows, row)
		}

		if tableFormat {
			renderTable(rows)
		} else {
			renderSimple(rows)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringP("filter", "f", "", "Filter by port type: usb, standard, arm, all")
	listCmd.Flags().BoolP("table", "t", false, "Display output in a styled table format")
	listCmd.Flags().Bool("probe", false, "Check each port for a meter")
}

// portRow is one line of the listing
type portRow struct {
	path   string
	info   *serialport.PortInfo
	err    error
	probed bool
	meter  bool
}

func newPortRow(port string) portRow {
	info, err := serialport.GetPortInfo(port)
	return portRow{path: port, info: info, err: err}
}

// filterPorts filters the port list based on the specified filter type
func filterPorts(ports []string, filterType string) []string {
	if filterType == "" || filterType == "all" {
		return ports
	}

	var filtered []string
	for _, port := range ports {
		if matchesFilter(port, filterType) {
			filtered = append(filtered, port)
		}
	}
	return filtered
}

func matchesFilter(port, filterType string) bool {
	name := strings.ToLower(port[strings.LastIndex(port, "/")+1:])
	switch strings.ToLower(filterType) {
	case "usb":
		return strings.HasPrefix(name, "ttyusb") || strings.HasPrefix(name, "ttyacm") ||
			strings.Contains(name, "usbserial")
	case "standard":
		return strings.HasPrefix(name, "ttys") || strings.HasPrefix(name, "com")
	case "arm":
		return strings.HasPrefix(name, "ttyama")
	default:
		return false
	}
}

// renderTable renders the port list in a styled static table format
func renderTable(rows []portRow) {
	fmt.Printf("Found %d serial port(s):\n\n", len(rows))

	portWidth := 15
	typeWidth := 18
	usbWidth := 11
	descWidth := 30

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(colors.Mauve).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(colors.Surface2).
		PaddingBottom(1)

	cellStyle := lipgloss.NewStyle().
		PaddingRight(2)
	meterStyle := lipgloss.NewStyle().
		Foreground(colors.Green).
		Bold(true)

	header := fmt.Sprintf("%-*s %-*s %-*s %-*s",
		portWidth, "Port",
		typeWidth, "Type",
		usbWidth, "VID:PID",
		descWidth, "Description")
	if rows[0].probed {
		header += " Meter"
	}
	fmt.Println(headerStyle.Render(header))

	for _, r := range rows {
		if r.err != nil {
			line := fmt.Sprintf("%-*s %-*s %-*s %-*s",
				portWidth, r.path,
				typeWidth, "Unknown",
				usbWidth, "",
				descWidth, fmt.Sprintf("Error: %v", r.err))
			fmt.Println(cellStyle.Render(line))
			continue
		}

		usbID := ""
		if r.info.IsUSB() {
			usbID = r.info.VendorID + ":" + r.info.ProductID
		}
		description := r.info.Description
		if r.info.Product != "" {
			description = r.info.Product
		}

		line := fmt.Sprintf("%-*s %-*s %-*s %-*s",
			portWidth, r.info.Name,
			typeWidth, getPortType(r.info.Name),
			usbWidth, usbID,
			descWidth, description)
		if r.meter {
			line += " " + meterStyle.Render("Fluke 45")
		}
		fmt.Println(cellStyle.Render(line))
	}
}

// renderSimple renders the port list in simple text format
func renderSimple(rows []portRow) {
	for _, r := range rows {
		if r.meter {
			fmt.Printf("%s\tFluke 45\n", r.path)
			continue
		}
		fmt.Println(r.path)
	}
}

// getPortType returns a more specific type classification for the port
func getPortType(name string) string {
	name = strings.ToLower(name)
	switch {
	case strings.HasPrefix(name, "ttyusb"), strings.Contains(name, "usbserial"):
		return "USB Serial"
	case strings.HasPrefix(name, "ttyacm"):
		return "USB CDC/ACM"
	case strings.HasPrefix(name, "ttyama"):
		return "ARM Serial"
	case strings.HasPrefix(name, "ttymxc"):
		return "i.MX Serial"
	case strings.HasPrefix(name, "ttysac"):
		return "Samsung Serial"
	case strings.HasPrefix(name, "ttyths"):
		return "Tegra Serial"
	case strings.HasPrefix(name, "ttyo"):
		return "OMAP Serial"
	case strings.HasPrefix(name, "ttys"), strings.HasPrefix(name, "com"):
		return "Standard Serial"
	default:
		return "Serial Port"
	}
}
