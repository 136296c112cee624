/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// readCmd represents the read command
var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Print readings from the meter",
	Long: `Take readings from the meter and print one display string per line,
e.g. "1.2345 V [auto, dc]". Press Ctrl+C to stop.

Examples:
  fluke45 read                        # scan, then read every second
  fluke45 read -p /dev/ttyUSB0 -n 1   # one reading
  fluke45 read --interval 250ms`,
	Run: func(cmd *cobra.Command, args []string) {
		interval, _ := cmd.Flags().GetDuration("interval")
		count, _ := cmd.Flags().GetInt("count")
		timestamps, _ := cmd.Flags().GetBool("timestamps")
		if interval <= 0 {
			fmt.Fprintln(os.Stderr, "Error: --interval must be positive")
			os.Exit(1)
		}

		session, err := connectMeter()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting to meter: %v\n", err)
			os.Exit(1)
		}
		defer session.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := readLoop(ctx, session, os.Stdout, count, interval, timestamps); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			session.Close()
			os.Exit(1)
		}
	},
}

// meterReader is the part of a session the read loop uses.
type meterReader interface {
	GetReading() (string, error)
	Resync() bool
}

// readLoop prints count successful readings, or runs until ctx is done when
// count is zero. A failed reading is retried after a resync; it fails only
// when the meter cannot be resynchronized.
func readLoop(ctx context.Context, r meterReader, w io.Writer, count int, interval time.Duration, timestamps bool) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for n, attempt := 0, 0; count <= 0 || n < count; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}

		reading, err := r.GetReading()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading meter: %v\n", err)
			if !r.Resync() {
				return fmt.Errorf("meter not responding: %w", err)
			}
			continue
		}

		if timestamps {
			fmt.Fprintf(w, "%s\t%s\n", time.Now().Format("15:04:05.000"), reading)
		} else {
			fmt.Fprintln(w, reading)
		}
		n++
	}
	return nil
}

func init() {
	rootCmd.AddCommand(readCmd)

	readCmd.Flags().DurationP("interval", "i", time.Second, "Time between readings")
	readCmd.Flags().IntP("count", "n", 0, "Number of readings (0 = until interrupted)")
	readCmd.Flags().Bool("timestamps", false, "Prefix each reading with the time it was taken")
}
