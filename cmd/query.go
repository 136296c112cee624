/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// queryCmd represents the query command
var queryCmd = &cobra.Command{
	Use:   "query <command>",
	Short: "Send a raw status query to the meter",
	Long: `Send a query in the meter's command language and print the reply.

Only queries are accepted: every ';'-separated part must end in '?', so this
command cannot change the meter's configuration.

Examples:
  fluke45 query '*IDN?'
  fluke45 query 'FUNC1?; RANGE1?'`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		command, err := normalizeQuery(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		session, err := connectMeter()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting to meter: %v\n", err)
			os.Exit(1)
		}
		defer session.Close()

		reply, err := session.Query(command)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(reply)
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
}

// normalizeQuery upper-cases a compound query and checks that every part is a query
func normalizeQuery(command string) (string, error) {
	parts := strings.Split(command, ";")
	for i, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p == "" {
			return "", fmt.Errorf("empty command in %q", command)
		}
		if !strings.HasSuffix(p, "?") {
			return "", fmt.Errorf("%q is not a query (must end in '?')", p)
		}
		parts[i] = p
	}
	return strings.Join(parts, "; "), nil
}
