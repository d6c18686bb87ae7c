/*
main.go - Application entry point

PURPOSE:
  The payday command: serves the HTTP API, or prints a schedule / parsed
  vacations straight to the terminal.

COMMANDS:
  payday serve                        HTTP API + calendar warmer
  payday schedule --salary 150000     Print the next salary events
  payday parse FILE                   Print vacation ranges found in FILE
  payday cache stats|reset            Inspect or clear the sqlite day store

GLOBAL FLAGS:
  --config   TOML config file (see config package for keys)

ENVIRONMENT:
  PAYDAY_* variables override the config file; a .env file in the working
  directory is loaded first.

EXAMPLES:
  payday serve --config ./payday.toml
  payday schedule --salary 150000 --days 14,29 --count 6 --vacation 01.07.2026-14.07.2026
  payday parse vacations.csv

SEE ALSO:
  - app.go: dependency wiring shared by all commands
  - api/server.go: Router configuration
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "payday",
	Short: "Salary disbursement schedule engine",
	Long: `payday computes when salary is paid and how much each payment carries,
based on the official working-day calendar, the company's payroll rules and
the employee's vacations.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
