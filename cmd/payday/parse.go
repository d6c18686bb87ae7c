package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/warp/payday-engine/calendar"
	"github.com/warp/payday-engine/config"
	"github.com/warp/payday-engine/vacation"
)

func init() {
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Print the vacation ranges found in a file",
	Long: `Parse a .txt or .csv vacation file the same way uploads are parsed and
print one normalized range per line. Use "-" to read standard input as text.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	p := vacation.NewParser(loc)
	p.MaxLines = cfg.Vacation.MaxLines

	var ranges []calendar.Range
	if args[0] == "-" {
		contents, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), vacation.MaxUploadBytes))
		if err != nil {
			return err
		}
		ranges, err = p.ParseFile(contents, false)
		if err != nil {
			return err
		}
	} else {
		ranges, err = collectVacations(p, args[0], nil)
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	for _, r := range ranges {
		fmt.Fprintln(out, vacation.FormatRange(r))
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%d range(s)\n", len(ranges))
	return nil
}
