package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/warp/payday-engine/calendar"
	"github.com/warp/payday-engine/payroll"
	"github.com/warp/payday-engine/vacation"
)

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.Flags().Int64P("salary", "s", 0, "monthly salary (required)")
	scheduleCmd.Flags().IntSlice("days", nil, "payment days of the month (default from payroll.payment_days)")
	scheduleCmd.Flags().IntP("count", "n", 0, "number of payments (default from payroll.default_count)")
	scheduleCmd.Flags().StringP("vacations", "f", "", "file with one vacation per line (.txt or .csv)")
	scheduleCmd.Flags().StringArray("vacation", nil, "vacation range such as 01.07.2026-14.07.2026 (repeatable)")
	scheduleCmd.Flags().Bool("offline", false, "skip the calendar service and use weekends only")
	_ = scheduleCmd.MarkFlagRequired("salary")
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Print the next salary payments",
	Long: `Print the next salary payments strictly after today, with the accrual
period each one covers and the amount it carries.`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

func runSchedule(cmd *cobra.Command, args []string) error {
	offline, _ := cmd.Flags().GetBool("offline")
	a, err := loadApp(offline)
	if err != nil {
		return err
	}
	defer a.Close()

	salary, _ := cmd.Flags().GetInt64("salary")
	days, _ := cmd.Flags().GetIntSlice("days")
	count, _ := cmd.Flags().GetInt("count")
	file, _ := cmd.Flags().GetString("vacations")
	inline, _ := cmd.Flags().GetStringArray("vacation")

	if len(days) == 0 {
		days = a.cfg.Payroll.PaymentDays
	}
	if count == 0 {
		count = a.cfg.Payroll.DefaultCount
	}

	ranges, err := collectVacations(a.parser, file, inline)
	if err != nil {
		return err
	}

	events, err := a.generator.Generate(cmd.Context(), payroll.Request{
		MonthlySalary: salary,
		PaymentDays:   days,
		Count:         count,
		Vacations:     ranges,
	})
	if err != nil {
		return err
	}
	return printSchedule(cmd.OutOrStdout(), events)
}

// collectVacations merges ranges from a file and from --vacation flags.
func collectVacations(p *vacation.Parser, file string, inline []string) ([]calendar.Range, error) {
	var ranges []calendar.Range

	if file != "" {
		info, err := os.Stat(file)
		if err != nil {
			return nil, err
		}
		if err := vacation.CheckUpload(file, info.Size()); err != nil {
			return nil, err
		}
		contents, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		parsed, err := p.ParseFile(contents, vacation.IsCSV(file))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		ranges = append(ranges, parsed...)
	}

	for _, v := range inline {
		r, ok := p.ParseLine(v)
		if !ok {
			return nil, fmt.Errorf("cannot parse vacation %q", v)
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}

func printSchedule(out io.Writer, events []payroll.SalaryEvent) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tDAY\tRULE\tPERIOD\tWORKED\tTOTAL\tAMOUNT")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s..%s\t%d\t%d\t%d\n",
			e.Date.Format(vacation.DisplayLayout),
			e.NominalDay,
			e.Rule,
			e.PeriodStart.Format(vacation.DisplayLayout),
			e.PeriodEnd.Format(vacation.DisplayLayout),
			e.WorkedDays,
			e.TotalDays,
			e.Amount,
		)
	}
	fmt.Fprintf(tw, "\t\t\t\t\tSUM\t%s\n", payroll.Total(events))
	return tw.Flush()
}
