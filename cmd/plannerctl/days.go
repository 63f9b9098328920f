package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/backpackor/planner/internal/domain"
)

var (
	daysStart string
	daysEnd   string
)

var daysCmd = &cobra.Command{
	Use:   "days",
	Short: "Print the trip days between two dates",
	Long: `Prints one line per trip day, numbered from 1, for the inclusive
range --start..--end. Either date missing prints nothing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		start, err := domain.ParseDate(daysStart)
		if err != nil {
			return err
		}
		end, err := domain.ParseDate(daysEnd)
		if err != nil {
			return err
		}
		days, err := domain.NewDayRange(start, end)
		if err != nil {
			return err
		}
		for _, d := range days {
			fmt.Fprintf(cmd.OutOrStdout(), "Day %d\t%s\t%s\n", d.Day, d.Date.Format(domain.DateLayout), d.Date.Weekday())
		}
		return nil
	},
}

func init() {
	daysCmd.Flags().StringVar(&daysStart, "start", "", "first day (YYYY-MM-DD)")
	daysCmd.Flags().StringVar(&daysEnd, "end", "", "last day (YYYY-MM-DD)")
	rootCmd.AddCommand(daysCmd)
}
