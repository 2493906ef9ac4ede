package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/wattwise/wattwise/internal/report"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Dashboard view: today, this week, and the bill projection",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	history, err := loadHistory()
	if err != nil {
		return err
	}

	s := report.Summarize(history, time.Now())

	fmt.Println("WattWise summary")
	fmt.Println("================")
	fmt.Printf("Today:     %.2f kWh, ₹%.2f", s.TodayKWh, s.TodayCost)
	if s.TodayAnomaly {
		fmt.Print("  ⚠ anomalous")
	}
	fmt.Println()

	fmt.Printf("Last week: %.2f kWh, ₹%s (avg %.2f kWh/day)\n",
		s.WeekTotalKWh, humanize.CommafWithDigits(s.WeekTotalCost, 2), s.WeekAvgKWh)
	if s.TrendPercent != 0 {
		fmt.Printf("Trend:     %+.1f%% vs the week before\n", s.TrendPercent)
	}

	if s.Prediction.HasData {
		fmt.Printf("\nPredicted monthly bill: ₹%s for %.2f kWh\n",
			humanize.CommafWithDigits(s.Prediction.PredictedCost, 2), s.Prediction.PredictedKWh)
		fmt.Printf("%s so far: %.2f kWh, ₹%.2f over %d days\n",
			s.Prediction.CurrentMonth, s.Prediction.KWhSoFar, s.Prediction.CostSoFar, s.Prediction.DaysRecorded)
	} else {
		fmt.Println("\nNot enough data yet for a bill prediction")
	}

	if len(s.RecentUsage) > 0 {
		fmt.Println("\nRecent days:")
		for _, u := range s.RecentUsage {
			flag := ""
			if u.IsAnomaly {
				flag = "  ⚠"
			}
			fmt.Printf("  %s  %8.2f kWh  ₹%8.2f%s\n", u.Date.Format("2006-01-02"), u.ConsumptionKWh, u.Cost, flag)
		}
	}
	return nil
}
