package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wattwise/wattwise/internal/anomaly"
	"github.com/wattwise/wattwise/internal/report"
)

var patternsDays int

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Show weekday/weekend usage patterns and the recent trend",
	RunE:  runPatterns,
}

func init() {
	patternsCmd.Flags().IntVar(&patternsDays, "days", 30, "Trailing window for trend analysis")
	rootCmd.AddCommand(patternsCmd)
}

func runPatterns(cmd *cobra.Command, args []string) error {
	history, err := loadHistory()
	if err != nil {
		return err
	}

	if len(history) == 0 {
		fmt.Println("No usage data recorded yet")
		return nil
	}

	p := report.UsagePatterns(history)
	fmt.Println("Usage patterns:")
	fmt.Printf("  Weekday average: %.2f kWh\n", p.WeekdayAvgKWh)
	fmt.Printf("  Weekend average: %.2f kWh\n", p.WeekendAvgKWh)
	if p.Pattern == report.HigherWeekends {
		fmt.Println("  You use more electricity on weekends")
	} else {
		fmt.Println("  You use more electricity on weekdays")
	}
	if p.PeakDay != "" {
		fmt.Printf("  Peak day: %s, lowest day: %s\n", p.PeakDay, p.LowDay)
	}

	t := anomaly.AnalyzeTrend(history, patternsDays)
	fmt.Printf("\nTrend over the last %d days: %s", patternsDays, t.Trend)
	if t.Trend == anomaly.TrendInsufficientData {
		fmt.Println()
		return nil
	}
	fmt.Printf(" (%+.1f%%)\n", t.ChangePercent)
	fmt.Printf("  Recent average:   %.2f kWh/day\n", t.AvgRecent)
	fmt.Printf("  Previous average: %.2f kWh/day\n", t.AvgPrevious)
	return nil
}
