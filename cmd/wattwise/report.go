package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/wattwise/wattwise/internal/report"
	"github.com/wattwise/wattwise/pkg/models"
)

var (
	reportMonth string
	reportYear  int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Monthly and yearly usage reports",
}

var reportMonthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Show one month's usage statistics",
	RunE:  runReportMonthly,
}

var reportYearlyCmd = &cobra.Command{
	Use:   "yearly",
	Short: "Show a year's usage grouped by month",
	RunE:  runReportYearly,
}

var reportCompareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare a month against the previous month",
	RunE:  runReportCompare,
}

func init() {
	reportMonthlyCmd.Flags().StringVar(&reportMonth, "month", "", "Month in YYYY-MM format (default: current month)")
	reportCompareCmd.Flags().StringVar(&reportMonth, "month", "", "Month in YYYY-MM format (default: current month)")
	reportYearlyCmd.Flags().IntVar(&reportYear, "year", 0, "Year in YYYY format (default: current year)")
	reportCmd.AddCommand(reportMonthlyCmd)
	reportCmd.AddCommand(reportYearlyCmd)
	reportCmd.AddCommand(reportCompareCmd)
	rootCmd.AddCommand(reportCmd)
}

func resolveMonth() (int, time.Month, error) {
	if reportMonth == "" {
		now := time.Now()
		return now.Year(), now.Month(), nil
	}
	return parseMonth(reportMonth)
}

func loadHistory() ([]models.DailyUsage, error) {
	_, userID, err := currentUser()
	if err != nil {
		return nil, err
	}

	db, err := openDB()
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	history, err := db.ListDailyUsage(userID, 0)
	if err != nil {
		return nil, fmt.Errorf("listing daily usage: %w", err)
	}
	return history, nil
}

func runReportMonthly(cmd *cobra.Command, args []string) error {
	year, month, err := resolveMonth()
	if err != nil {
		return err
	}

	history, err := loadHistory()
	if err != nil {
		return err
	}

	r := report.Monthly(history, year, month)
	fmt.Printf("Report for %s:\n", r.Month)
	printMonthlyStats(r.Stats)

	if len(r.Daily) > 0 {
		fmt.Println("\nDaily breakdown:")
		for _, u := range r.Daily {
			flag := ""
			if u.IsAnomaly {
				flag = "  ⚠"
			}
			fmt.Printf("  %s  %8.2f kWh  ₹%8.2f%s\n", u.Date.Format("2006-01-02"), u.ConsumptionKWh, u.Cost, flag)
		}
	}
	return nil
}

func printMonthlyStats(s report.MonthlyStats) {
	if s.DaysRecorded == 0 {
		fmt.Println("  No usage recorded")
		return
	}
	fmt.Printf("  Days recorded: %d\n", s.DaysRecorded)
	fmt.Printf("  Total:         %.2f kWh, ₹%s\n", s.TotalKWh, humanize.CommafWithDigits(s.TotalCost, 2))
	fmt.Printf("  Daily average: %.2f kWh\n", s.AvgDailyKWh)
	fmt.Printf("  Peak / Min:    %.2f / %.2f kWh\n", s.PeakKWh, s.MinKWh)
	fmt.Printf("  Anomaly days:  %d\n", s.AnomalyDays)
}

func runReportYearly(cmd *cobra.Command, args []string) error {
	year := reportYear
	if year == 0 {
		year = time.Now().Year()
	}

	history, err := loadHistory()
	if err != nil {
		return err
	}

	summary := report.Yearly(history, year)
	fmt.Printf("Yearly summary for %d:\n", summary.Year)

	if summary.MonthsRecorded == 0 {
		fmt.Println("  No usage recorded")
		return nil
	}

	fmt.Println("---------------------------------------------")
	fmt.Printf("%-10s  %10s  %12s  %6s\n", "Month", "kWh", "Cost ₹", "Days")
	fmt.Println("---------------------------------------------")
	for _, m := range summary.MonthlyData {
		fmt.Printf("%-10s  %10.2f  %12.2f  %6d\n", time.Month(m.Month), m.TotalKWh, m.TotalCost, m.DaysRecorded)
	}
	fmt.Println("---------------------------------------------")
	fmt.Printf("Total: %s kWh, ₹%s across %d months\n",
		humanize.CommafWithDigits(summary.TotalKWh, 2),
		humanize.CommafWithDigits(summary.TotalCost, 2),
		summary.MonthsRecorded)
	return nil
}

func runReportCompare(cmd *cobra.Command, args []string) error {
	year, month, err := resolveMonth()
	if err != nil {
		return err
	}

	history, err := loadHistory()
	if err != nil {
		return err
	}

	c := report.Compare(history, year, month)

	fmt.Printf("%s:\n", c.Current.Month)
	printMonthlyStats(c.Current.Stats)
	fmt.Printf("\n%s:\n", c.Previous.Month)
	printMonthlyStats(c.Previous.Stats)

	fmt.Printf("\nChange: %+.1f%% kWh, %+.1f%% cost\n", c.KWhDeltaPercent, c.CostDeltaPercent)
	return nil
}
