package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var usageLimit int

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "List derived daily usage",
	Long:  `Displays derived daily usage records, newest first.`,
	RunE:  runUsage,
}

func init() {
	usageCmd.Flags().IntVar(&usageLimit, "limit", 30, "Number of days to show (0 = all)")
	rootCmd.AddCommand(usageCmd)
}

func runUsage(cmd *cobra.Command, args []string) error {
	_, userID, err := currentUser()
	if err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	records, err := db.ListDailyUsage(userID, usageLimit)
	if err != nil {
		return fmt.Errorf("listing daily usage: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No daily usage derived yet (a day needs both its morning and night readings)")
		return nil
	}

	fmt.Println("\nDaily Usage:")
	fmt.Println("--------------------------------------------------")
	fmt.Printf("%-12s  %10s  %10s  %s\n", "Date", "kWh", "Cost ₹", "Anomaly")
	fmt.Println("--------------------------------------------------")

	var totalKWh, totalCost float64
	for _, u := range records {
		flag := ""
		if u.IsAnomaly {
			flag = "⚠"
		}
		fmt.Printf("%-12s  %10.2f  %10.2f  %s\n", u.Date.Format("2006-01-02"), u.ConsumptionKWh, u.Cost, flag)
		totalKWh += u.ConsumptionKWh
		totalCost += u.Cost
	}

	fmt.Println("--------------------------------------------------")
	fmt.Printf("Total: %s kWh, ₹%s (%d days)\n",
		humanize.CommafWithDigits(totalKWh, 2),
		humanize.CommafWithDigits(totalCost, 2),
		len(records))
	return nil
}
