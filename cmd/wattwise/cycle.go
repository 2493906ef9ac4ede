package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/wattwise/wattwise/internal/billing"
	"github.com/wattwise/wattwise/pkg/models"
)

var (
	cycleBillDate    string
	cycleBillReading float64
	cycleBillAmount  float64
	cycleMonths      int
)

var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Track the TNEB billing cycle",
}

var cycleStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Anchor a new billing cycle at the last issued bill",
	Long: `Records the date, meter reading, and amount of the last TNEB bill. Cycle
consumption is measured from that reading until the next bill is entered.`,
	RunE: runCycleStart,
}

var cycleStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show progress through the current billing cycle",
	RunE:  runCycleStatus,
}

func init() {
	cycleStartCmd.Flags().StringVar(&cycleBillDate, "date", "", "Bill date in YYYY-MM-DD format")
	cycleStartCmd.Flags().Float64Var(&cycleBillReading, "reading", 0, "Meter reading on the bill (kWh)")
	cycleStartCmd.Flags().Float64Var(&cycleBillAmount, "amount", 0, "Billed amount in rupees")
	cycleStartCmd.Flags().IntVar(&cycleMonths, "months", 2, "Billing period length in months")
	cycleStartCmd.MarkFlagRequired("date")
	cycleStartCmd.MarkFlagRequired("reading")
	cycleCmd.AddCommand(cycleStartCmd)
	cycleCmd.AddCommand(cycleStatusCmd)
	rootCmd.AddCommand(cycleCmd)
}

func runCycleStart(cmd *cobra.Command, args []string) error {
	date, err := parseDate(cycleBillDate)
	if err != nil {
		return err
	}
	if cycleBillReading < 0 {
		return fmt.Errorf("bill reading must not be negative")
	}

	_, userID, err := currentUser()
	if err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	cycle := models.BillingCycle{
		LastBillDate:        date,
		LastBillReading:     cycleBillReading,
		LastBillAmount:      cycleBillAmount,
		BillingPeriodMonths: cycleMonths,
	}
	if err := db.SaveBillingCycle(userID, cycle); err != nil {
		return fmt.Errorf("saving billing cycle: %w", err)
	}

	fmt.Printf("✓ Billing cycle anchored at %s (reading %.2f kWh)\n", date.Format("2006-01-02"), cycleBillReading)
	return nil
}

func runCycleStatus(cmd *cobra.Command, args []string) error {
	_, userID, err := currentUser()
	if err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	cycle, err := db.GetBillingCycle(userID)
	if err != nil {
		return fmt.Errorf("loading billing cycle: %w", err)
	}
	if cycle == nil {
		fmt.Println("No billing cycle recorded. Use 'wattwise cycle start' after your next bill.")
		return nil
	}

	readings, err := db.ListReadings(userID)
	if err != nil {
		return fmt.Errorf("listing readings: %w", err)
	}

	status := billing.Status(*cycle, readings, time.Now())

	fmt.Println("Billing cycle status:")
	fmt.Printf("  Last bill:    %s at %.2f kWh\n", status.LastBillDate.Format("2006-01-02"), status.LastBillReading)
	fmt.Printf("  Current:      %.2f kWh\n", status.CurrentReading)
	fmt.Printf("  Consumed:     %.2f kWh over %d of ~%d days\n", status.CycleConsumptionKWh, status.DaysElapsed, status.CycleLengthDays)
	fmt.Printf("  Est. bill:    ₹%s so far\n", humanize.CommafWithDigits(status.EstimatedBill.TotalAmount, 2))
	switch {
	case status.Ended:
		fmt.Println("  ⚠ Cycle has likely ended; enter the new bill with 'wattwise cycle start'")
	case status.ClosingSoon:
		fmt.Println("  ⚠ Cycle is closing soon")
	}
	return nil
}
