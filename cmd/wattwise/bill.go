package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/wattwise/wattwise/internal/report"
	"github.com/wattwise/wattwise/internal/tariff"
)

var (
	billUnits   float64
	billMonthly bool
)

var billCmd = &cobra.Command{
	Use:   "bill",
	Short: "Slab tariff calculations and bill prediction",
}

var billCalculateCmd = &cobra.Command{
	Use:   "calculate",
	Short: "Price a consumption total against the slab tariff",
	Long: `Prices a consumption total against the TNEB bi-monthly slab tariff. Pass
--monthly to treat the units as a one-month figure: the engine doubles
them, prices the bi-monthly total, and halves the cost, because the free
allowance and slab boundaries reset per two-month cycle.`,
	RunE: runBillCalculate,
}

var billSlabsCmd = &cobra.Command{
	Use:   "slabs",
	Short: "Show the TNEB slab rate table",
	RunE:  runBillSlabs,
}

var billPredictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict the monthly bill from recent usage",
	RunE:  runBillPredict,
}

func init() {
	billCalculateCmd.Flags().Float64Var(&billUnits, "units", 0, "Units consumed (kWh)")
	billCalculateCmd.Flags().BoolVar(&billMonthly, "monthly", false, "Treat units as a monthly figure")
	billCalculateCmd.MarkFlagRequired("units")
	billCmd.AddCommand(billCalculateCmd)
	billCmd.AddCommand(billSlabsCmd)
	billCmd.AddCommand(billPredictCmd)
	rootCmd.AddCommand(billCmd)
}

func runBillCalculate(cmd *cobra.Command, args []string) error {
	var bill tariff.Bill
	if billMonthly {
		bill = tariff.EstimateMonthlyBill(billUnits)
		fmt.Printf("Monthly estimate for %.2f units (billed bi-monthly by TNEB):\n", bill.TotalUnits)
	} else {
		bill = tariff.ComputeBimonthlyBill(billUnits)
		fmt.Printf("Bi-monthly bill for %.2f units:\n", bill.TotalUnits)
	}

	printBreakdown(bill.Breakdown)
	fmt.Printf("Total:        ₹%s\n", humanize.CommafWithDigits(bill.TotalAmount, 2))
	fmt.Printf("Average rate: ₹%.2f/unit\n", bill.AverageRate)
	if billMonthly && bill.BimonthlyTotal > 0 {
		fmt.Printf("(full bi-monthly bill: ₹%.2f)\n", bill.BimonthlyTotal)
	}

	info := tariff.Lookup(billUnits, billMonthly)
	fmt.Printf("Current slab: %s at ₹%.2f/unit", info.CurrentSlab, info.CurrentRate)
	if info.NextSlabAt > 0 {
		fmt.Printf(" (%.0f units to the next slab)", info.UnitsToNextSlab)
	}
	fmt.Println()
	return nil
}

func printBreakdown(breakdown []tariff.SlabCharge) {
	if len(breakdown) == 0 {
		fmt.Println("  (no units consumed)")
		return
	}
	fmt.Println("-----------------------------------------------")
	fmt.Printf("%-12s  %10s  %8s  %10s\n", "Slab", "Units", "Rate", "Amount ₹")
	fmt.Println("-----------------------------------------------")
	for _, c := range breakdown {
		fmt.Printf("%-12s  %10.2f  %8.2f  %10.2f\n", c.Slab, c.Units, c.Rate, c.Amount)
	}
	fmt.Println("-----------------------------------------------")
}

func runBillSlabs(cmd *cobra.Command, args []string) error {
	fmt.Println("TNEB domestic slab rates (per bi-monthly period):")
	fmt.Println("------------------------------------")
	for _, s := range tariff.BimonthlySlabs {
		if s.Rate == 0 {
			fmt.Printf("%-12s  FREE (for 2 months)\n", s.Label())
		} else {
			fmt.Printf("%-12s  ₹%.2f/unit\n", s.Label(), s.Rate)
		}
	}
	fmt.Println("------------------------------------")
	fmt.Println("The first 100 units per two-month period are free for domestic consumers.")
	return nil
}

func runBillPredict(cmd *cobra.Command, args []string) error {
	_, userID, err := currentUser()
	if err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	history, err := db.ListDailyUsage(userID, 0)
	if err != nil {
		return fmt.Errorf("listing daily usage: %w", err)
	}

	prediction := report.PredictBill(history, time.Now())
	if !prediction.HasData {
		fmt.Println("No usage data available for prediction")
		return nil
	}

	fmt.Printf("Predicted monthly usage: %.2f kWh (avg %.2f kWh/day)\n", prediction.PredictedKWh, prediction.AvgDailyKWh)
	fmt.Printf("Predicted monthly cost:  ₹%s\n", humanize.CommafWithDigits(prediction.PredictedCost, 2))
	printBreakdown(prediction.SlabBreakdown)
	fmt.Printf("\n%s so far: %.2f kWh, ₹%.2f over %d recorded days\n",
		prediction.CurrentMonth, prediction.KWhSoFar, prediction.CostSoFar, prediction.DaysRecorded)
	return nil
}
