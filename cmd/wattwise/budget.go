package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wattwise/wattwise/internal/billing"
	"github.com/wattwise/wattwise/internal/report"
)

var (
	budgetKWhGoal   float64
	budgetCostGoal  float64
	budgetThreshold float64
)

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Set and track a monthly consumption goal",
}

var budgetSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set the monthly kWh and cost goals",
	RunE:  runBudgetSet,
}

var budgetStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show this month's progress against the goal",
	RunE:  runBudgetStatus,
}

func init() {
	budgetSetCmd.Flags().Float64Var(&budgetKWhGoal, "kwh", 0, "Monthly consumption goal in kWh")
	budgetSetCmd.Flags().Float64Var(&budgetCostGoal, "cost", 0, "Monthly cost goal in rupees")
	budgetSetCmd.Flags().Float64Var(&budgetThreshold, "alert-at", 0, "Warn at this percent of the goal (default 80)")
	budgetCmd.AddCommand(budgetSetCmd)
	budgetCmd.AddCommand(budgetStatusCmd)
	rootCmd.AddCommand(budgetCmd)
}

func runBudgetSet(cmd *cobra.Command, args []string) error {
	budget, err := billing.NewBudget(budgetKWhGoal, budgetCostGoal, budgetThreshold)
	if err != nil {
		return err
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

	if err := db.SaveBudget(userID, budget); err != nil {
		return fmt.Errorf("saving budget: %w", err)
	}

	fmt.Printf("✓ Budget saved: %.2f kWh/month", budget.MonthlyKWhGoal)
	if budget.MonthlyCostGoal > 0 {
		fmt.Printf(", ₹%.2f/month", budget.MonthlyCostGoal)
	}
	fmt.Printf(" (alert at %.0f%%)\n", budget.AlertThreshold)
	return nil
}

func runBudgetStatus(cmd *cobra.Command, args []string) error {
	_, userID, err := currentUser()
	if err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	budget, err := db.GetBudget(userID)
	if err != nil {
		return fmt.Errorf("loading budget: %w", err)
	}
	if budget == nil {
		fmt.Println("No budget set. Use 'wattwise budget set --kwh <goal>' to create one.")
		return nil
	}

	history, err := db.ListDailyUsage(userID, 0)
	if err != nil {
		return fmt.Errorf("listing daily usage: %w", err)
	}

	now := time.Now()
	month := report.Monthly(history, now.Year(), now.Month())
	progress := billing.Progress(*budget, month.Stats.TotalKWh)

	fmt.Printf("Budget for %s:\n", month.Month)
	fmt.Printf("  Goal:     %.2f kWh\n", budget.MonthlyKWhGoal)
	fmt.Printf("  Used:     %.2f kWh (%.1f%%)\n", progress.CurrentKWh, progress.KWhProgress)
	switch {
	case progress.OverBudget:
		fmt.Println("  ⚠ Over budget")
	case progress.ApproachingLimit:
		fmt.Printf("  ⚠ Approaching the goal (alert threshold %.0f%%)\n", budget.AlertThreshold)
	default:
		fmt.Println("  ✓ On track")
	}
	return nil
}
