package main

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/wattwise/wattwise/internal/tariff"
	"github.com/wattwise/wattwise/pkg/models"
)

var applianceCategory string

var applianceCmd = &cobra.Command{
	Use:   "appliance",
	Short: "Track household appliances and their estimated consumption",
}

var applianceAddCmd = &cobra.Command{
	Use:   "add <name> <watts> <hours-per-day>",
	Short: "Register an appliance",
	Args:  cobra.ExactArgs(3),
	RunE:  runApplianceAdd,
}

var applianceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered appliances with estimated daily consumption",
	RunE:  runApplianceList,
}

var applianceDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove an appliance",
	Args:  cobra.ExactArgs(1),
	RunE:  runApplianceDelete,
}

func init() {
	applianceAddCmd.Flags().StringVar(&applianceCategory, "category", "Other", "Appliance category (Cooling, Kitchen, Laundry, ...)")
	applianceCmd.AddCommand(applianceAddCmd)
	applianceCmd.AddCommand(applianceListCmd)
	applianceCmd.AddCommand(applianceDeleteCmd)
	rootCmd.AddCommand(applianceCmd)
}

func runApplianceAdd(cmd *cobra.Command, args []string) error {
	watts, err := strconv.ParseFloat(args[1], 64)
	if err != nil || watts <= 0 {
		return fmt.Errorf("invalid power rating: %s", args[1])
	}

	hours, err := strconv.ParseFloat(args[2], 64)
	if err != nil || hours < 0 || hours > 24 {
		return fmt.Errorf("invalid usage hours: %s (must be 0-24)", args[2])
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

	appliance := models.Appliance{
		ID:               uuid.NewString(),
		Name:             args[0],
		PowerRatingWatts: watts,
		UsageHoursPerDay: hours,
		Category:         applianceCategory,
	}
	if err := db.AddAppliance(userID, appliance); err != nil {
		return fmt.Errorf("adding appliance: %w", err)
	}

	fmt.Printf("✓ Added %s (~%.2f kWh/day)\n", appliance.Name, appliance.EstimatedDailyKWh())
	return nil
}

func runApplianceList(cmd *cobra.Command, args []string) error {
	_, userID, err := currentUser()
	if err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	appliances, err := db.ListAppliances(userID)
	if err != nil {
		return fmt.Errorf("listing appliances: %w", err)
	}

	if len(appliances) == 0 {
		fmt.Println("No appliances registered")
		return nil
	}

	fmt.Println("\nAppliances:")
	fmt.Println("--------------------------------------------------------------------------------------")
	fmt.Printf("%-38s  %-16s  %8s  %6s  %10s\n", "ID", "Name", "Watts", "h/day", "kWh/day")
	fmt.Println("--------------------------------------------------------------------------------------")

	var totalDaily float64
	for _, a := range appliances {
		daily := a.EstimatedDailyKWh()
		totalDaily += daily
		fmt.Printf("%-38s  %-16s  %8.0f  %6.1f  %10.2f\n", a.ID, a.Name, a.PowerRatingWatts, a.UsageHoursPerDay, daily)
	}

	fmt.Println("--------------------------------------------------------------------------------------")
	fmt.Printf("Estimated total: %.2f kWh/day (~%.2f kWh/month)\n", tariff.Round2(totalDaily), tariff.Round2(totalDaily*30))
	return nil
}

func runApplianceDelete(cmd *cobra.Command, args []string) error {
	_, userID, err := currentUser()
	if err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := db.DeleteAppliance(userID, args[0]); err != nil {
		return fmt.Errorf("deleting appliance: %w", err)
	}

	fmt.Println("✓ Appliance removed")
	return nil
}
