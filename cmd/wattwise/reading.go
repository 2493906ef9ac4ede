package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wattwise/wattwise/internal/anomaly"
	"github.com/wattwise/wattwise/internal/usage"
	"github.com/wattwise/wattwise/pkg/models"
)

var readingCmd = &cobra.Command{
	Use:   "reading",
	Short: "Record and inspect meter readings",
}

var readingAddCmd = &cobra.Command{
	Use:   "add <date> <morning|night> <kwh>",
	Short: "Record a meter reading",
	Long: `Records a meter reading for one of the two daily slots. Once both the
morning and night readings exist for a date, the day's consumption, cost,
and anomaly flag are derived and stored. Re-adding a slot overwrites the
stored reading and re-derives the day.`,
	Args: cobra.ExactArgs(3),
	RunE: runReadingAdd,
}

var readingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored meter readings",
	RunE:  runReadingList,
}

func init() {
	readingCmd.AddCommand(readingAddCmd)
	readingCmd.AddCommand(readingListCmd)
	rootCmd.AddCommand(readingCmd)
}

func runReadingAdd(cmd *cobra.Command, args []string) error {
	date, err := parseDate(args[0])
	if err != nil {
		return err
	}

	timeOfDay := models.TimeOfDay(args[1])
	if !timeOfDay.Valid() {
		return fmt.Errorf("invalid time of day: %s (use morning or night)", args[1])
	}

	kwh, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("invalid reading value: %s", args[2])
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

	deriver := usage.NewDeriver(db, anomaly.NewDetector())
	derived, err := deriver.AddReading(userID, models.MeterReading{
		Date:       date,
		TimeOfDay:  timeOfDay,
		ReadingKWh: kwh,
	})
	if err != nil {
		return fmt.Errorf("adding reading: %w", err)
	}

	if derived == nil {
		fmt.Printf("✓ Reading saved. Waiting for the %s reading to derive daily usage.\n", otherSlot(timeOfDay))
		return nil
	}

	fmt.Printf("✓ Reading saved. Daily usage derived for %s:\n", derived.Date.Format("2006-01-02"))
	fmt.Printf("  Consumption: %.2f kWh\n", derived.ConsumptionKWh)
	fmt.Printf("  Cost:        ₹%.2f\n", derived.Cost)
	if derived.IsAnomaly {
		fmt.Println("  ⚠ Flagged as anomalous compared to your usage history")
	}
	return nil
}

func otherSlot(t models.TimeOfDay) models.TimeOfDay {
	if t == models.Morning {
		return models.Night
	}
	return models.Morning
}

func runReadingList(cmd *cobra.Command, args []string) error {
	_, userID, err := currentUser()
	if err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	readings, err := db.ListReadings(userID)
	if err != nil {
		return fmt.Errorf("listing readings: %w", err)
	}

	if len(readings) == 0 {
		fmt.Println("No readings recorded")
		return nil
	}

	fmt.Println("\nMeter Readings:")
	fmt.Println("----------------------------------------")
	fmt.Printf("%-12s  %-8s  %12s\n", "Date", "Slot", "Reading kWh")
	fmt.Println("----------------------------------------")

	for _, r := range readings {
		fmt.Printf("%-12s  %-8s  %12.2f\n", r.Date.Format("2006-01-02"), r.TimeOfDay, r.ReadingKWh)
	}

	fmt.Println("----------------------------------------")
	fmt.Printf("%d readings\n", len(readings))
	return nil
}
