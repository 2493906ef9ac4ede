package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wattwise/wattwise/pkg/models"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored data as CSV",
}

var exportUsageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Export daily usage records as CSV",
	RunE:  runExportUsage,
}

var exportAppliancesCmd = &cobra.Command{
	Use:   "appliances",
	Short: "Export registered appliances as CSV",
	RunE:  runExportAppliances,
}

func init() {
	exportCmd.PersistentFlags().StringVarP(&exportOutput, "output", "o", "", "Write to a file instead of stdout")
	exportCmd.AddCommand(exportUsageCmd)
	exportCmd.AddCommand(exportAppliancesCmd)
	rootCmd.AddCommand(exportCmd)
}

func writeCSV(w io.Writer, header []string, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, record := range records {
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

// exportCSV writes to stdout, or to the --output file. The success line
// prints only after the file is flushed and closed cleanly, so a
// write-behind failure (e.g. full disk) surfaces as an error instead.
func exportCSV(noun string, header []string, records [][]string) error {
	if exportOutput == "" {
		return writeCSV(os.Stdout, header, records)
	}

	f, err := os.Create(exportOutput)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := writeCSV(f, header, records); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing output file: %w", err)
	}

	fmt.Printf("✓ Exported %d %s to %s\n", len(records), noun, exportOutput)
	return nil
}

func usageCSVRecords(history []models.DailyUsage) [][]string {
	records := make([][]string, 0, len(history))
	for _, u := range history {
		records = append(records, []string{
			u.Date.Format("2006-01-02"),
			strconv.FormatFloat(u.ConsumptionKWh, 'f', 2, 64),
			strconv.FormatFloat(u.Cost, 'f', 2, 64),
			strconv.FormatBool(u.IsAnomaly),
		})
	}
	return records
}

func applianceCSVRecords(appliances []models.Appliance) [][]string {
	records := make([][]string, 0, len(appliances))
	for _, a := range appliances {
		records = append(records, []string{
			a.ID,
			a.Name,
			a.Category,
			strconv.FormatFloat(a.PowerRatingWatts, 'f', 0, 64),
			strconv.FormatFloat(a.UsageHoursPerDay, 'f', 1, 64),
			strconv.FormatFloat(a.EstimatedDailyKWh(), 'f', 2, 64),
		})
	}
	return records
}

func runExportUsage(cmd *cobra.Command, args []string) error {
	history, err := loadHistory()
	if err != nil {
		return err
	}

	header := []string{"date", "consumption_kwh", "cost", "is_anomaly"}
	return exportCSV("usage records", header, usageCSVRecords(history))
}

func runExportAppliances(cmd *cobra.Command, args []string) error {
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

	header := []string{"id", "name", "category", "power_rating_watts", "usage_hours_per_day", "estimated_daily_kwh"}
	return exportCSV("appliances", header, applianceCSVRecords(appliances))
}
