package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wattwise/wattwise/pkg/models"
)

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer

	history := []models.DailyUsage{
		{Date: time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC), ConsumptionKWh: 25.5, Cost: 212.61, IsAnomaly: true},
	}
	err := writeCSV(&buf, []string{"date", "consumption_kwh", "cost", "is_anomaly"}, usageCSVRecords(history))
	require.NoError(t, err)

	assert.Equal(t, "date,consumption_kwh,cost,is_anomaly\n2025-07-01,25.50,212.61,true\n", buf.String())
}

func TestApplianceCSVRecords(t *testing.T) {
	records := applianceCSVRecords([]models.Appliance{
		{ID: "a1", Name: "Air Conditioner", Category: "Cooling", PowerRatingWatts: 1500, UsageHoursPerDay: 6},
	})

	require.Len(t, records, 1)
	assert.Equal(t, []string{"a1", "Air Conditioner", "Cooling", "1500", "6.0", "9.00"}, records[0])
}

func TestExportCSVWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.csv")
	exportOutput = path
	t.Cleanup(func() { exportOutput = "" })

	history := []models.DailyUsage{
		{Date: time.Date(2025, time.July, 2, 0, 0, 0, 0, time.UTC), ConsumptionKWh: 10, Cost: 44},
		{Date: time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC), ConsumptionKWh: 12, Cost: 55},
	}
	err := exportCSV("usage records", []string{"date", "consumption_kwh", "cost", "is_anomaly"}, usageCSVRecords(history))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "2025-07-02,10.00,44.00,false\n")
	assert.Contains(t, string(data), "2025-07-01,12.00,55.00,false\n")
}

func TestExportCSVUncreatableFileFails(t *testing.T) {
	exportOutput = filepath.Join(t.TempDir(), "missing", "usage.csv")
	t.Cleanup(func() { exportOutput = "" })

	err := exportCSV("usage records", []string{"date"}, nil)
	assert.Error(t, err)
}
