package usage

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wattwise/wattwise/internal/anomaly"
	"github.com/wattwise/wattwise/pkg/models"
)

// memStore is an in-memory Store for deriver tests, keyed the same way
// the sqlite layer is: readings unique per (date, slot), usage per date.
type memStore struct {
	readings map[string]map[models.TimeOfDay]models.MeterReading
	usage    map[string]models.DailyUsage
}

func newMemStore() *memStore {
	return &memStore{
		readings: make(map[string]map[models.TimeOfDay]models.MeterReading),
		usage:    make(map[string]models.DailyUsage),
	}
}

func dayKey(date time.Time) string {
	return date.Format("2006-01-02")
}

func (s *memStore) UpsertReading(userID string, r models.MeterReading) error {
	key := dayKey(r.Date)
	if s.readings[key] == nil {
		s.readings[key] = make(map[models.TimeOfDay]models.MeterReading)
	}
	s.readings[key][r.TimeOfDay] = r
	return nil
}

func (s *memStore) ReadingsForDate(userID string, date time.Time) ([]models.MeterReading, error) {
	var out []models.MeterReading
	for _, r := range s.readings[dayKey(date)] {
		out = append(out, r)
	}
	return out, nil
}

func (s *memStore) ListDailyUsage(userID string, limit int) ([]models.DailyUsage, error) {
	out := make([]models.DailyUsage, 0, len(s.usage))
	for _, u := range s.usage {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) UpsertDailyUsage(userID string, u models.DailyUsage) error {
	s.usage[dayKey(u.Date)] = u
	return nil
}

func day(n int) time.Time {
	return time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestAddReadingRejectsInvalidTimeOfDay(t *testing.T) {
	d := NewDeriver(newMemStore(), anomaly.NewDetector())

	_, err := d.AddReading("u1", models.MeterReading{Date: day(0), TimeOfDay: "noon", ReadingKWh: 100})
	assert.ErrorIs(t, err, ErrInvalidTimeOfDay)
}

func TestAddReadingRejectsZeroDate(t *testing.T) {
	d := NewDeriver(newMemStore(), anomaly.NewDetector())

	_, err := d.AddReading("u1", models.MeterReading{TimeOfDay: models.Morning, ReadingKWh: 100})
	assert.Error(t, err)
}

func TestSingleReadingDerivesNothing(t *testing.T) {
	store := newMemStore()
	d := NewDeriver(store, anomaly.NewDetector())

	derived, err := d.AddReading("u1", models.MeterReading{Date: day(0), TimeOfDay: models.Morning, ReadingKWh: 120})
	require.NoError(t, err)
	assert.Nil(t, derived)
	assert.Empty(t, store.usage)
}

func TestPairedReadingsDeriveConsumption(t *testing.T) {
	store := newMemStore()
	d := NewDeriver(store, anomaly.NewDetector())

	_, err := d.AddReading("u1", models.MeterReading{Date: day(0), TimeOfDay: models.Morning, ReadingKWh: 120})
	require.NoError(t, err)

	derived, err := d.AddReading("u1", models.MeterReading{Date: day(0), TimeOfDay: models.Night, ReadingKWh: 145.5})
	require.NoError(t, err)

	require.NotNil(t, derived)
	assert.Equal(t, 25.5, derived.ConsumptionKWh)
	assert.Greater(t, derived.Cost, 0.0)
	assert.Equal(t, 2, derived.ReadingsCount)
	assert.Equal(t, *derived, store.usage[dayKey(day(0))])
}

func TestNightBelowMorningFloorsAtZero(t *testing.T) {
	store := newMemStore()
	d := NewDeriver(store, anomaly.NewDetector())

	_, err := d.AddReading("u1", models.MeterReading{Date: day(0), TimeOfDay: models.Morning, ReadingKWh: 145.5})
	require.NoError(t, err)

	derived, err := d.AddReading("u1", models.MeterReading{Date: day(0), TimeOfDay: models.Night, ReadingKWh: 120})
	require.NoError(t, err)

	require.NotNil(t, derived)
	assert.Equal(t, 0.0, derived.ConsumptionKWh)
	assert.Equal(t, 0.0, derived.Cost)
	assert.False(t, derived.IsAnomaly)
}

func TestResubmittedReadingRederivesDay(t *testing.T) {
	store := newMemStore()
	d := NewDeriver(store, anomaly.NewDetector())

	_, err := d.AddReading("u1", models.MeterReading{Date: day(0), TimeOfDay: models.Morning, ReadingKWh: 120})
	require.NoError(t, err)
	derived, err := d.AddReading("u1", models.MeterReading{Date: day(0), TimeOfDay: models.Night, ReadingKWh: 150})
	require.NoError(t, err)
	require.NotNil(t, derived)
	assert.Equal(t, 30.0, derived.ConsumptionKWh)

	// Correcting the night reading overwrites the derived record.
	derived, err = d.AddReading("u1", models.MeterReading{Date: day(0), TimeOfDay: models.Night, ReadingKWh: 145.5})
	require.NoError(t, err)
	require.NotNil(t, derived)
	assert.Equal(t, 25.5, derived.ConsumptionKWh)
	assert.Len(t, store.usage, 1)
}

func TestNegativeReadingClamped(t *testing.T) {
	store := newMemStore()
	d := NewDeriver(store, anomaly.NewDetector())

	_, err := d.AddReading("u1", models.MeterReading{Date: day(0), TimeOfDay: models.Morning, ReadingKWh: -10})
	require.NoError(t, err)

	derived, err := d.AddReading("u1", models.MeterReading{Date: day(0), TimeOfDay: models.Night, ReadingKWh: 5})
	require.NoError(t, err)
	require.NotNil(t, derived)
	assert.Equal(t, 5.0, derived.ConsumptionKWh)
}

func TestDetectorTrainsOnceHistoryAccumulates(t *testing.T) {
	store := newMemStore()
	detector := anomaly.NewDetector()
	d := NewDeriver(store, detector)

	base := 1000.0
	consumptions := []float64{9, 10, 11, 9.5, 10.5, 10, 9.8}
	for i, c := range consumptions {
		_, err := d.AddReading("u1", models.MeterReading{Date: day(i), TimeOfDay: models.Morning, ReadingKWh: base})
		require.NoError(t, err)
		_, err = d.AddReading("u1", models.MeterReading{Date: day(i), TimeOfDay: models.Night, ReadingKWh: base + c})
		require.NoError(t, err)
		base += c
	}

	assert.Equal(t, anomaly.Fitted, detector.Mode())

	// A day far outside the household's range is flagged.
	_, err := d.AddReading("u1", models.MeterReading{Date: day(7), TimeOfDay: models.Morning, ReadingKWh: base})
	require.NoError(t, err)
	derived, err := d.AddReading("u1", models.MeterReading{Date: day(7), TimeOfDay: models.Night, ReadingKWh: base + 45})
	require.NoError(t, err)
	require.NotNil(t, derived)
	assert.True(t, derived.IsAnomaly)
}

func TestRederiveIsIdempotent(t *testing.T) {
	store := newMemStore()
	d := NewDeriver(store, anomaly.NewDetector())

	_, err := d.AddReading("u1", models.MeterReading{Date: day(0), TimeOfDay: models.Morning, ReadingKWh: 120})
	require.NoError(t, err)
	first, err := d.AddReading("u1", models.MeterReading{Date: day(0), TimeOfDay: models.Night, ReadingKWh: 145.5})
	require.NoError(t, err)
	require.NotNil(t, first)

	// The derived record is a pure function of the stored readings.
	second, err := d.Rederive("u1", day(0))
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first.ConsumptionKWh, second.ConsumptionKWh)
	assert.Equal(t, first.Cost, second.Cost)
	assert.Equal(t, first.IsAnomaly, second.IsAnomaly)
}

func TestRederiveIncompleteDayReturnsNil(t *testing.T) {
	store := newMemStore()
	d := NewDeriver(store, anomaly.NewDetector())

	derived, err := d.Rederive("u1", day(0))
	require.NoError(t, err)
	assert.Nil(t, derived)
}
