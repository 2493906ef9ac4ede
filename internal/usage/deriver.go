// Package usage turns pairs of raw meter readings into derived daily
// usage records.
//
// A day moves through three states: no readings, one reading (morning or
// night), both. Only the last state produces a DailyUsage record, and
// that record is always recomputed in full from the currently stored
// pair, so correcting either reading deterministically overwrites the
// prior derivation.
package usage

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/wattwise/wattwise/internal/anomaly"
	"github.com/wattwise/wattwise/internal/tariff"
	"github.com/wattwise/wattwise/pkg/models"
)

// rollingWindow caps how many recent daily records feed the monthly
// projection used for slab pricing.
const rollingWindow = 30

// retrainAfter is the history size past which each new record triggers a
// detector retrain.
const retrainAfter = 5

// ErrInvalidTimeOfDay rejects readings outside the two daily slots.
var ErrInvalidTimeOfDay = errors.New("time of day must be morning or night")

// Store is the persistence surface the deriver needs. Implemented by
// internal/database; kept narrow so derivation is testable without one.
type Store interface {
	UpsertReading(userID string, r models.MeterReading) error
	ReadingsForDate(userID string, date time.Time) ([]models.MeterReading, error)
	ListDailyUsage(userID string, limit int) ([]models.DailyUsage, error)
	UpsertDailyUsage(userID string, u models.DailyUsage) error
}

// Deriver orchestrates the read-modify-write sequence for a reading
// submission. The detector instance is owned by the caller and shared
// with classification-only paths.
type Deriver struct {
	store    Store
	detector *anomaly.Detector
}

// NewDeriver returns a deriver using the given store and detector.
func NewDeriver(store Store, detector *anomaly.Detector) *Deriver {
	return &Deriver{store: store, detector: detector}
}

// AddReading validates and persists a reading, then derives the day's
// usage if its pairing reading exists. Returns the derived record, or nil
// when the day is still waiting for its second reading.
//
// Submitting a reading for an already-complete day re-derives the record
// from the stored pair; nothing is merged incrementally.
func (d *Deriver) AddReading(userID string, r models.MeterReading) (*models.DailyUsage, error) {
	if !r.TimeOfDay.Valid() {
		return nil, ErrInvalidTimeOfDay
	}
	if r.Date.IsZero() {
		return nil, errors.New("reading date is required")
	}
	// Lenient numeric domain: clamp rather than reject.
	r.ReadingKWh = math.Max(0, r.ReadingKWh)

	if err := d.store.UpsertReading(userID, r); err != nil {
		return nil, fmt.Errorf("saving reading: %w", err)
	}

	return d.Rederive(userID, r.Date)
}

// Rederive recomputes the DailyUsage record for a date from the stored
// readings. Returns nil without error when the pair is incomplete.
func (d *Deriver) Rederive(userID string, date time.Time) (*models.DailyUsage, error) {
	readings, err := d.store.ReadingsForDate(userID, date)
	if err != nil {
		return nil, fmt.Errorf("loading readings: %w", err)
	}

	var morning, night *models.MeterReading
	for i := range readings {
		switch readings[i].TimeOfDay {
		case models.Morning:
			morning = &readings[i]
		case models.Night:
			night = &readings[i]
		}
	}

	if morning == nil || night == nil {
		return nil, nil
	}

	// A night reading below the morning one means a meter rollover or a
	// data-entry error. Consumption is floored at zero rather than
	// guessed; the stored readings keep the evidence.
	consumption := math.Max(0, night.ReadingKWh-morning.ReadingKWh)

	history, err := d.store.ListDailyUsage(userID, rollingWindow)
	if err != nil {
		return nil, fmt.Errorf("loading usage history: %w", err)
	}

	estimatedMonthly := consumption * 30
	if len(history) > 0 {
		var sum float64
		for _, u := range history {
			sum += u.ConsumptionKWh
		}
		estimatedMonthly = sum / float64(len(history)) * 30
	}

	// Classification sees the model state from the last training pass;
	// training on history that includes today happens after persisting.
	if d.detector.Mode() == anomaly.Untrained && len(history) > 0 {
		if all, err := d.store.ListDailyUsage(userID, 0); err == nil {
			d.detector.Train(all)
		}
	}

	record := models.DailyUsage{
		Date:           date,
		ConsumptionKWh: tariff.Round2(consumption),
		Cost:           tariff.EstimateDailyCost(consumption, estimatedMonthly),
		IsAnomaly:      d.detector.Classify(consumption),
		ReadingsCount:  2,
	}

	if err := d.store.UpsertDailyUsage(userID, record); err != nil {
		return nil, fmt.Errorf("saving daily usage: %w", err)
	}

	if all, err := d.store.ListDailyUsage(userID, 0); err == nil && len(all) > retrainAfter {
		d.detector.Train(all)
	}

	return &record, nil
}
