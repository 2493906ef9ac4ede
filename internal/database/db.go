// Package database is the SQLite persistence layer. Dates are stored as
// TEXT in 2006-01-02 form; absent rows come back as nil results, not
// errors.
package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/wattwise/wattwise/pkg/models"
	_ "modernc.org/sqlite"
)

const dateFormat = "2006-01-02"

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// New creates a new database connection and initializes the schema
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables
func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS readings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		date TEXT NOT NULL,
		time_of_day TEXT NOT NULL CHECK(time_of_day IN ('morning', 'night')),
		reading_kwh REAL NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE(user_id, date, time_of_day)
	);
	CREATE TABLE IF NOT EXISTS daily_usage (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		date TEXT NOT NULL,
		consumption_kwh REAL NOT NULL,
		cost REAL NOT NULL,
		is_anomaly INTEGER DEFAULT 0,
		readings_count INTEGER DEFAULT 0,
		published INTEGER DEFAULT 0,
		created_at TEXT NOT NULL,
		UNIQUE(user_id, date)
	);
	CREATE TABLE IF NOT EXISTS billing_cycles (
		user_id TEXT PRIMARY KEY,
		last_bill_date TEXT NOT NULL,
		last_bill_reading REAL NOT NULL,
		last_bill_amount REAL,
		billing_period_months INTEGER DEFAULT 2
	);
	CREATE TABLE IF NOT EXISTS budgets (
		user_id TEXT PRIMARY KEY,
		monthly_kwh_goal REAL,
		monthly_cost_goal REAL,
		alert_threshold REAL DEFAULT 80.0
	);
	CREATE TABLE IF NOT EXISTS appliances (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		power_rating_watts REAL NOT NULL,
		usage_hours_per_day REAL NOT NULL,
		category TEXT DEFAULT 'Other',
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_readings_user ON readings(user_id);
	CREATE INDEX IF NOT EXISTS idx_readings_date ON readings(date);
	CREATE INDEX IF NOT EXISTS idx_daily_usage_user ON daily_usage(user_id);
	CREATE INDEX IF NOT EXISTS idx_daily_usage_date ON daily_usage(date);
	CREATE INDEX IF NOT EXISTS idx_daily_usage_published ON daily_usage(published);
	CREATE INDEX IF NOT EXISTS idx_appliances_user ON appliances(user_id);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// UpsertReading inserts or replaces a reading for its (date, time) slot.
// Replacing an existing slot is how reading corrections come in.
func (db *DB) UpsertReading(userID string, r models.MeterReading) error {
	query := `
	INSERT OR REPLACE INTO readings (user_id, date, time_of_day, reading_kwh, created_at)
	VALUES (?, ?, ?, ?, ?)
	`

	_, err := db.conn.Exec(query, userID, r.Date.Format(dateFormat), string(r.TimeOfDay), r.ReadingKWh, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting reading: %w", err)
	}

	return nil
}

// ReadingsForDate retrieves the readings stored for one date.
func (db *DB) ReadingsForDate(userID string, date time.Time) ([]models.MeterReading, error) {
	query := `
	SELECT date, time_of_day, reading_kwh
	FROM readings
	WHERE user_id = ? AND date = ?
	ORDER BY time_of_day
	`

	rows, err := db.conn.Query(query, userID, date.Format(dateFormat))
	if err != nil {
		return nil, fmt.Errorf("querying readings: %w", err)
	}
	defer rows.Close()

	return scanReadings(rows)
}

// ListReadings retrieves all readings for a user, newest first.
func (db *DB) ListReadings(userID string) ([]models.MeterReading, error) {
	query := `
	SELECT date, time_of_day, reading_kwh
	FROM readings
	WHERE user_id = ?
	ORDER BY date DESC, time_of_day
	`

	rows, err := db.conn.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying readings: %w", err)
	}
	defer rows.Close()

	return scanReadings(rows)
}

func scanReadings(rows *sql.Rows) ([]models.MeterReading, error) {
	var results []models.MeterReading
	for rows.Next() {
		var r models.MeterReading
		var dateStr, timeOfDay string

		if err := rows.Scan(&dateStr, &timeOfDay, &r.ReadingKWh); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		date, err := time.Parse(dateFormat, dateStr)
		if err != nil {
			return nil, fmt.Errorf("parsing date: %w", err)
		}
		r.Date = date
		r.TimeOfDay = models.TimeOfDay(timeOfDay)

		results = append(results, r)
	}

	return results, rows.Err()
}

// UpsertDailyUsage overwrites the derived record for the record's date.
// The published flag resets so corrections get republished.
func (db *DB) UpsertDailyUsage(userID string, u models.DailyUsage) error {
	query := `
	INSERT OR REPLACE INTO daily_usage
	(user_id, date, consumption_kwh, cost, is_anomaly, readings_count, published, created_at)
	VALUES (?, ?, ?, ?, ?, ?, 0, ?)
	`

	anomaly := 0
	if u.IsAnomaly {
		anomaly = 1
	}

	_, err := db.conn.Exec(query, userID, u.Date.Format(dateFormat), u.ConsumptionKWh, u.Cost, anomaly, u.ReadingsCount, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting daily usage: %w", err)
	}

	return nil
}

// ListDailyUsage retrieves daily usage records, newest first. A limit of
// 0 returns everything.
func (db *DB) ListDailyUsage(userID string, limit int) ([]models.DailyUsage, error) {
	query := `
	SELECT id, date, consumption_kwh, cost, is_anomaly, readings_count
	FROM daily_usage
	WHERE user_id = ?
	ORDER BY date DESC
	`
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying daily usage: %w", err)
	}
	defer rows.Close()

	return scanDailyUsage(rows)
}

// ListUnpublishedDailyUsage retrieves records not yet pushed out by the
// publisher, oldest first so downstream state arrives in order.
func (db *DB) ListUnpublishedDailyUsage(userID string) ([]models.DailyUsage, error) {
	query := `
	SELECT id, date, consumption_kwh, cost, is_anomaly, readings_count
	FROM daily_usage
	WHERE user_id = ? AND published = 0
	ORDER BY date
	`

	rows, err := db.conn.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying unpublished daily usage: %w", err)
	}
	defer rows.Close()

	return scanDailyUsage(rows)
}

// MarkUsagePublished marks a daily usage record as published
func (db *DB) MarkUsagePublished(id int) error {
	_, err := db.conn.Exec(`UPDATE daily_usage SET published = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("marking record as published: %w", err)
	}
	return nil
}

func scanDailyUsage(rows *sql.Rows) ([]models.DailyUsage, error) {
	var results []models.DailyUsage
	for rows.Next() {
		var u models.DailyUsage
		var dateStr string
		var anomaly int

		if err := rows.Scan(&u.ID, &dateStr, &u.ConsumptionKWh, &u.Cost, &anomaly, &u.ReadingsCount); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		date, err := time.Parse(dateFormat, dateStr)
		if err != nil {
			return nil, fmt.Errorf("parsing date: %w", err)
		}
		u.Date = date
		u.IsAnomaly = anomaly == 1

		results = append(results, u)
	}

	return results, rows.Err()
}

// SaveBillingCycle stores the user's active billing cycle anchor.
func (db *DB) SaveBillingCycle(userID string, c models.BillingCycle) error {
	query := `
	INSERT OR REPLACE INTO billing_cycles
	(user_id, last_bill_date, last_bill_reading, last_bill_amount, billing_period_months)
	VALUES (?, ?, ?, ?, ?)
	`

	months := c.BillingPeriodMonths
	if months <= 0 {
		months = 2
	}

	_, err := db.conn.Exec(query, userID, c.LastBillDate.Format(dateFormat), c.LastBillReading, c.LastBillAmount, months)
	if err != nil {
		return fmt.Errorf("saving billing cycle: %w", err)
	}

	return nil
}

// GetBillingCycle retrieves the active billing cycle, or nil when none
// has been started.
func (db *DB) GetBillingCycle(userID string) (*models.BillingCycle, error) {
	query := `
	SELECT last_bill_date, last_bill_reading, last_bill_amount, billing_period_months
	FROM billing_cycles
	WHERE user_id = ?
	`

	var c models.BillingCycle
	var dateStr string
	var amount sql.NullFloat64

	err := db.conn.QueryRow(query, userID).Scan(&dateStr, &c.LastBillReading, &amount, &c.BillingPeriodMonths)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying billing cycle: %w", err)
	}

	date, err := time.Parse(dateFormat, dateStr)
	if err != nil {
		return nil, fmt.Errorf("parsing date: %w", err)
	}
	c.LastBillDate = date
	if amount.Valid {
		c.LastBillAmount = amount.Float64
	}

	return &c, nil
}

// SaveBudget stores the user's monthly goals.
func (db *DB) SaveBudget(userID string, b models.Budget) error {
	query := `
	INSERT OR REPLACE INTO budgets
	(user_id, monthly_kwh_goal, monthly_cost_goal, alert_threshold)
	VALUES (?, ?, ?, ?)
	`

	_, err := db.conn.Exec(query, userID, b.MonthlyKWhGoal, b.MonthlyCostGoal, b.AlertThreshold)
	if err != nil {
		return fmt.Errorf("saving budget: %w", err)
	}

	return nil
}

// GetBudget retrieves the user's budget, or nil when none is set.
func (db *DB) GetBudget(userID string) (*models.Budget, error) {
	query := `
	SELECT monthly_kwh_goal, monthly_cost_goal, alert_threshold
	FROM budgets
	WHERE user_id = ?
	`

	var b models.Budget
	var kwhGoal, costGoal sql.NullFloat64

	err := db.conn.QueryRow(query, userID).Scan(&kwhGoal, &costGoal, &b.AlertThreshold)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying budget: %w", err)
	}

	b.MonthlyKWhGoal = kwhGoal.Float64
	b.MonthlyCostGoal = costGoal.Float64

	return &b, nil
}

// AddAppliance stores a new appliance.
func (db *DB) AddAppliance(userID string, a models.Appliance) error {
	query := `
	INSERT INTO appliances (id, user_id, name, power_rating_watts, usage_hours_per_day, category, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	category := a.Category
	if category == "" {
		category = "Other"
	}

	_, err := db.conn.Exec(query, a.ID, userID, a.Name, a.PowerRatingWatts, a.UsageHoursPerDay, category, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting appliance: %w", err)
	}

	return nil
}

// ListAppliances retrieves a user's appliances, newest first.
func (db *DB) ListAppliances(userID string) ([]models.Appliance, error) {
	query := `
	SELECT id, name, power_rating_watts, usage_hours_per_day, category
	FROM appliances
	WHERE user_id = ?
	ORDER BY created_at DESC
	`

	rows, err := db.conn.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying appliances: %w", err)
	}
	defer rows.Close()

	var results []models.Appliance
	for rows.Next() {
		var a models.Appliance
		if err := rows.Scan(&a.ID, &a.Name, &a.PowerRatingWatts, &a.UsageHoursPerDay, &a.Category); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, a)
	}

	return results, rows.Err()
}

// DeleteAppliance removes an appliance by id.
func (db *DB) DeleteAppliance(userID, applianceID string) error {
	_, err := db.conn.Exec(`DELETE FROM appliances WHERE id = ? AND user_id = ?`, applianceID, userID)
	if err != nil {
		return fmt.Errorf("deleting appliance: %w", err)
	}
	return nil
}
