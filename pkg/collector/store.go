package collector

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// ErrNotFound is returned for unknown devices, profiles or readings.
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	kind TEXT NOT NULL,
	mq135_crit REAL NOT NULL DEFAULT 300,
	temp_crit REAL NOT NULL DEFAULT 35
);
CREATE TABLE IF NOT EXISTS devices (
	device_id TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT 'New device',
	is_active INTEGER NOT NULL DEFAULT 1,
	profile_id INTEGER REFERENCES profiles(id)
);
CREATE TABLE IF NOT EXISTS readings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	device_id TEXT NOT NULL REFERENCES devices(device_id),
	ts INTEGER NOT NULL,
	food_name TEXT NOT NULL,
	mq135 REAL NOT NULL,
	temp REAL NOT NULL,
	humidity REAL NOT NULL,
	r INTEGER NOT NULL DEFAULT 0,
	g INTEGER NOT NULL DEFAULT 0,
	b INTEGER NOT NULL DEFAULT 0,
	fqi INTEGER NOT NULL,
	status TEXT NOT NULL,
	estimated_life TEXT NOT NULL DEFAULT '-'
);
CREATE INDEX IF NOT EXISTS readings_device_ts ON readings(device_id, ts);
`

const readingColumns = `id, device_id, ts, food_name, mq135, temp, humidity, r, g, b, fqi, status, estimated_life`

// Store persists profiles, devices and readings in SQLite.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

// Open opens (creating if needed) the database at path and seeds the default profiles.
func Open(ctx context.Context, path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.L()
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, log: log.Named("store")}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	if err := s.seed(ctx, DefaultProfiles); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// seed inserts missing profiles and brings thresholds of existing ones up to date.
func (s *Store) seed(ctx context.Context, profiles []Profile) error {
	for _, p := range profiles {
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO profiles (name, kind, mq135_crit, temp_crit) VALUES (?, ?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET kind = excluded.kind, mq135_crit = excluded.mq135_crit, temp_crit = excluded.temp_crit
			WHERE profiles.kind != excluded.kind OR profiles.mq135_crit != excluded.mq135_crit OR profiles.temp_crit != excluded.temp_crit`,
			p.Name, string(p.Kind), p.GasCritical, p.TempCritical)
		if err != nil {
			return fmt.Errorf("failed to seed profile %q: %w", p.Name, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			s.log.Debug("profile synchronised", zap.String("name", p.Name))
		}
	}
	return nil
}

// Profiles returns all profiles ordered by id.
func (s *Store) Profiles(ctx context.Context) ([]Profile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, kind, mq135_crit, temp_crit FROM profiles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	var out []Profile
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.Name, &p.Kind, &p.GasCritical, &p.TempCritical); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Profile returns the profile with the given id.
func (s *Store) Profile(ctx context.Context, id int64) (Profile, error) {
	var p Profile
	err := s.db.QueryRowContext(ctx, `SELECT id, name, kind, mq135_crit, temp_crit FROM profiles WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Kind, &p.GasCritical, &p.TempCritical)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, fmt.Errorf("profile %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Profile{}, fmt.Errorf("failed to query profile %d: %w", id, err)
	}
	return p, nil
}

// Device returns a registered device.
func (s *Store) Device(ctx context.Context, id string) (Device, error) {
	var d Device
	var profileID sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT device_id, name, is_active, profile_id FROM devices WHERE device_id = ?`, id).
		Scan(&d.ID, &d.Name, &d.Active, &profileID)
	if errors.Is(err, sql.ErrNoRows) {
		return Device{}, fmt.Errorf("device %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return Device{}, fmt.Errorf("failed to query device %q: %w", id, err)
	}
	d.ProfileID = profileID.Int64
	return d, nil
}

// EnsureDevice returns the device, registering it with the first profile if unknown.
func (s *Store) EnsureDevice(ctx context.Context, id string) (Device, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO devices (device_id, profile_id)
		VALUES (?, (SELECT id FROM profiles ORDER BY id LIMIT 1))
		ON CONFLICT(device_id) DO NOTHING`, id)
	if err != nil {
		return Device{}, fmt.Errorf("failed to register device %q: %w", id, err)
	}
	return s.Device(ctx, id)
}

// SetProfile assigns a profile to a device.
func (s *Store) SetProfile(ctx context.Context, deviceID string, profileID int64) error {
	if _, err := s.Profile(ctx, profileID); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE devices SET profile_id = ? WHERE device_id = ?`, profileID, deviceID)
	if err != nil {
		return fmt.Errorf("failed to update device %q: %w", deviceID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("device %q: %w", deviceID, ErrNotFound)
	}
	return nil
}

// Toggle flips a device's active flag and returns the new value.
func (s *Store) Toggle(ctx context.Context, deviceID string) (bool, error) {
	var active bool
	err := s.db.QueryRowContext(ctx,
		`UPDATE devices SET is_active = NOT is_active WHERE device_id = ? RETURNING is_active`, deviceID).
		Scan(&active)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("device %q: %w", deviceID, ErrNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("failed to toggle device %q: %w", deviceID, err)
	}
	return active, nil
}

// AddReading stores r and returns its id.
func (s *Store) AddReading(ctx context.Context, r Reading) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO readings (device_id, ts, food_name, mq135, temp, humidity, r, g, b, fqi, status, estimated_life)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.DeviceID, r.Timestamp.UnixMicro(), r.FoodName, r.Gas, r.Temperature, r.Humidity,
		r.Red, r.Green, r.Blue, r.FQI, r.Status, r.EstimatedLife)
	if err != nil {
		return 0, fmt.Errorf("failed to insert reading: %w", err)
	}
	return res.LastInsertId()
}

// Latest returns the newest reading of a device.
func (s *Store) Latest(ctx context.Context, deviceID string) (Reading, error) {
	rs, err := s.query(ctx, `SELECT `+readingColumns+` FROM readings WHERE device_id = ? ORDER BY ts DESC, id DESC LIMIT 1`, deviceID)
	if err != nil {
		return Reading{}, err
	}
	if len(rs) == 0 {
		return Reading{}, fmt.Errorf("readings of %q: %w", deviceID, ErrNotFound)
	}
	return rs[0], nil
}

// History returns up to limit readings of a device, newest first.
func (s *Store) History(ctx context.Context, deviceID string, limit int) ([]Reading, error) {
	return s.query(ctx, `SELECT `+readingColumns+` FROM readings WHERE device_id = ? ORDER BY ts DESC, id DESC LIMIT ?`, deviceID, limit)
}

// Readings returns all readings of a device, oldest first.
func (s *Store) Readings(ctx context.Context, deviceID string) ([]Reading, error) {
	return s.query(ctx, `SELECT `+readingColumns+` FROM readings WHERE device_id = ? ORDER BY ts ASC, id ASC`, deviceID)
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Reading, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", err)
	}
	defer rows.Close()

	var out []Reading
	for rows.Next() {
		var r Reading
		var ts int64
		if err := rows.Scan(&r.ID, &r.DeviceID, &ts, &r.FoodName, &r.Gas, &r.Temperature, &r.Humidity,
			&r.Red, &r.Green, &r.Blue, &r.FQI, &r.Status, &r.EstimatedLife); err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		r.Timestamp = time.UnixMicro(ts)
		out = append(out, r)
	}
	return out, rows.Err()
}
