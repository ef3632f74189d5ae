package plan

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store persists Device and Route sets per project in SQLite. Persistence
// is the caller's concern, not the pipeline's: the engine computes in
// memory and the caller snapshots results here. Writes mirror the engine's
// wholesale-replacement model, so reloading a project always reflects
// exactly one placement run.
type Store struct {
	*sql.DB
}

// NewStore opens (creating if needed) the snapshot database at path.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS devices (
			project_id TEXT NOT NULL,
			type TEXT NOT NULL,
			room_id TEXT NOT NULL,
			x DOUBLE NOT NULL,
			y DOUBLE NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_devices_project ON devices(project_id);
		CREATE TABLE IF NOT EXISTS routes (
			project_id TEXT NOT NULL,
			type TEXT NOT NULL,
			length DOUBLE NOT NULL,
			degraded INTEGER NOT NULL DEFAULT 0,
			points TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_routes_project ON routes(project_id);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing snapshot schema: %w", err)
	}

	return &Store{db}, nil
}

// ReplaceDevices replaces the stored Device set for a project.
func (s *Store) ReplaceDevices(projectID string, devices []Device) error {
	tx, err := s.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM devices WHERE project_id = ?", projectID); err != nil {
		return err
	}
	for _, d := range devices {
		_, err := tx.Exec(
			"INSERT INTO devices (project_id, type, room_id, x, y) VALUES (?, ?, ?, ?, ?)",
			projectID, string(d.Type), d.RoomID, d.X, d.Y,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadDevices returns the stored Device set for a project in insert order.
func (s *Store) LoadDevices(projectID string) ([]Device, error) {
	rows, err := s.Query(
		"SELECT type, room_id, x, y FROM devices WHERE project_id = ? ORDER BY rowid",
		projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []Device
	for rows.Next() {
		var d Device
		var typ string
		if err := rows.Scan(&typ, &d.RoomID, &d.X, &d.Y); err != nil {
			return nil, err
		}
		d.Type = DeviceType(typ)
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

// ReplaceRoutes replaces the stored Route set for a project. Polylines are
// stored as JSON point arrays.
func (s *Store) ReplaceRoutes(projectID string, routes []Route) error {
	tx, err := s.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM routes WHERE project_id = ?", projectID); err != nil {
		return err
	}
	for _, r := range routes {
		points, err := json.Marshal(r.Points)
		if err != nil {
			return fmt.Errorf("encoding route points: %w", err)
		}
		degraded := 0
		if r.Degraded {
			degraded = 1
		}
		_, err = tx.Exec(
			"INSERT INTO routes (project_id, type, length, degraded, points) VALUES (?, ?, ?, ?, ?)",
			projectID, string(r.Type), r.Length, degraded, string(points),
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadRoutes returns the stored Route set for a project in insert order.
func (s *Store) LoadRoutes(projectID string) ([]Route, error) {
	rows, err := s.Query(
		"SELECT type, length, degraded, points FROM routes WHERE project_id = ? ORDER BY rowid",
		projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []Route
	for rows.Next() {
		var r Route
		var typ, points string
		var degraded int
		if err := rows.Scan(&typ, &r.Length, &degraded, &points); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(points), &r.Points); err != nil {
			return nil, fmt.Errorf("decoding route points: %w", err)
		}
		r.Type = DeviceType(typ)
		r.Degraded = degraded != 0
		routes = append(routes, r)
	}
	return routes, rows.Err()
}
