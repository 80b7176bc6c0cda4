package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/bus-seat-reservation/internal/model"
)

// MySQLStore keeps the registry in the bus_routes table (see
// database.EnsureSchema).  Save rewrites the whole table inside one
// transaction, so readers see either the old or the new registry.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore constructs a MySQLStore with the given DB handle.
func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

// Load reads every route ordered by registration position.
func (s *MySQLStore) Load(ctx context.Context) (Snapshot, error) {
	const q = `SELECT id, name, origin, destination, fare, seats, available
	           FROM bus_routes
	           ORDER BY position`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: query routes: %v", ErrIO, err)
	}
	defer rows.Close()

	var routes []model.Route
	for rows.Next() {
		var (
			r     model.Route
			seats []byte
		)
		if err := rows.Scan(&r.ID, &r.Name, &r.Origin, &r.Destination, &r.Fare, &seats, &r.Available); err != nil {
			return Snapshot{}, fmt.Errorf("%w: scan route: %v", ErrIO, err)
		}
		if err := seatsFromBytes(&r, seats); err != nil {
			return Snapshot{}, err
		}
		routes = append(routes, r)
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("%w: iterate routes: %v", ErrIO, err)
	}
	return validate(routes)
}

// Save replaces the table content with routes.
func (s *MySQLStore) Save(ctx context.Context, routes []model.Route) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrIO, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM bus_routes`); err != nil {
		return fmt.Errorf("%w: clear routes: %v", ErrIO, err)
	}
	if len(routes) > 0 {
		query := `INSERT INTO bus_routes (id, position, name, origin, destination, fare, seats, available) VALUES `
		args := make([]interface{}, 0, len(routes)*8)
		for i, r := range routes {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?, ?, ?, ?, ?, ?)"
			args = append(args, r.ID, i, model.ClampText(r.Name), model.ClampText(r.Origin),
				model.ClampText(r.Destination), r.Fare, seatsToBytes(&r), r.Available)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%w: insert routes: %v", ErrIO, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrIO, err)
	}
	committed = true
	return nil
}

func seatsToBytes(r *model.Route) []byte {
	b := make([]byte, model.SeatCapacity)
	for i, s := range r.Seats {
		b[i] = byte(s)
	}
	return b
}

func seatsFromBytes(r *model.Route, b []byte) error {
	if len(b) != model.SeatCapacity {
		return fmt.Errorf("%w: route %d has %d seat bytes", ErrCorruptStore, r.ID, len(b))
	}
	for i, v := range b {
		r.Seats[i] = model.SeatStatus(v)
	}
	return nil
}
