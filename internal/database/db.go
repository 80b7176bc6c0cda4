package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Settings identifies the MySQL server holding the route snapshot.
type Settings struct {
	User string
	Pass string
	Host string
	Port string
	Name string
}

// DSN renders the connection string for the go-sql-driver.
func (s Settings) DSN() string {
	auth := s.User
	if s.Pass != "" {
		auth = fmt.Sprintf("%s:%s", s.User, s.Pass)
	}
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, s.Host, s.Port, s.Name)
}

// Open connects to MySQL and verifies the connection.
func Open(s Settings) (*sql.DB, error) {
	db, err := sql.Open("mysql", s.DSN())
	if err != nil {
		return nil, err
	}

	// one process writes snapshots
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// routesSchema creates the table used by store.MySQLStore.  position keeps
// registration order; seats holds one byte (0/1) per seat.
const routesSchema = `CREATE TABLE IF NOT EXISTS bus_routes (
	id          INT          NOT NULL PRIMARY KEY,
	position    INT          NOT NULL,
	name        VARCHAR(49)  NOT NULL,
	origin      VARCHAR(49)  NOT NULL,
	destination VARCHAR(49)  NOT NULL,
	fare        FLOAT        NOT NULL,
	seats       BINARY(32)   NOT NULL,
	available   INT          NOT NULL,
	UNIQUE KEY uq_bus_routes_position (position)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// EnsureSchema creates the bus_routes table when it does not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, routesSchema)
	return err
}
