// Package storage implements the PostgreSQL persistence layer: users,
// editors, offers, subscriptions, newsletters, categories, reading
// progress and advertisements. Multi-step writes (editor plus admin plus
// logo) run in a single transaction so a mid-failure leaves no orphans.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	// Registers the pgx driver for database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

var (
	// ErrNotFound is returned when the referenced row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned on unique-constraint violations.
	ErrDuplicate = errors.New("duplicate")
)

const uniqueViolation = "23505"

// Storage wraps the database connection and implements the repository
// interfaces consumed by the services.
type Storage struct {
	DB *sql.DB
}

// New opens the PostgreSQL connection and verifies it.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{DB: db}, nil
}

// Close closes the underlying connection pool.
func (s *Storage) Close() error {
	return s.DB.Close()
}

func affectedOrNotFound(op string, result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

func translateError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}
