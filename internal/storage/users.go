package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/saabal/saabal-api/internal/models"
)

const userColumns = `id, email, password_hash, firstname, lastname, phone, role, activated, editor_id, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Firstname, &u.Lastname,
		&u.Phone, &role, &u.Activated, &u.EditorID, &u.CreatedAt); err != nil {
		return nil, err
	}
	parsed, err := models.ParseRole(role)
	if err != nil {
		return nil, err
	}
	u.Role = parsed
	return &u, nil
}

// CreateUser inserts a user row and returns its id. A duplicate email
// yields ErrDuplicate.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (int64, error) {
	const op = "storage.CreateUser"

	query := `INSERT INTO users (email, password_hash, firstname, lastname, phone, role, activated, editor_id)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING id`
	var newID int64
	err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, user.Firstname, user.Lastname,
		user.Phone, string(user.Role), user.Activated, user.EditorID).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, translateError(err))
	}
	return newID, nil
}

// GetUserByEmail returns the user with the given email or ErrNotFound.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translateError(err))
	}
	return user, nil
}

// GetUserByID returns the user with the given id or ErrNotFound.
func (s *Storage) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	const op = "storage.GetUserByID"

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translateError(err))
	}
	return user, nil
}

// ListUsers returns all users, newest first.
func (s *Storage) ListUsers(ctx context.Context) ([]*models.User, error) {
	const op = "storage.ListUsers"

	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateUser applies the non-nil fields of upd to the user row.
func (s *Storage) UpdateUser(ctx context.Context, id int64, upd models.UserUpdate) error {
	const op = "storage.UpdateUser"

	var role *string
	if upd.Role != nil {
		r := string(*upd.Role)
		role = &r
	}
	query := `UPDATE users
			  SET email = COALESCE($2, email),
			      firstname = COALESCE($3, firstname),
			      lastname = COALESCE($4, lastname),
			      phone = COALESCE($5, phone),
			      role = COALESCE($6, role)
			  WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id, upd.Email, upd.Firstname, upd.Lastname, upd.Phone, role)
	if err != nil {
		return fmt.Errorf("%s: %w", op, translateError(err))
	}
	return affectedOrNotFound(op, result)
}

// UpdateUserPassword replaces the stored password hash.
func (s *Storage) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	const op = "storage.UpdateUserPassword"

	result, err := s.DB.ExecContext(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return affectedOrNotFound(op, result)
}

// UpdateUserActivated toggles the activation flag.
func (s *Storage) UpdateUserActivated(ctx context.Context, id int64, activated bool) error {
	const op = "storage.UpdateUserActivated"

	result, err := s.DB.ExecContext(ctx, `UPDATE users SET activated = $2 WHERE id = $1`, id, activated)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return affectedOrNotFound(op, result)
}

// DeleteUser removes the user row; owned subscriptions and reading
// progress cascade at the schema level.
func (s *Storage) DeleteUser(ctx context.Context, id int64) error {
	const op = "storage.DeleteUser"

	result, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return affectedOrNotFound(op, result)
}

// ListUserCreationTimes returns the creation timestamps of users created
// at or after since, for the monthly registration statistics.
func (s *Storage) ListUserCreationTimes(ctx context.Context, since time.Time) ([]time.Time, error) {
	const op = "storage.ListUserCreationTimes"

	rows, err := s.DB.QueryContext(ctx, `SELECT created_at FROM users WHERE created_at >= $1`, since)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
