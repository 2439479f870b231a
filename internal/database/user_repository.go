package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/flightdesk/booking-backend/internal/models"
)

const userColumns = `id, username, email, role, created_at, updated_at`

// UserRepository handles user and credential database operations
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// Add creates the user row and its user_info credential row in one transaction
func (r *UserRepository) Add(ctx context.Context, user *models.User, passwordHash string) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	return WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO users (id, username, email, role)
			VALUES ($1, $2, $3, $4)
			RETURNING ` + userColumns

		if err := tx.GetContext(ctx, user, query, user.ID, user.Username, user.Email, user.Role); err != nil {
			return wrap("create user", err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_info (user_id, password_hash) VALUES ($1, $2)`,
			user.ID, passwordHash,
		); err != nil {
			return wrap("create user credentials", err)
		}
		return nil
	})
}

// Get retrieves a user by ID
func (r *UserRepository) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, wrap("get user", err)
	}
	return &user, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		return nil, wrap("get user by username", err)
	}
	return &user, nil
}

// GetCredentials retrieves the user and stored password hash for a username
func (r *UserRepository) GetCredentials(ctx context.Context, username string) (*models.User, string, error) {
	var row struct {
		models.User
		PasswordHash string `db:"password_hash"`
	}
	query := `
		SELECT u.id, u.username, u.email, u.role, u.created_at, u.updated_at, ui.password_hash
		FROM users u
		JOIN user_info ui ON ui.user_id = u.id
		WHERE u.username = $1
	`

	if err := r.db.GetContext(ctx, &row, query, username); err != nil {
		return nil, "", wrap("get credentials", err)
	}
	return &row.User, row.PasswordHash, nil
}

// GetAll lists every user. An empty table yields ErrNotFound.
func (r *UserRepository) GetAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at, username`

	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, wrap("list users", err)
	}
	if len(users) == 0 {
		return nil, ErrNotFound
	}
	return users, nil
}

// Update overwrites a user's email and role
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET email = $2, role = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	if err := r.db.GetContext(ctx, user, query, user.ID, user.Email, user.Role); err != nil {
		return wrap("update user", err)
	}
	return nil
}

// Delete removes a user; user_info and refresh tokens cascade
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	query := `DELETE FROM users WHERE id = $1 RETURNING ` + userColumns

	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, wrap("delete user", err)
	}
	return &user, nil
}
