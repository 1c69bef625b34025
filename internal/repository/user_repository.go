package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/swiftbus/reservation/internal/model"
)

// UserRepo provides data access to the `users` table.
type UserRepo struct {
    db *sql.DB
}

// NewUserRepo returns a new UserRepo bound to the provided database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a user with an already-hashed password.  Returns
// ErrEmailExists on a duplicate email.
func (r *UserRepo) Create(ctx context.Context, id, email, passwordHash, name string) error {
    const query = "INSERT INTO users (id, email, password_hash, name) VALUES (?, ?, ?, ?)"
    _, err := r.db.ExecContext(ctx, query, id, strings.ToLower(strings.TrimSpace(email)), passwordHash, name)
    if err != nil {
        // MySQL duplicate-key error code.
        if strings.Contains(err.Error(), "1062") {
            return ErrEmailExists
        }
        return err
    }
    return nil
}

// GetByEmail fetches a user by normalized email.  Returns
// sql.ErrNoRows when no account exists.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
    const query = "SELECT id, email, password_hash, name, created_at, updated_at FROM users WHERE email = ? LIMIT 1"
    var u model.User
    err := r.db.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(email))).
        Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.CreatedAt, &u.UpdatedAt)
    return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
    const query = "SELECT id, email, password_hash, name, created_at, updated_at FROM users WHERE id = ? LIMIT 1"
    var u model.User
    err := r.db.QueryRowContext(ctx, query, id).
        Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.CreatedAt, &u.UpdatedAt)
    return u, err
}
