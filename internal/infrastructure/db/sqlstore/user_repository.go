package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/slugboard/slugboard/internal/core/domain"
)

const userColumns = "id, name, email, slug, password_hash, created_at, updated_at"

// UserRepository implements ports.UserRepository on database/sql.
type UserRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewUserRepository(db *sql.DB, dialect Dialect) *UserRepository {
	return &UserRepository{db: db, dialect: dialect}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := r.dialect.rebind(`
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.Slug,
		user.PasswordHash,
		user.CreatedAt.UTC(),
		user.UpdatedAt.UTC(),
	)
	if err != nil {
		if dup := classifyUnique(err); dup != nil {
			return dup
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "email", email)
}

func (r *UserRepository) FindBySlug(ctx context.Context, slug string) (*domain.User, error) {
	return r.findOne(ctx, "slug", slug)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, "id", id)
}

// findOne looks a user up by one of the fixed key columns above.
func (r *UserRepository) findOne(ctx context.Context, column, value string) (*domain.User, error) {
	query := r.dialect.rebind(`SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = ?`)

	var u domain.User
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Slug,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by %s: %w", column, err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	query := r.dialect.rebind(`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`)

	res, err := r.db.ExecContext(ctx, query, passwordHash, updatedAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
