package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/trendzone/storefront/internal/domain"
	"github.com/trendzone/storefront/pkg/database"
	apperrors "github.com/trendzone/storefront/pkg/errors"
)

// AdminRepository implements repository.AdminRepository using PostgreSQL.
type AdminRepository struct {
	pool database.DBTX
}

// NewAdminRepository creates a new PostgreSQL-backed admin repository.
func NewAdminRepository(pool database.DBTX) *AdminRepository {
	return &AdminRepository{pool: pool}
}

// Create inserts a new admin user into the database.
func (r *AdminRepository) Create(ctx context.Context, a *domain.AdminUser) error {
	query := `
		INSERT INTO admin_users (id, username, email, password_hash, role, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		a.ID,
		a.Username,
		nullable(a.Email),
		a.PasswordHash,
		a.Role,
		a.Active,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("admin", "username", a.Username)
		}
		return fmt.Errorf("insert admin: %w", err)
	}

	return nil
}

// GetByID retrieves an admin by their ID.
func (r *AdminRepository) GetByID(ctx context.Context, id string) (*domain.AdminUser, error) {
	query := `
		SELECT id, username, COALESCE(email, ''), password_hash, role, active, created_at, updated_at
		FROM admin_users
		WHERE id = $1`

	return r.scanAdmin(ctx, query, id)
}

// GetByIdentifier retrieves an admin by login identifier, which matches
// either the username or the email.
func (r *AdminRepository) GetByIdentifier(ctx context.Context, identifier string) (*domain.AdminUser, error) {
	query := `
		SELECT id, username, COALESCE(email, ''), password_hash, role, active, created_at, updated_at
		FROM admin_users
		WHERE username = $1 OR email = $1`

	return r.scanAdmin(ctx, query, identifier)
}

// List returns all admin users ordered by creation time.
func (r *AdminRepository) List(ctx context.Context) ([]domain.AdminUser, error) {
	query := `
		SELECT id, username, COALESCE(email, ''), password_hash, role, active, created_at, updated_at
		FROM admin_users
		ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer rows.Close()

	var admins []domain.AdminUser
	for rows.Next() {
		var a domain.AdminUser
		if err := rows.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.Role, &a.Active, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan admin: %w", err)
		}
		admins = append(admins, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate admins: %w", err)
	}

	return admins, nil
}

// SetActive flips the admin's active flag. Deactivation takes effect on the
// admin's next authenticated request.
func (r *AdminRepository) SetActive(ctx context.Context, id string, active bool) error {
	query := `UPDATE admin_users SET active = $1, updated_at = $2 WHERE id = $3`

	ct, err := r.pool.Exec(ctx, query, active, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set admin active: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("admin", id)
	}

	return nil
}

func (r *AdminRepository) scanAdmin(ctx context.Context, query string, args ...any) (*domain.AdminUser, error) {
	var a domain.AdminUser

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&a.ID,
		&a.Username,
		&a.Email,
		&a.PasswordHash,
		&a.Role,
		&a.Active,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan admin: %w", err)
	}

	return &a, nil
}
