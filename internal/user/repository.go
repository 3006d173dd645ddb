package user

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vasiliy-maslov/shopping-mall/internal/apperr"
)

const emailUniqueConstraint = "users_email_key"

var (
	ErrNotFound    = &apperr.Error{Kind: apperr.NotFound, Message: "User not found"}
	ErrEmailExists = &apperr.Error{Kind: apperr.DuplicateEmail, Message: "User already exists"}
)

type Repository interface {
	Create(ctx context.Context, u *User) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// DB is the part of *pgxpool.Pool the repository needs.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type postgresRepository struct {
	db           DB
	queryTimeout time.Duration
}

func NewRepository(db DB, queryTimeout time.Duration) Repository {
	if queryTimeout <= 0 {
		queryTimeout = 5 * time.Second
	}
	return &postgresRepository{db: db, queryTimeout: queryTimeout}
}

// Create inserts the user in a single statement. The unique constraint on email decides duplicates.
func (r *postgresRepository) Create(ctx context.Context, u *User) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	role := u.Role
	if role == "" {
		role = RoleCustomer
	}

	query := `
		INSERT INTO users (email, password, first_name, last_name, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, email, first_name, last_name, role, created_at
	`

	rows, err := r.db.Query(ctx, query, u.Email, u.PasswordHash, u.FirstName, u.LastName, role)
	if err != nil {
		return nil, mapCreateError(err)
	}

	created, err := pgx.CollectOneRow(rows, pgx.RowToStructByNameLax[User])
	if err != nil {
		return nil, mapCreateError(err)
	}

	return &created, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	query := `
		SELECT id, email, first_name, last_name, role, created_at
		FROM users
		WHERE id = $1
	`

	return r.collectOne(ctx, "repository: failed to select user by id", query, id)
}

// GetByEmail is the only lookup that returns the stored password hash.
func (r *postgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	query := `
		SELECT id, email, password, first_name, last_name, role, created_at
		FROM users
		WHERE email = $1
	`

	return r.collectOne(ctx, "repository: failed to select user by email", query, email)
}

func (r *postgresRepository) collectOne(ctx context.Context, op, query string, args ...any) (*User, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.NewStoreUnavailable(op, err)
	}

	u, err := pgx.CollectOneRow(rows, pgx.RowToStructByNameLax[User])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, apperr.NewStoreUnavailable(op, err)
	}

	return &u, nil
}

func mapCreateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation && pgErr.ConstraintName == emailUniqueConstraint {
		return ErrEmailExists
	}
	return apperr.NewStoreUnavailable("repository: failed to insert user", err)
}
