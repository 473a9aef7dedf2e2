package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"teacher_portal/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicateUser is returned when an insert or update hits one of the
// unique indexes on email, mobile_no or username.
var ErrDuplicateUser = errors.New("user with this email or mobile already exists")

// PgxPool is the subset of pgxpool.Pool the repository needs. Narrowed to an
// interface so tests can substitute pgxmock.
type PgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository defines operations for user data
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id int) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByEmailOrMobile(ctx context.Context, email, mobileNo string) (*model.User, error)
	List(ctx context.Context, search string, pagination model.PaginationParams) ([]model.User, int, error)
	Update(ctx context.Context, id int, patch model.UpdateUserRequest) (*model.User, error)
}

type userRepository struct {
	db PgxPool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db PgxPool) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, mobile_no, full_name, email, role, password, username, created_at`

func scanUser(row pgx.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(&user.ID, &user.MobileNo, &user.FullName, &user.Email,
		&user.Role, &user.PasswordHash, &user.Username, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create inserts a new user inside a transaction. Unique-index violations are
// translated to ErrDuplicateUser so a lost check-then-insert race still
// surfaces as a duplicate.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	sql := `INSERT INTO users (mobile_no, full_name, email, role, password, username, created_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err = tx.QueryRow(ctx, sql, user.MobileNo, user.FullName, user.Email,
		user.Role, user.PasswordHash, user.Username, user.CreatedAt).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateUser
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit user insert: %w", err)
	}
	return nil
}

// FindByID retrieves a user by their ID
func (r *userRepository) FindByID(ctx context.Context, id int) (*model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found is not an error here, service layer decides
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// FindByUsername retrieves a user by their username
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	user, err := scanUser(r.db.QueryRow(ctx, sql, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}
	return user, nil
}

// FindByEmailOrMobile retrieves a user matching either the email or the
// mobile number
func (r *userRepository) FindByEmailOrMobile(ctx context.Context, email, mobileNo string) (*model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users WHERE email = $1 OR mobile_no = $2`
	user, err := scanUser(r.db.QueryRow(ctx, sql, email, mobileNo))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by email or mobile: %w", err)
	}
	return user, nil
}

// List retrieves users matching an optional case-insensitive full-name search,
// returning the page of items and the total match count before pagination.
// Results are ordered by id ascending for a stable page sequence.
func (r *userRepository) List(ctx context.Context, search string, pagination model.PaginationParams) ([]model.User, int, error) {
	where := ""
	args := []any{}
	argCount := 1

	if search != "" {
		where = fmt.Sprintf(" WHERE full_name ILIKE $%d", argCount)
		args = append(args, "%"+search+"%")
		argCount++
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM users` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	listQuery := fmt.Sprintf(`SELECT `+userColumns+` FROM users%s ORDER BY id ASC LIMIT $%d OFFSET $%d`,
		where, argCount, argCount+1)
	args = append(args, pagination.Limit, pagination.Offset)

	rows, err := r.db.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.MobileNo, &u.FullName, &u.Email,
			&u.Role, &u.PasswordHash, &u.Username, &u.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, total, nil
}

// Update applies a partial patch inside a transaction. A mobile_no change
// also rewrites username to keep the two columns identical. Returns
// pgx.ErrNoRows wrapped when no row has the given id.
func (r *userRepository) Update(ctx context.Context, id int, patch model.UpdateUserRequest) (*model.User, error) {
	var sets []string
	args := []any{}
	argCount := 1

	if patch.MobileNo != nil {
		sets = append(sets, fmt.Sprintf("mobile_no = $%d", argCount))
		args = append(args, *patch.MobileNo)
		argCount++
		// username mirrors mobile_no at all times
		sets = append(sets, fmt.Sprintf("username = $%d", argCount))
		args = append(args, *patch.MobileNo)
		argCount++
	}
	if patch.FullName != nil {
		sets = append(sets, fmt.Sprintf("full_name = $%d", argCount))
		args = append(args, *patch.FullName)
		argCount++
	}
	if patch.Email != nil {
		sets = append(sets, fmt.Sprintf("email = $%d", argCount))
		args = append(args, *patch.Email)
		argCount++
	}
	if patch.Role != nil {
		sets = append(sets, fmt.Sprintf("role = $%d", argCount))
		args = append(args, *patch.Role)
		argCount++
	}

	if len(sets) == 0 {
		return r.findForUpdate(ctx, id)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	sql := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING `+userColumns,
		strings.Join(sets, ", "), argCount)
	args = append(args, id)

	user, err := scanUser(tx.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", id, pgx.ErrNoRows)
		}
		if isUniqueViolation(err) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit user update: %w", err)
	}
	return user, nil
}

// findForUpdate handles the empty-patch case: no write, but the caller still
// expects NotFound semantics for an unknown id.
func (r *userRepository) findForUpdate(ctx context.Context, id int) (*model.User, error) {
	user, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", id, pgx.ErrNoRows)
	}
	return user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
