package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/rmoreira/clinic-scheduler/internal/model"
	"github.com/rmoreira/clinic-scheduler/internal/utils"
)

const userColumns = "id,username,email,password_hash,nome,COALESCE(telefone,''),role,active,created_at,updated_at"

// UserRepo persists user accounts in the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// UserUpdate carries the optional fields of a partial user update. A nil
// field leaves the stored column untouched.
type UserUpdate struct {
	Nome     *string
	Email    *string
	Telefone *string
	Role     *string
	Active   *bool
}

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Nome,
		&u.Telefone, &u.Role, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create hashes the password and inserts a new user. The username check runs
// before the email check so that a duplicate username is reported even when
// the email is also taken. The UNIQUE KEY constraints back both checks.
func (r *UserRepo) Create(ctx context.Context, u *model.User, password string, cost int) error {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	taken, err := r.ExistsByUsername(ctx, u.Username)
	if err != nil {
		return err
	}
	if taken {
		return &BusinessError{Message: "Username já existe: " + u.Username}
	}
	taken, err = r.ExistsByEmail(ctx, u.Email)
	if err != nil {
		return err
	}
	if taken {
		return &BusinessError{Message: "Email já existe: " + u.Email}
	}

	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, nome, telefone, role, active) VALUES (?,?,?,?,?,?,1)",
		u.Username, u.Email, hash, u.Nome, u.Telefone, u.Role)
	if err != nil {
		if isDuplicateKey(err) {
			return &BusinessError{Message: "Username já existe: " + u.Username}
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	fresh, err := r.GetByID(ctx, u.ID)
	if err != nil {
		return err
	}
	*u = *fresh
	return nil
}

// ExistsByUsername reports whether a user with the given username exists.
func (r *UserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE username=?", username).Scan(&n)
	return n > 0, err
}

// ExistsByEmail reports whether a user with the given email exists.
func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE email=?", email).Scan(&n)
	return n > 0, err
}

// Count returns the total number of user rows. Used by the bootstrap
// endpoint to detect an empty identity store.
func (r *UserRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}

// GetByID fetches a user by id, returning NotFoundError when absent.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: "Usuário", Field: "ID", Value: id}
	}
	return u, err
}

// GetByUsername fetches a user by username, returning NotFoundError when absent.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", strings.TrimSpace(username)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: "Usuário", Field: "username", Value: username}
	}
	return u, err
}

func (r *UserRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Nome,
			&u.Telefone, &u.Role, &u.Active, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

// List returns all users ordered by id.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	return r.list(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
}

// ListByRole returns the users holding the given role.
func (r *UserRepo) ListByRole(ctx context.Context, role string) ([]model.User, error) {
	return r.list(ctx, "SELECT "+userColumns+" FROM users WHERE role=? ORDER BY id", role)
}

// ListActive returns only enabled accounts.
func (r *UserRepo) ListActive(ctx context.Context) ([]model.User, error) {
	return r.list(ctx, "SELECT "+userColumns+" FROM users WHERE active=1 ORDER BY id")
}

// Update applies a partial update. The email uniqueness check runs only when
// the email actually changes, so resubmitting the current email never fails.
func (r *UserRepo) Update(ctx context.Context, id uint64, upd UserUpdate) (*model.User, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*upd.Email))
		if email != u.Email {
			taken, err := r.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, &BusinessError{Message: "Email já existe: " + email}
			}
		}
		u.Email = email
	}
	if upd.Nome != nil {
		u.Nome = *upd.Nome
	}
	if upd.Telefone != nil {
		u.Telefone = *upd.Telefone
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.Active != nil {
		u.Active = *upd.Active
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE users SET nome=?, email=?, telefone=?, role=?, active=?, updated_at=NOW() WHERE id=?",
		u.Nome, u.Email, u.Telefone, u.Role, u.Active, id)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, &BusinessError{Message: "Email já existe: " + u.Email}
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// SetActive flips the account's active flag.
func (r *UserRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET active=?, updated_at=NOW() WHERE id=?", active, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Delete hard-deletes a user row.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Entity: "Usuário", Field: "ID", Value: id}
	}
	return nil
}
