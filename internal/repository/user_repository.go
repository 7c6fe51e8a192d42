package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"
	"github.com/reviewfighters/reviewfighters-api/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when an email/password pair does not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

type UserRepository interface {
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id string) (models.User, error)
	Create(ctx context.Context, user models.User) (models.User, error)
	Update(ctx context.Context, id string, user models.User) (models.User, error)
	Delete(ctx context.Context, id string) error
	GetByEmail(ctx context.Context, email string) (models.User, error)
	Authenticate(ctx context.Context, email, password string) (models.User, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, name, role, staff_id, sales_id, password_hash, created_at, updated_at`

func (u *userRepository) List(ctx context.Context) ([]models.User, error) {
	rows, err := u.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (u *userRepository) Get(ctx context.Context, id string) (models.User, error) {
	if !isUUID(id) {
		return models.User{}, sql.ErrNoRows
	}
	row := u.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (u *userRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	row := u.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, strings.TrimSpace(email))
	return scanUser(row)
}

func (u *userRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if !models.IsValidRole(user.Role) {
		return models.User{}, errors.Errorf("invalid role %q", user.Role)
	}

	hash, err := hashPassword(user.Password)
	if err != nil {
		return models.User{}, err
	}

	const query = `
		INSERT INTO users (email, name, role, staff_id, sales_id, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns
	row := u.db.QueryRowContext(ctx, query,
		strings.TrimSpace(user.Email), strings.TrimSpace(user.Name), user.Role,
		user.StaffID, user.SalesID, hash,
	)
	return scanUser(row)
}

// Update replaces the mutable user fields. An empty password keeps the stored hash.
func (u *userRepository) Update(ctx context.Context, id string, user models.User) (models.User, error) {
	if !isUUID(id) {
		return models.User{}, sql.ErrNoRows
	}
	if !models.IsValidRole(user.Role) {
		return models.User{}, errors.Errorf("invalid role %q", user.Role)
	}

	var hash string
	if user.Password != "" {
		var err error
		if hash, err = hashPassword(user.Password); err != nil {
			return models.User{}, err
		}
	}

	const query = `
		UPDATE users
		SET email = $2, name = $3, role = $4, staff_id = $5, sales_id = $6,
		    password_hash = COALESCE(NULLIF($7, ''), password_hash), updated_at = now()
		WHERE id = $1
		RETURNING ` + userColumns
	row := u.db.QueryRowContext(ctx, query, id,
		strings.TrimSpace(user.Email), strings.TrimSpace(user.Name), user.Role,
		user.StaffID, user.SalesID, hash,
	)
	return scanUser(row)
}

func (u *userRepository) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return sql.ErrNoRows
	}
	return execAffectingOne(ctx, u.db, `DELETE FROM users WHERE id = $1`, id)
}

func (u *userRepository) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	user, err := u.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}
	if !models.IsValidRole(user.Role) {
		return models.User{}, errors.New("user has invalid role")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func hashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hashing password")
	}
	return string(hash), nil
}

func scanUser(scanner rowScanner) (models.User, error) {
	var (
		user    models.User
		staffID sql.NullString
		salesID sql.NullString
	)
	if err := scanner.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Role,
		&staffID,
		&salesID,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return models.User{}, err
	}
	if staffID.Valid {
		v := staffID.String
		user.StaffID = &v
	}
	if salesID.Valid {
		v := salesID.String
		user.SalesID = &v
	}
	return user, nil
}
