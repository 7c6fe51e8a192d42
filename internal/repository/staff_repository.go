package repository

import (
	"context"
	"database/sql"

	"github.com/reviewfighters/reviewfighters-api/internal/models"
)

type StaffRepository interface {
	List(ctx context.Context) ([]models.StaffMember, error)
	Get(ctx context.Context, id string) (models.StaffMember, error)
	Create(ctx context.Context, staff models.StaffMember) (models.StaffMember, error)
	Update(ctx context.Context, id string, staff models.StaffMember) (models.StaffMember, error)
	Delete(ctx context.Context, id string) error
}

type staffRepository struct {
	db *sql.DB
}

func NewStaffRepository(db *sql.DB) StaffRepository {
	return &staffRepository{db: db}
}

const staffColumns = `id, user_id, position, department, active, hired_at, created_at, updated_at`

func (r *staffRepository) List(ctx context.Context) ([]models.StaffMember, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+staffColumns+` FROM staff_members ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	staff := []models.StaffMember{}
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		staff = append(staff, s)
	}
	return staff, rows.Err()
}

func (r *staffRepository) Get(ctx context.Context, id string) (models.StaffMember, error) {
	if !isUUID(id) {
		return models.StaffMember{}, sql.ErrNoRows
	}
	return scanStaff(r.db.QueryRowContext(ctx, `SELECT `+staffColumns+` FROM staff_members WHERE id = $1`, id))
}

func (r *staffRepository) Create(ctx context.Context, s models.StaffMember) (models.StaffMember, error) {
	const query = `
		INSERT INTO staff_members (user_id, position, department, active, hired_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + staffColumns
	return scanStaff(r.db.QueryRowContext(ctx, query, s.UserID, s.Position, s.Department, s.Active, s.HiredAt))
}

func (r *staffRepository) Update(ctx context.Context, id string, s models.StaffMember) (models.StaffMember, error) {
	if !isUUID(id) {
		return models.StaffMember{}, sql.ErrNoRows
	}
	const query = `
		UPDATE staff_members
		SET position = $2, department = $3, active = $4, hired_at = $5, updated_at = now()
		WHERE id = $1
		RETURNING ` + staffColumns
	return scanStaff(r.db.QueryRowContext(ctx, query, id, s.Position, s.Department, s.Active, s.HiredAt))
}

func (r *staffRepository) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return sql.ErrNoRows
	}
	return execAffectingOne(ctx, r.db, `DELETE FROM staff_members WHERE id = $1`, id)
}

func scanStaff(scanner rowScanner) (models.StaffMember, error) {
	var (
		s       models.StaffMember
		hiredAt sql.NullTime
	)
	if err := scanner.Scan(&s.ID, &s.UserID, &s.Position, &s.Department, &s.Active, &hiredAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return models.StaffMember{}, err
	}
	if hiredAt.Valid {
		t := hiredAt.Time
		s.HiredAt = &t
	}
	return s, nil
}
