package repository

import (
	"context"
	"database/sql"

	"github.com/reviewfighters/reviewfighters-api/internal/models"
)

type ProfileRepository interface {
	List(ctx context.Context) ([]models.UserProfile, error)
	Get(ctx context.Context, id string) (models.UserProfile, error)
	Create(ctx context.Context, profile models.UserProfile) (models.UserProfile, error)
	Update(ctx context.Context, id string, profile models.UserProfile) (models.UserProfile, error)
	Delete(ctx context.Context, id string) error
}

type profileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) ProfileRepository {
	return &profileRepository{db: db}
}

const profileColumns = `id, user_id, bio, avatar_url, phone, company, website, created_at, updated_at`

func (r *profileRepository) List(ctx context.Context) ([]models.UserProfile, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+profileColumns+` FROM user_profiles ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := []models.UserProfile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *profileRepository) Get(ctx context.Context, id string) (models.UserProfile, error) {
	if !isUUID(id) {
		return models.UserProfile{}, sql.ErrNoRows
	}
	return scanProfile(r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM user_profiles WHERE id = $1`, id))
}

func (r *profileRepository) Create(ctx context.Context, p models.UserProfile) (models.UserProfile, error) {
	const query = `
		INSERT INTO user_profiles (user_id, bio, avatar_url, phone, company, website)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + profileColumns
	return scanProfile(r.db.QueryRowContext(ctx, query, p.UserID, p.Bio, p.AvatarURL, p.Phone, p.Company, p.Website))
}

func (r *profileRepository) Update(ctx context.Context, id string, p models.UserProfile) (models.UserProfile, error) {
	if !isUUID(id) {
		return models.UserProfile{}, sql.ErrNoRows
	}
	const query = `
		UPDATE user_profiles
		SET bio = $2, avatar_url = $3, phone = $4, company = $5, website = $6, updated_at = now()
		WHERE id = $1
		RETURNING ` + profileColumns
	return scanProfile(r.db.QueryRowContext(ctx, query, id, p.Bio, p.AvatarURL, p.Phone, p.Company, p.Website))
}

func (r *profileRepository) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return sql.ErrNoRows
	}
	return execAffectingOne(ctx, r.db, `DELETE FROM user_profiles WHERE id = $1`, id)
}

func scanProfile(scanner rowScanner) (models.UserProfile, error) {
	var p models.UserProfile
	err := scanner.Scan(&p.ID, &p.UserID, &p.Bio, &p.AvatarURL, &p.Phone, &p.Company, &p.Website, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
