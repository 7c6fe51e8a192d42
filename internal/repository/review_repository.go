package repository

import (
	"context"
	"database/sql"

	"github.com/reviewfighters/reviewfighters-api/internal/models"
)

type ReviewRepository interface {
	List(ctx context.Context) ([]models.Review, error)
	Get(ctx context.Context, id string) (models.Review, error)
	Create(ctx context.Context, review models.Review) (models.Review, error)
	Update(ctx context.Context, id string, review models.Review) (models.Review, error)
	Delete(ctx context.Context, id string) error
}

type reviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

const reviewColumns = `id, user_id, product_name, platform, rating, content, status, fake_score, created_at, updated_at`

func (r *reviewRepository) List(ctx context.Context) ([]models.Review, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+reviewColumns+` FROM reviews ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}

func (r *reviewRepository) Get(ctx context.Context, id string) (models.Review, error) {
	if !isUUID(id) {
		return models.Review{}, sql.ErrNoRows
	}
	return scanReview(r.db.QueryRowContext(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id))
}

func (r *reviewRepository) Create(ctx context.Context, rv models.Review) (models.Review, error) {
	if rv.Status == "" {
		rv.Status = models.ReviewStatusPending
	}
	const query = `
		INSERT INTO reviews (user_id, product_name, platform, rating, content, status, fake_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + reviewColumns
	return scanReview(r.db.QueryRowContext(ctx, query,
		rv.UserID, rv.ProductName, rv.Platform, rv.Rating, rv.Content, rv.Status, rv.FakeScore))
}

func (r *reviewRepository) Update(ctx context.Context, id string, rv models.Review) (models.Review, error) {
	if !isUUID(id) {
		return models.Review{}, sql.ErrNoRows
	}
	if rv.Status == "" {
		rv.Status = models.ReviewStatusPending
	}
	const query = `
		UPDATE reviews
		SET product_name = $2, platform = $3, rating = $4, content = $5, status = $6, fake_score = $7, updated_at = now()
		WHERE id = $1
		RETURNING ` + reviewColumns
	return scanReview(r.db.QueryRowContext(ctx, query,
		id, rv.ProductName, rv.Platform, rv.Rating, rv.Content, rv.Status, rv.FakeScore))
}

func (r *reviewRepository) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return sql.ErrNoRows
	}
	return execAffectingOne(ctx, r.db, `DELETE FROM reviews WHERE id = $1`, id)
}

func scanReview(scanner rowScanner) (models.Review, error) {
	var rv models.Review
	err := scanner.Scan(&rv.ID, &rv.UserID, &rv.ProductName, &rv.Platform, &rv.Rating, &rv.Content,
		&rv.Status, &rv.FakeScore, &rv.CreatedAt, &rv.UpdatedAt)
	return rv, err
}
