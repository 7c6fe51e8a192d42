package repository

import (
	"context"
	"database/sql"

	"github.com/reviewfighters/reviewfighters-api/internal/models"
)

type AffiliateRepository interface {
	List(ctx context.Context) ([]models.Affiliate, error)
	Get(ctx context.Context, id string) (models.Affiliate, error)
	Create(ctx context.Context, affiliate models.Affiliate) (models.Affiliate, error)
	Update(ctx context.Context, id string, affiliate models.Affiliate) (models.Affiliate, error)
	Delete(ctx context.Context, id string) error
}

type affiliateRepository struct {
	db *sql.DB
}

func NewAffiliateRepository(db *sql.DB) AffiliateRepository {
	return &affiliateRepository{db: db}
}

const affiliateColumns = `id, user_id, code, commission_rate, total_earnings, payout_email, status, created_at, updated_at`

func (r *affiliateRepository) List(ctx context.Context) ([]models.Affiliate, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+affiliateColumns+` FROM affiliates ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	affiliates := []models.Affiliate{}
	for rows.Next() {
		a, err := scanAffiliate(rows)
		if err != nil {
			return nil, err
		}
		affiliates = append(affiliates, a)
	}
	return affiliates, rows.Err()
}

func (r *affiliateRepository) Get(ctx context.Context, id string) (models.Affiliate, error) {
	if !isUUID(id) {
		return models.Affiliate{}, sql.ErrNoRows
	}
	return scanAffiliate(r.db.QueryRowContext(ctx, `SELECT `+affiliateColumns+` FROM affiliates WHERE id = $1`, id))
}

func (r *affiliateRepository) Create(ctx context.Context, a models.Affiliate) (models.Affiliate, error) {
	if a.Status == "" {
		a.Status = "pending" // Default status if not provided
	}
	const query = `
		INSERT INTO affiliates (user_id, code, commission_rate, total_earnings, payout_email, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + affiliateColumns
	return scanAffiliate(r.db.QueryRowContext(ctx, query,
		a.UserID, a.Code, a.CommissionRate, a.TotalEarnings, a.PayoutEmail, a.Status))
}

func (r *affiliateRepository) Update(ctx context.Context, id string, a models.Affiliate) (models.Affiliate, error) {
	if !isUUID(id) {
		return models.Affiliate{}, sql.ErrNoRows
	}
	const query = `
		UPDATE affiliates
		SET code = $2, commission_rate = $3, total_earnings = $4, payout_email = $5,
		    status = COALESCE(NULLIF($6, ''), status), updated_at = now()
		WHERE id = $1
		RETURNING ` + affiliateColumns
	return scanAffiliate(r.db.QueryRowContext(ctx, query,
		id, a.Code, a.CommissionRate, a.TotalEarnings, a.PayoutEmail, a.Status))
}

func (r *affiliateRepository) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return sql.ErrNoRows
	}
	return execAffectingOne(ctx, r.db, `DELETE FROM affiliates WHERE id = $1`, id)
}

func scanAffiliate(scanner rowScanner) (models.Affiliate, error) {
	var a models.Affiliate
	err := scanner.Scan(&a.ID, &a.UserID, &a.Code, &a.CommissionRate, &a.TotalEarnings, &a.PayoutEmail,
		&a.Status, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}
