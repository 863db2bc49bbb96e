package offers

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/offerhubhq/offerhub-backend/pkg/db/models"
	"github.com/offerhubhq/offerhub-backend/pkg/enums"
	"github.com/offerhubhq/offerhub-backend/pkg/pagination"
)

// Repository handles offer persistence.
type Repository interface {
	Create(ctx context.Context, offer *models.Offer) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Offer, error)
	Update(ctx context.Context, offer *models.Offer) error
	ListByMerchant(ctx context.Context, merchantID uuid.UUID, params pagination.Params) ([]models.Offer, *pagination.Cursor, error)
	ListPublic(ctx context.Context, now time.Time, params pagination.Params) ([]models.Offer, *pagination.Cursor, error)
	ListByState(ctx context.Context, state enums.OfferState, now time.Time, params pagination.Params) ([]models.Offer, *pagination.Cursor, error)
	CountPublished(ctx context.Context, merchantID uuid.UUID, now time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an offer repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, offer *models.Offer) error {
	return r.db.WithContext(ctx).Create(offer).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	err := r.db.WithContext(ctx).First(&offer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *repository) Update(ctx context.Context, offer *models.Offer) error {
	return r.db.WithContext(ctx).Save(offer).Error
}

func (r *repository) ListByMerchant(ctx context.Context, merchantID uuid.UUID, params pagination.Params) ([]models.Offer, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx).Where("merchant_id = ?", merchantID)
	return listWithCursor(query, params)
}

func (r *repository) ListPublic(ctx context.Context, now time.Time, params pagination.Params) ([]models.Offer, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx).
		Where("is_approved = ?", true).
		Where("is_active = ?", true).
		Where("rejected_at IS NULL").
		Where("start_date <= ?", now).
		Where("end_date IS NULL OR end_date >= ?", now)
	return listWithCursor(query, params)
}

// ListByState filters by derived state expressed in SQL, so the moderation
// queue never needs a stored state column.
func (r *repository) ListByState(ctx context.Context, state enums.OfferState, now time.Time, params pagination.Params) ([]models.Offer, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx)
	switch state {
	case enums.OfferStateRejected:
		query = query.Where("rejected_at IS NOT NULL")
	case enums.OfferStateExpired:
		query = query.Where("rejected_at IS NULL").
			Where("end_date IS NOT NULL AND end_date < ?", now)
	case enums.OfferStateApproved:
		query = query.Where("rejected_at IS NULL").
			Where("is_approved = ?", true).
			Where("end_date IS NULL OR end_date >= ?", now)
	default:
		query = query.Where("rejected_at IS NULL").
			Where("is_approved = ?", false).
			Where("end_date IS NULL OR end_date >= ?", now)
	}
	return listWithCursor(query, params)
}

// CountPublished counts offers whose derived state is pending or approved:
// not rejected and not past their end date. This is the quota denominator.
func (r *repository) CountPublished(ctx context.Context, merchantID uuid.UUID, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Offer{}).
		Where("merchant_id = ?", merchantID).
		Where("rejected_at IS NULL").
		Where("end_date IS NULL OR end_date >= ?", now).
		Count(&count).Error
	return count, err
}

func listWithCursor(query *gorm.DB, params pagination.Params) ([]models.Offer, *pagination.Cursor, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at, id) < (?, ?)",
			cursor.CreatedAt, cursor.ID,
		)
	}

	limit := pagination.NormalizeLimit(params.Limit)
	var rows []models.Offer
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return rows, next, nil
}
