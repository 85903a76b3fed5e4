package repository

import (
	"context"
	"time"

	"carbonledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportRepository interface {
	Create(ctx context.Context, rpt *model.Report) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Report, error)
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]model.Report, error)
	Update(ctx context.Context, rpt *model.Report) error
	// ListPendingRetries returns pending reports whose next attempt is due.
	ListPendingRetries(ctx context.Context, now time.Time, limit int) ([]model.Report, error)
}

type reportRepo struct{ db *gorm.DB }

func NewReportRepository(db *gorm.DB) ReportRepository { return &reportRepo{db: db} }

func (r *reportRepo) Create(ctx context.Context, rpt *model.Report) error {
	return r.db.WithContext(ctx).Create(rpt).Error
}

func (r *reportRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	var rpt model.Report
	err := r.db.WithContext(ctx).First(&rpt, id).Error
	return &rpt, err
}

func (r *reportRepo) ListByContract(ctx context.Context, contractID uuid.UUID) ([]model.Report, error) {
	var reports []model.Report
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("created_at desc").
		Find(&reports).Error
	return reports, err
}

func (r *reportRepo) Update(ctx context.Context, rpt *model.Report) error {
	return r.db.WithContext(ctx).Save(rpt).Error
}

func (r *reportRepo) ListPendingRetries(ctx context.Context, now time.Time, limit int) ([]model.Report, error) {
	var reports []model.Report
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_retry_at IS NOT NULL AND next_retry_at <= ?", "pending", now).
		Order("next_retry_at asc").
		Limit(limit).
		Find(&reports).Error
	return reports, err
}
