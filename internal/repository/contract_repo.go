package repository

import (
	"context"

	"carbonledger/internal/dto"
	"carbonledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContractRepository defines the data access contract for the root aggregate.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via in-memory fakes.
type ContractRepository interface {
	Create(ctx context.Context, c *model.Contract) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	// FindByIDWithProducts preloads every product with its entries — used by
	// footprint aggregation, the xlsx export and the report worker.
	FindByIDWithProducts(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	List(ctx context.Context, filter dto.ContractFilter) ([]model.Contract, int64, error)
	// ProductCounts returns products-per-contract for the given ids.
	ProductCounts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error)
	Update(ctx context.Context, c *model.Contract) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) error
}

type contractRepo struct{ db *gorm.DB }

func NewContractRepository(db *gorm.DB) ContractRepository { return &contractRepo{db: db} }

func (r *contractRepo) Create(ctx context.Context, c *model.Contract) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *contractRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	var c model.Contract
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *contractRepo) FindByIDWithProducts(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	var c model.Contract
	err := r.db.WithContext(ctx).
		Preload("Products", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Preload("Products.MaterialEntries", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Products.TransportEntries", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		First(&c, id).Error
	return &c, err
}

func (r *contractRepo) List(ctx context.Context, filter dto.ContractFilter) ([]model.Contract, int64, error) {
	var contracts []model.Contract
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Contract{})

	// Active filter: "false" = inactive, "all" = everything, default = active
	switch filter.Active {
	case "false":
		q = q.Where("active = false")
	case "all":
		// no filter
	default:
		q = q.Where("active = true")
	}
	if filter.Name != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Name+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("name asc").Offset(offset).Limit(filter.Limit).Find(&contracts).Error
	return contracts, total, err
}

func (r *contractRepo) ProductCounts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	var rows []struct {
		ContractID uuid.UUID
		N          int64
	}
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Select("contract_id, count(*) as n").
		Where("contract_id IN ?", ids).
		Group("contract_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ContractID] = row.N
	}
	return counts, nil
}

func (r *contractRepo) Update(ctx context.Context, c *model.Contract) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *contractRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Contract{}).Where("id = ?", id).Update("active", false).Error
}

func (r *contractRepo) Reactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Contract{}).Where("id = ?", id).Update("active", true).Error
}
