package service

import (
	"context"
	"errors"

	"carbonledger/internal/dto"
	"carbonledger/internal/model"
	"carbonledger/internal/repository"

	"github.com/google/uuid"
)

// ContractService defines the business logic contract for the root aggregate.
type ContractService interface {
	Create(ctx context.Context, req dto.CreateContractRequest) (*dto.ContractResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.ContractResponse, error)
	List(ctx context.Context, filter dto.ContractFilter) (*dto.ContractListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateContractRequest) (*dto.ContractResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) error
}

type contractService struct {
	repo repository.ContractRepository
}

func NewContractService(repo repository.ContractRepository) ContractService {
	return &contractService{repo: repo}
}

func (s *contractService) Create(ctx context.Context, req dto.CreateContractRequest) (*dto.ContractResponse, error) {
	c := &model.Contract{
		Name:        req.Name,
		Description: req.Description,
		Active:      true,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	resp := contractToResponse(c, 0)
	return &resp, nil
}

func (s *contractService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ContractResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("contract not found")
	}
	counts, err := s.repo.ProductCounts(ctx, []uuid.UUID{c.ID})
	if err != nil {
		return nil, err
	}
	resp := contractToResponse(c, counts[c.ID])
	return &resp, nil
}

func (s *contractService) List(ctx context.Context, filter dto.ContractFilter) (*dto.ContractListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}

	contracts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(contracts))
	for i := range contracts {
		ids[i] = contracts[i].ID
	}
	counts, err := s.repo.ProductCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	data := make([]dto.ContractResponse, len(contracts))
	for i := range contracts {
		data[i] = contractToResponse(&contracts[i], counts[contracts[i].ID])
	}

	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &dto.ContractListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}, nil
}

func (s *contractService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateContractRequest) (*dto.ContractResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("contract not found")
	}
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Description != nil {
		c.Description = req.Description
	}
	if req.Active != nil {
		c.Active = *req.Active
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	counts, err := s.repo.ProductCounts(ctx, []uuid.UUID{c.ID})
	if err != nil {
		return nil, err
	}
	resp := contractToResponse(c, counts[c.ID])
	return &resp, nil
}

func (s *contractService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return errors.New("contract not found")
	}
	return s.repo.SoftDelete(ctx, id)
}

func (s *contractService) Reactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return errors.New("contract not found")
	}
	return s.repo.Reactivate(ctx, id)
}

func contractToResponse(c *model.Contract, productCount int64) dto.ContractResponse {
	return dto.ContractResponse{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		Active:       c.Active,
		ProductCount: int(productCount),
		CreatedAt:    c.CreatedAt,
	}
}
