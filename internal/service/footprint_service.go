package service

import (
	"context"
	"errors"

	"carbonledger/internal/dto"
	"carbonledger/internal/footprint"
	"carbonledger/internal/metrics"
	"carbonledger/internal/model"
	"carbonledger/internal/repository"

	"github.com/google/uuid"
)

// FootprintService computes breakdowns on demand. Results are never stored:
// every call reflects the entries and factor tables as they are right now.
type FootprintService interface {
	ComputeProduct(ctx context.Context, productID uuid.UUID) (*dto.ProductFootprintResponse, error)
	ComputeContract(ctx context.Context, contractID uuid.UUID) (*dto.ContractFootprintResponse, error)
}

type footprintService struct {
	productRepo  repository.ProductRepository
	contractRepo repository.ContractRepository
	factors      FactorService
}

func NewFootprintService(productRepo repository.ProductRepository, contractRepo repository.ContractRepository, factors FactorService) FootprintService {
	return &footprintService{
		productRepo:  productRepo,
		contractRepo: contractRepo,
		factors:      factors,
	}
}

func (s *footprintService) ComputeProduct(ctx context.Context, productID uuid.UUID) (*dto.ProductFootprintResponse, error) {
	p, err := s.productRepo.FindByIDWithEntries(ctx, productID)
	if err != nil {
		return nil, errors.New("product not found")
	}

	tables, err := s.factors.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	metrics.FootprintCalculations.WithLabelValues("product").Inc()
	resp := productFootprint(p, tables)
	return &resp, nil
}

func (s *footprintService) ComputeContract(ctx context.Context, contractID uuid.UUID) (*dto.ContractFootprintResponse, error) {
	c, err := s.contractRepo.FindByIDWithProducts(ctx, contractID)
	if err != nil {
		return nil, errors.New("contract not found")
	}

	// One snapshot for the whole aggregation; a factor refresh landing
	// mid-request cannot produce a mixed-table result.
	tables, err := s.factors.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	metrics.FootprintCalculations.WithLabelValues("contract").Inc()

	products := make([]dto.ProductFootprintResponse, len(c.Products))
	totals := footprint.Breakdown{}
	for i := range c.Products {
		products[i] = productFootprint(&c.Products[i], tables)
		totals = totals.Add(products[i].Breakdown)
	}

	return &dto.ContractFootprintResponse{
		ContractID:   c.ID,
		ContractName: c.Name,
		Products:     products,
		Totals:       totals,
	}, nil
}

func productFootprint(p *model.Product, tables footprint.Tables) dto.ProductFootprintResponse {
	return dto.ProductFootprintResponse{
		ProductID:   p.ID,
		ProductName: p.Name,
		Year:        p.Year,
		Overridden:  p.OverrideEnabled,
		Breakdown:   footprint.Calculate(p, tables),
	}
}
