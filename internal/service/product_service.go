package service

import (
	"context"
	"errors"

	"carbonledger/internal/dto"
	"carbonledger/internal/model"
	"carbonledger/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductService manages products under a contract: the stage-C manufacturing
// inputs and stage-D distribution leg live on the product itself; material and
// transport entries are handled by EntryService.
type ProductService interface {
	Create(ctx context.Context, contractID uuid.UUID, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]dto.ProductResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	repo         repository.ProductRepository
	contractRepo repository.ContractRepository
}

func NewProductService(repo repository.ProductRepository, contractRepo repository.ContractRepository) ProductService {
	return &productService{repo: repo, contractRepo: contractRepo}
}

func (s *productService) Create(ctx context.Context, contractID uuid.UUID, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	contract, err := s.contractRepo.FindByID(ctx, contractID)
	if err != nil {
		return nil, errors.New("contract not found")
	}
	if !contract.Active {
		return nil, errors.New("contract is inactive")
	}

	p := &model.Product{
		ContractID:     contractID,
		Name:           req.Name,
		Year:           req.Year,
		AllocationMode: model.AllocationPerUnit,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	resp := productToResponse(p, false)
	return &resp, nil
}

func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByIDWithEntries(ctx, id)
	if err != nil {
		return nil, errors.New("product not found")
	}
	resp := productToResponse(p, true)
	return &resp, nil
}

func (s *productService) ListByContract(ctx context.Context, contractID uuid.UUID) ([]dto.ProductResponse, error) {
	if _, err := s.contractRepo.FindByID(ctx, contractID); err != nil {
		return nil, errors.New("contract not found")
	}
	products, err := s.repo.ListByContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ProductResponse, len(products))
	for i := range products {
		resp[i] = productToResponse(&products[i], false)
	}
	return resp, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("product not found")
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Year != nil {
		p.Year = *req.Year
	}
	if req.OverrideEnabled != nil {
		p.OverrideEnabled = *req.OverrideEnabled
	}
	if req.OverrideTotal != nil {
		p.OverrideTotal = *req.OverrideTotal
	}
	// Enabling the override without a declared value makes the footprint zero,
	// which is almost certainly a client mistake.
	if p.OverrideEnabled && req.OverrideTotal == nil && p.OverrideTotal.IsZero() {
		return nil, errors.New("override_total is required when override_enabled is set")
	}

	if req.Manufacturing != nil {
		p.ElectricityKWh = req.Manufacturing.ElectricityKWh
		p.AllocationMode = req.Manufacturing.AllocationMode
		p.TotalOutput = req.Manufacturing.TotalOutput
	}
	if req.Distribution != nil {
		p.DistributionWeightKg = req.Distribution.WeightKg
		p.DistributionDistanceKm = req.Distribution.DistanceKm
		p.DistributionVehicleID = req.Distribution.VehicleFactorID
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	resp := productToResponse(p, false)
	return &resp, nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return errors.New("product not found")
	}
	return s.repo.Delete(ctx, id)
}

func productToResponse(p *model.Product, withEntries bool) dto.ProductResponse {
	resp := dto.ProductResponse{
		ID:              p.ID,
		ContractID:      p.ContractID,
		Name:            p.Name,
		Year:            p.Year,
		OverrideEnabled: p.OverrideEnabled,
		OverrideTotal:   p.OverrideTotal,
		Manufacturing: dto.ManufacturingResponse{
			ElectricityKWh: p.ElectricityKWh,
			AllocationMode: p.AllocationMode,
			TotalOutput:    p.TotalOutput,
		},
		Distribution: dto.DistributionResponse{
			WeightKg:        p.DistributionWeightKg,
			DistanceKm:      p.DistributionDistanceKm,
			VehicleFactorID: p.DistributionVehicleID,
		},
		CreatedAt: p.CreatedAt,
	}
	if withEntries {
		resp.MaterialEntries = make([]dto.MaterialEntryResponse, len(p.MaterialEntries))
		for i := range p.MaterialEntries {
			resp.MaterialEntries[i] = materialEntryToResponse(&p.MaterialEntries[i])
		}
		resp.TransportEntries = make([]dto.TransportEntryResponse, len(p.TransportEntries))
		for i := range p.TransportEntries {
			resp.TransportEntries[i] = transportEntryToResponse(&p.TransportEntries[i])
		}
	}
	return resp
}

func materialEntryToResponse(e *model.MaterialEntry) dto.MaterialEntryResponse {
	return dto.MaterialEntryResponse{
		ID:               e.ID,
		Name:             e.Name,
		WeightKg:         e.WeightKg,
		MaterialFactorID: e.MaterialFactorID,
		CustomFactor:     e.CustomFactor,
		UseCustomFactor:  e.UseCustomFactor,
		Position:         e.Position,
	}
}

func transportEntryToResponse(e *model.TransportEntry) dto.TransportEntryResponse {
	return dto.TransportEntryResponse{
		ID:                e.ID,
		MaterialEntryID:   e.MaterialEntryID,
		WeightKg:          e.WeightKg,
		DistanceKm:        e.DistanceKm,
		TransportFactorID: e.TransportFactorID,
		Position:          e.Position,
	}
}

// zeroIfNil keeps decimal fields non-null when optional request values are absent.
func zeroIfNil(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
