package service_test

import (
	"context"
	"errors"
	"sort"
	"testing"

	"carbonledger/internal/dto"
	"carbonledger/internal/model"
	"carbonledger/internal/repository"
	"carbonledger/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

// ── In-memory ContractRepository stub ────────────────────────────────────────

type stubContractRepo struct {
	contracts map[uuid.UUID]*model.Contract
	// products feeds FindByIDWithProducts and ProductCounts.
	products map[uuid.UUID][]model.Product
}

func newStubContractRepo() *stubContractRepo {
	return &stubContractRepo{
		contracts: make(map[uuid.UUID]*model.Contract),
		products:  make(map[uuid.UUID][]model.Product),
	}
}

func (r *stubContractRepo) seed(name string, active bool) *model.Contract {
	c := &model.Contract{ID: uuid.New(), Name: name, Active: active}
	r.contracts[c.ID] = c
	return c
}

func (r *stubContractRepo) Create(_ context.Context, c *model.Contract) error {
	c.ID = uuid.New()
	r.contracts[c.ID] = c
	return nil
}

func (r *stubContractRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Contract, error) {
	c, ok := r.contracts[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return c, nil
}

func (r *stubContractRepo) FindByIDWithProducts(_ context.Context, id uuid.UUID) (*model.Contract, error) {
	c, ok := r.contracts[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	cloned := *c
	cloned.Products = r.products[id]
	return &cloned, nil
}

func (r *stubContractRepo) List(_ context.Context, filter dto.ContractFilter) ([]model.Contract, int64, error) {
	var all []model.Contract
	for _, c := range r.contracts {
		switch filter.Active {
		case "false":
			if c.Active {
				continue
			}
		case "all":
		default:
			if !c.Active {
				continue
			}
		}
		all = append(all, *c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })

	total := int64(len(all))
	start := (filter.Page - 1) * filter.Limit
	if start > len(all) {
		start = len(all)
	}
	end := start + filter.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *stubContractRepo) ProductCounts(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(ids))
	for _, id := range ids {
		if n := len(r.products[id]); n > 0 {
			counts[id] = int64(n)
		}
	}
	return counts, nil
}

func (r *stubContractRepo) Update(_ context.Context, c *model.Contract) error {
	r.contracts[c.ID] = c
	return nil
}

func (r *stubContractRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	c, ok := r.contracts[id]
	if !ok {
		return errors.New("record not found")
	}
	c.Active = false
	return nil
}

func (r *stubContractRepo) Reactivate(_ context.Context, id uuid.UUID) error {
	c, ok := r.contracts[id]
	if !ok {
		return errors.New("record not found")
	}
	c.Active = true
	return nil
}

var _ repository.ContractRepository = (*stubContractRepo)(nil)

// ── Tests ────────────────────────────────────────────────────────────────────

func TestCreateContract(t *testing.T) {
	repo := newStubContractRepo()
	svc := service.NewContractService(repo)

	resp, err := svc.Create(context.Background(), dto.CreateContractRequest{
		Name:        "Acme Electronics FY26",
		Description: strPtr("Consumer electronics line"),
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, resp.ID)
	assert.True(t, resp.Active)
	assert.Equal(t, 0, resp.ProductCount)
}

func TestGetContract_NotFound(t *testing.T) {
	svc := service.NewContractService(newStubContractRepo())

	_, err := svc.GetByID(context.Background(), uuid.New())
	assert.EqualError(t, err, "contract not found")
}

func TestListContracts_PaginationDefaults(t *testing.T) {
	repo := newStubContractRepo()
	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		repo.seed(name, true)
	}
	svc := service.NewContractService(repo)

	// Zero-value filter falls back to page 1, limit 20
	resp, err := svc.List(context.Background(), dto.ContractFilter{})

	require.NoError(t, err)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 20, resp.Limit)
	assert.Equal(t, int64(3), resp.Total)
	assert.Equal(t, 1, resp.TotalPages)
	assert.Len(t, resp.Data, 3)
}

func TestListContracts_TotalPagesRoundsUp(t *testing.T) {
	repo := newStubContractRepo()
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		repo.seed(name, true)
	}
	svc := service.NewContractService(repo)

	resp, err := svc.List(context.Background(), dto.ContractFilter{Page: 1, Limit: 2})

	require.NoError(t, err)
	assert.Equal(t, int64(5), resp.Total)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Len(t, resp.Data, 2)
}

func TestListContracts_ExcludesInactiveByDefault(t *testing.T) {
	repo := newStubContractRepo()
	repo.seed("Live", true)
	repo.seed("Dead", false)
	svc := service.NewContractService(repo)

	resp, err := svc.List(context.Background(), dto.ContractFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Total)

	all, err := svc.List(context.Background(), dto.ContractFilter{Active: "all"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)
}

func TestUpdateContract_PartialFields(t *testing.T) {
	repo := newStubContractRepo()
	c := repo.seed("Old Name", true)
	svc := service.NewContractService(repo)

	resp, err := svc.Update(context.Background(), c.ID, dto.UpdateContractRequest{
		Name: strPtr("New Name"),
	})

	require.NoError(t, err)
	assert.Equal(t, "New Name", resp.Name)
	assert.True(t, resp.Active, "active flag must survive a name-only update")
}

func TestDeactivateContract_ThenReactivate(t *testing.T) {
	repo := newStubContractRepo()
	c := repo.seed("Cycled", true)
	svc := service.NewContractService(repo)

	require.NoError(t, svc.Deactivate(context.Background(), c.ID))
	assert.False(t, repo.contracts[c.ID].Active)

	require.NoError(t, svc.Reactivate(context.Background(), c.ID))
	assert.True(t, repo.contracts[c.ID].Active)
}

func TestDeactivateContract_NotFound(t *testing.T) {
	svc := service.NewContractService(newStubContractRepo())
	err := svc.Deactivate(context.Background(), uuid.New())
	assert.EqualError(t, err, "contract not found")
}
