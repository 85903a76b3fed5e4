package service

import (
	"context"
	"encoding/json"
	"time"

	"carbonledger/internal/dto"
	"carbonledger/internal/footprint"
	"carbonledger/internal/infra"
	"carbonledger/internal/metrics"
	"carbonledger/internal/model"
	"carbonledger/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const materialFactorCacheKey = "factors:materials"
const factorCacheTTL = time.Hour

// FactorService serves the emission-factor reference tables and runs the
// remote catalog refresh. Reads are redis-cached; the cache is busted when a
// refresh lands a new table.
type FactorService interface {
	ListMaterialFactors(ctx context.Context) ([]dto.MaterialFactorResponse, error)
	ListTransportFactors(ctx context.Context) ([]dto.TransportFactorResponse, error)
	ListElectricityFactors(ctx context.Context) ([]dto.ElectricityFactorResponse, error)

	// Snapshot loads all three tables into the immutable form the footprint
	// calculator consumes.
	Snapshot(ctx context.Context) (footprint.Tables, error)

	// Refresh replaces the material factor table from the remote source. The
	// outcome — success or failure — is always recorded in the audit log and
	// reported in the response; a failed fetch never touches the table.
	Refresh(ctx context.Context) (*dto.RefreshResponse, error)
	RefreshLogs(ctx context.Context, limit int) ([]dto.RefreshLogResponse, error)

	// CircuitState reports the factor-source breaker state for health checks.
	CircuitState() string
}

type factorService struct {
	repo   repository.FactorRepository
	source infra.FactorSource
	cb     *infra.CircuitBreaker
	rdb    *redis.Client
}

func NewFactorService(repo repository.FactorRepository, source infra.FactorSource, cb *infra.CircuitBreaker, rdb *redis.Client) FactorService {
	return &factorService{repo: repo, source: source, cb: cb, rdb: rdb}
}

func (s *factorService) ListMaterialFactors(ctx context.Context) ([]dto.MaterialFactorResponse, error) {
	// Cache first — material factors are read on every catalog picker load.
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, materialFactorCacheKey).Bytes(); err == nil {
			var resp []dto.MaterialFactorResponse
			if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
				return resp, nil
			}
		}
	}

	factors, err := s.repo.ListMaterialFactors(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.MaterialFactorResponse, len(factors))
	for i, f := range factors {
		resp[i] = dto.MaterialFactorResponse{
			ID:         f.ID,
			Name:       f.Name,
			Factor:     f.Factor,
			WeightUnit: f.WeightUnit,
			FactorUnit: f.FactorUnit,
			Source:     f.Source,
		}
	}

	if s.rdb != nil {
		if b, jsonErr := json.Marshal(resp); jsonErr == nil {
			_ = s.rdb.Set(context.Background(), materialFactorCacheKey, b, factorCacheTTL).Err()
		}
	}
	return resp, nil
}

func (s *factorService) ListTransportFactors(ctx context.Context) ([]dto.TransportFactorResponse, error) {
	factors, err := s.repo.ListTransportFactors(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.TransportFactorResponse, len(factors))
	for i, f := range factors {
		resp[i] = dto.TransportFactorResponse{ID: f.ID, Name: f.Name, Factor: f.Factor}
	}
	return resp, nil
}

func (s *factorService) ListElectricityFactors(ctx context.Context) ([]dto.ElectricityFactorResponse, error) {
	factors, err := s.repo.ListElectricityFactors(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ElectricityFactorResponse, len(factors))
	for i, f := range factors {
		resp[i] = dto.ElectricityFactorResponse{Year: f.Year, Factor: f.Factor}
	}
	return resp, nil
}

func (s *factorService) Snapshot(ctx context.Context) (footprint.Tables, error) {
	materials, err := s.repo.ListMaterialFactors(ctx)
	if err != nil {
		return footprint.Tables{}, err
	}
	transports, err := s.repo.ListTransportFactors(ctx)
	if err != nil {
		return footprint.Tables{}, err
	}
	electricity, err := s.repo.ListElectricityFactors(ctx)
	if err != nil {
		return footprint.Tables{}, err
	}
	return footprint.NewTables(materials, transports, electricity), nil
}

func (s *factorService) Refresh(ctx context.Context) (*dto.RefreshResponse, error) {
	var result *infra.FetchResult

	err := s.cb.Execute(func() error {
		var fetchErr error
		result, fetchErr = s.source.FetchMaterialFactors(ctx)
		return fetchErr
	})
	if err != nil {
		// Fetch failed or breaker open — current table stays in place.
		metrics.FactorRefreshes.WithLabelValues("failed").Inc()
		msg := err.Error()
		log.Warn().Err(err).Str("source", s.source.URL()).Msg("factor refresh failed, keeping current table")
		s.logRefresh(ctx, "failed", 0, 0, &msg)
		return &dto.RefreshResponse{Status: "failed", Error: &msg}, nil
	}

	if err := s.repo.ReplaceMaterialFactors(ctx, result.Factors); err != nil {
		metrics.FactorRefreshes.WithLabelValues("failed").Inc()
		msg := err.Error()
		log.Error().Err(err).Msg("factor refresh failed to install new table")
		s.logRefresh(ctx, "failed", 0, result.Skipped, &msg)
		return &dto.RefreshResponse{Status: "failed", RowsSkipped: result.Skipped, Error: &msg}, nil
	}

	if s.rdb != nil {
		_ = s.rdb.Del(ctx, materialFactorCacheKey).Err()
	}

	metrics.FactorRefreshes.WithLabelValues("success").Inc()
	log.Info().
		Int("rows_loaded", len(result.Factors)).
		Int("rows_skipped", result.Skipped).
		Str("source", s.source.URL()).
		Msg("material factor table refreshed")
	s.logRefresh(ctx, "success", len(result.Factors), result.Skipped, nil)

	return &dto.RefreshResponse{
		Status:      "success",
		RowsLoaded:  len(result.Factors),
		RowsSkipped: result.Skipped,
	}, nil
}

func (s *factorService) logRefresh(ctx context.Context, status string, loaded, skipped int, errMsg *string) {
	entry := &model.FactorRefreshLog{
		SourceURL:   s.source.URL(),
		Status:      status,
		RowsLoaded:  loaded,
		RowsSkipped: skipped,
		Error:       errMsg,
	}
	if err := s.repo.CreateRefreshLog(ctx, entry); err != nil {
		log.Error().Err(err).Msg("failed to write factor refresh log")
	}
}

func (s *factorService) RefreshLogs(ctx context.Context, limit int) ([]dto.RefreshLogResponse, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	logs, err := s.repo.ListRefreshLogs(ctx, limit)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.RefreshLogResponse, len(logs))
	for i, l := range logs {
		resp[i] = dto.RefreshLogResponse{
			SourceURL:   l.SourceURL,
			Status:      l.Status,
			RowsLoaded:  l.RowsLoaded,
			RowsSkipped: l.RowsSkipped,
			Error:       l.Error,
			CreatedAt:   l.CreatedAt,
		}
	}
	return resp, nil
}

func (s *factorService) CircuitState() string {
	return s.cb.State().String()
}
