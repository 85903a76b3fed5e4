package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carbonledger/internal/dto"
	"carbonledger/internal/model"
	"carbonledger/internal/repository"
	"carbonledger/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReportService accepts report requests and exposes their lifecycle. The
// heavy lifting — rendering the PDF and mailing it — happens in the worker
// pool; this service only creates the tracking row and enqueues the job.
type ReportService interface {
	Create(ctx context.Context, contractID uuid.UUID, req dto.CreateReportRequest) (*dto.ReportResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.ReportResponse, error)
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]dto.ReportResponse, error)
	// PDFPath returns the filesystem path of a finished report.
	PDFPath(ctx context.Context, id uuid.UUID) (string, error)
}

type reportService struct {
	repo         repository.ReportRepository
	contractRepo repository.ContractRepository
	dispatcher   *worker.Dispatcher
}

func NewReportService(repo repository.ReportRepository, contractRepo repository.ContractRepository, dispatcher *worker.Dispatcher) ReportService {
	return &reportService{repo: repo, contractRepo: contractRepo, dispatcher: dispatcher}
}

func (s *reportService) Create(ctx context.Context, contractID uuid.UUID, req dto.CreateReportRequest) (*dto.ReportResponse, error) {
	if _, err := s.contractRepo.FindByID(ctx, contractID); err != nil {
		return nil, errors.New("contract not found")
	}

	rpt := &model.Report{
		ContractID: contractID,
		Status:     "pending",
		Recipient:  req.Recipient,
	}
	if err := s.repo.Create(ctx, rpt); err != nil {
		return nil, err
	}

	payload := worker.ReportJobPayload{ReportID: rpt.ID.String()}
	if s.dispatcher != nil {
		if err := s.dispatcher.EnqueueReport(ctx, payload); err != nil {
			// The retry goroutine will pick the row up once next_retry_at passes.
			next := time.Now().Add(30 * time.Second)
			rpt.NextRetryAt = &next
			_ = s.repo.Update(ctx, rpt)
			log.Warn().Err(err).Str("report_id", rpt.ID.String()).Msg("report enqueue failed, scheduled for retry")
		}
	}

	resp := reportToResponse(rpt)
	return &resp, nil
}

func (s *reportService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ReportResponse, error) {
	rpt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("report not found")
	}
	resp := reportToResponse(rpt)
	return &resp, nil
}

func (s *reportService) ListByContract(ctx context.Context, contractID uuid.UUID) ([]dto.ReportResponse, error) {
	if _, err := s.contractRepo.FindByID(ctx, contractID); err != nil {
		return nil, errors.New("contract not found")
	}
	reports, err := s.repo.ListByContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ReportResponse, len(reports))
	for i := range reports {
		resp[i] = reportToResponse(&reports[i])
	}
	return resp, nil
}

func (s *reportService) PDFPath(ctx context.Context, id uuid.UUID) (string, error) {
	rpt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", errors.New("report not found")
	}
	if rpt.PDFPath == nil || *rpt.PDFPath == "" {
		return "", fmt.Errorf("PDF not available, report status is '%s'", rpt.Status)
	}
	return *rpt.PDFPath, nil
}

func reportToResponse(rpt *model.Report) dto.ReportResponse {
	return dto.ReportResponse{
		ID:         rpt.ID,
		ContractID: rpt.ContractID,
		Status:     rpt.Status,
		Recipient:  rpt.Recipient,
		RetryCount: rpt.RetryCount,
		LastError:  rpt.LastError,
		CreatedAt:  rpt.CreatedAt,
	}
}
