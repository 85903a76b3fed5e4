package handler

import (
	"fmt"
	"net/http"
	"time"

	"carbonledger/internal/apierror"
	"carbonledger/internal/dto"
	"carbonledger/internal/infra"
	"carbonledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ContractsHandler struct {
	svc        service.ContractService
	footprints service.FootprintService
	reports    service.ReportService
}

func NewContractsHandler(svc service.ContractService, footprints service.FootprintService, reports service.ReportService) *ContractsHandler {
	return &ContractsHandler{svc: svc, footprints: footprints, reports: reports}
}

// Create godoc
// @Summary Create a contract
// @Tags contracts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateContractRequest true "Contract data"
// @Success 201 {object} dto.ContractResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/contracts [post]
func (h *ContractsHandler) Create(c *gin.Context) {
	var req dto.CreateContractRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary List contracts
// @Tags contracts
// @Produce json
// @Security BearerAuth
// @Param name   query string false "Filter by name (substring)"
// @Param active query string false "true (default) | false | all"
// @Param page   query int    false "Page (default 1)"
// @Param limit  query int    false "Rows per page (default 20)"
// @Success 200 {object} dto.ContractListResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/contracts [get]
func (h *ContractsHandler) List(c *gin.Context) {
	var filter dto.ContractFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list contracts"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary Get a contract
// @Tags contracts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Contract UUID"
// @Success 200 {object} dto.ContractResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/contracts/{id} [get]
func (h *ContractsHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary Update a contract
// @Tags contracts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Contract UUID"
// @Param body body dto.UpdateContractRequest true "Fields to change"
// @Success 200 {object} dto.ContractResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/contracts/{id} [put]
func (h *ContractsHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.UpdateContractRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Deactivate godoc
// @Summary Deactivate a contract (soft delete)
// @Tags contracts
// @Security BearerAuth
// @Param id path string true "Contract UUID"
// @Success 204
// @Failure 404 {object} apierror.APIError
// @Router /v1/contracts/{id} [delete]
func (h *ContractsHandler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	if err := h.svc.Deactivate(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// Reactivate godoc
// @Summary Reactivate a contract
// @Tags contracts
// @Security BearerAuth
// @Param id path string true "Contract UUID"
// @Success 204
// @Failure 404 {object} apierror.APIError
// @Router /v1/contracts/{id}/reactivate [post]
func (h *ContractsHandler) Reactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	if err := h.svc.Reactivate(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// Footprint godoc
// @Summary Contract footprint
// @Description Computes the breakdown of every product under the contract and their sum. Always calculated on demand from current entries and factors.
// @Tags footprint
// @Produce json
// @Security BearerAuth
// @Param id path string true "Contract UUID"
// @Success 200 {object} dto.ContractFootprintResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/contracts/{id}/footprint [get]
func (h *ContractsHandler) Footprint(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.footprints.ComputeContract(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Export godoc
// @Summary Export contract footprint as xlsx
// @Tags footprint
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param id path string true "Contract UUID"
// @Success 200 {file} binary
// @Failure 404 {object} apierror.APIError
// @Router /v1/contracts/{id}/export [get]
func (h *ContractsHandler) Export(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	fp, err := h.footprints.ComputeContract(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}

	data := infra.ContractReportData{
		ContractName: fp.ContractName,
		GeneratedAt:  time.Now().UTC(),
		Totals:       fp.Totals,
	}
	for _, p := range fp.Products {
		data.Rows = append(data.Rows, infra.ReportRow{
			Name:       p.ProductName,
			Year:       p.Year,
			Overridden: p.Overridden,
			Breakdown:  p.Breakdown,
		})
	}

	file, err := infra.BuildContractWorkbook(data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to build workbook"))
		return
	}

	fileName := fmt.Sprintf("footprint_%s.xlsx", id)
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK, xlsxContentType, file)
}

// CreateReport godoc
// @Summary Request an async PDF report for a contract
// @Description Creates a pending report row and enqueues the generation job. Poll the report endpoint for status; the PDF is emailed when a recipient is given.
// @Tags reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Contract UUID"
// @Param body body dto.CreateReportRequest true "Report options"
// @Success 202 {object} dto.ReportResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/contracts/{id}/report [post]
func (h *ContractsHandler) CreateReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.CreateReportRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.reports.Create(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusAccepted, resp)
}

// ListReports godoc
// @Summary List reports requested for a contract
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Contract UUID"
// @Success 200 {array} dto.ReportResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/contracts/{id}/reports [get]
func (h *ContractsHandler) ListReports(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.reports.ListByContract(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}
