package handler

import (
	"net/http"

	"carbonledger/internal/apierror"
	"carbonledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

// Get godoc
// @Summary Report status
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report UUID"
// @Success 200 {object} dto.ReportResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/reports/{id} [get]
func (h *ReportsHandler) Get(c *gin.Context) {
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

// DownloadPDF godoc
// @Summary Download a finished report PDF
// @Tags reports
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Report UUID"
// @Success 200 {file} binary
// @Failure 404 {object} apierror.APIError
// @Router /v1/reports/{id}/pdf [get]
func (h *ReportsHandler) DownloadPDF(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	path, err := h.svc.PDFPath(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.FileAttachment(path, "report_"+id.String()+".pdf")
}
