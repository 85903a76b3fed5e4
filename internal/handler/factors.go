package handler

import (
	"net/http"
	"strconv"

	"carbonledger/internal/apierror"
	"carbonledger/internal/service"

	"github.com/gin-gonic/gin"
)

type FactorsHandler struct{ svc service.FactorService }

func NewFactorsHandler(svc service.FactorService) *FactorsHandler {
	return &FactorsHandler{svc: svc}
}

// ListMaterials godoc
// @Summary Material emission factor catalog
// @Tags factors
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.MaterialFactorResponse
// @Router /v1/factors/materials [get]
func (h *FactorsHandler) ListMaterials(c *gin.Context) {
	resp, err := h.svc.ListMaterialFactors(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list material factors"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListTransports godoc
// @Summary Transport emission factors (kg CO2e per tonne-km)
// @Tags factors
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.TransportFactorResponse
// @Router /v1/factors/transports [get]
func (h *FactorsHandler) ListTransports(c *gin.Context) {
	resp, err := h.svc.ListTransportFactors(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list transport factors"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListElectricity godoc
// @Summary Grid electricity factors by year (kg CO2e per kWh)
// @Tags factors
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.ElectricityFactorResponse
// @Router /v1/factors/electricity [get]
func (h *FactorsHandler) ListElectricity(c *gin.Context) {
	resp, err := h.svc.ListElectricityFactors(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list electricity factors"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Refresh godoc
// @Summary Refresh the material factor catalog from the remote source (admin)
// @Description Downloads the published CSV and swaps the material table on success. A failed fetch keeps the current table; the attempt is always audited.
// @Tags factors
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.RefreshResponse
// @Failure 500 {object} apierror.APIError
// @Router /v1/factors/refresh [post]
func (h *FactorsHandler) Refresh(c *gin.Context) {
	resp, err := h.svc.Refresh(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RefreshLogs godoc
// @Summary Audit history of factor refresh attempts (admin)
// @Tags factors
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Rows (default 20, max 100)"
// @Success 200 {array} dto.RefreshLogResponse
// @Router /v1/factors/refresh-logs [get]
func (h *FactorsHandler) RefreshLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	resp, err := h.svc.RefreshLogs(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list refresh logs"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
