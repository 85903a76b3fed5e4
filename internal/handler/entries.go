package handler

import (
	"net/http"

	"carbonledger/internal/apierror"
	"carbonledger/internal/dto"
	"carbonledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EntriesHandler serves the material and transport entry routes nested under
// /v1/products/:id.
type EntriesHandler struct{ svc service.EntryService }

func NewEntriesHandler(svc service.EntryService) *EntriesHandler {
	return &EntriesHandler{svc: svc}
}

// entryIDs parses the product and entry path parameters.
func entryIDs(c *gin.Context) (productID, entryID uuid.UUID, ok bool) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return productID, entryID, false
	}
	entryID, err = uuid.Parse(c.Param("entryID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid entry id"))
		return productID, entryID, false
	}
	return productID, entryID, true
}

// ── Material entries ─────────────────────────────────────────────────────────

// CreateMaterial godoc
// @Summary Add a material line to a product
// @Tags entries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product UUID"
// @Param body body dto.CreateMaterialEntryRequest true "Material line"
// @Success 201 {object} dto.MaterialEntryResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/products/{id}/materials [post]
func (h *EntriesHandler) CreateMaterial(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.CreateMaterialEntryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateMaterial(c.Request.Context(), productID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// UpdateMaterial godoc
// @Summary Update a material line
// @Tags entries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product UUID"
// @Param entryID path string true "Material entry UUID"
// @Param body body dto.UpdateMaterialEntryRequest true "Fields to change"
// @Success 200 {object} dto.MaterialEntryResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/products/{id}/materials/{entryID} [put]
func (h *EntriesHandler) UpdateMaterial(c *gin.Context) {
	productID, entryID, ok := entryIDs(c)
	if !ok {
		return
	}
	var req dto.UpdateMaterialEntryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateMaterial(c.Request.Context(), productID, entryID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteMaterial godoc
// @Summary Delete a material line
// @Description Transport legs referencing the material are deleted with it.
// @Tags entries
// @Security BearerAuth
// @Param id path string true "Product UUID"
// @Param entryID path string true "Material entry UUID"
// @Success 204
// @Failure 404 {object} apierror.APIError
// @Router /v1/products/{id}/materials/{entryID} [delete]
func (h *EntriesHandler) DeleteMaterial(c *gin.Context) {
	productID, entryID, ok := entryIDs(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteMaterial(c.Request.Context(), productID, entryID); err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Transport entries ────────────────────────────────────────────────────────

// CreateTransport godoc
// @Summary Add an upstream transport leg to a product
// @Tags entries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product UUID"
// @Param body body dto.CreateTransportEntryRequest true "Transport leg"
// @Success 201 {object} dto.TransportEntryResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/products/{id}/transports [post]
func (h *EntriesHandler) CreateTransport(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.CreateTransportEntryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateTransport(c.Request.Context(), productID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// UpdateTransport godoc
// @Summary Update a transport leg
// @Tags entries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product UUID"
// @Param entryID path string true "Transport entry UUID"
// @Param body body dto.UpdateTransportEntryRequest true "Fields to change"
// @Success 200 {object} dto.TransportEntryResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/products/{id}/transports/{entryID} [put]
func (h *EntriesHandler) UpdateTransport(c *gin.Context) {
	productID, entryID, ok := entryIDs(c)
	if !ok {
		return
	}
	var req dto.UpdateTransportEntryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateTransport(c.Request.Context(), productID, entryID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteTransport godoc
// @Summary Delete a transport leg
// @Tags entries
// @Security BearerAuth
// @Param id path string true "Product UUID"
// @Param entryID path string true "Transport entry UUID"
// @Success 204
// @Failure 404 {object} apierror.APIError
// @Router /v1/products/{id}/transports/{entryID} [delete]
func (h *EntriesHandler) DeleteTransport(c *gin.Context) {
	productID, entryID, ok := entryIDs(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteTransport(c.Request.Context(), productID, entryID); err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}
