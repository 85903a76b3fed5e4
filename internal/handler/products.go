package handler

import (
	"net/http"

	"carbonledger/internal/apierror"
	"carbonledger/internal/dto"
	"carbonledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProductsHandler struct {
	svc        service.ProductService
	footprints service.FootprintService
}

func NewProductsHandler(svc service.ProductService, footprints service.FootprintService) *ProductsHandler {
	return &ProductsHandler{svc: svc, footprints: footprints}
}

// Create godoc
// @Summary Add a product to a contract
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Contract UUID"
// @Param body body dto.CreateProductRequest true "Product data"
// @Success 201 {object} dto.ProductResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/contracts/{id}/products [post]
func (h *ProductsHandler) Create(c *gin.Context) {
	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.CreateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), contractID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListByContract godoc
// @Summary List the products of a contract
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param id path string true "Contract UUID"
// @Success 200 {array} dto.ProductResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/contracts/{id}/products [get]
func (h *ProductsHandler) ListByContract(c *gin.Context) {
	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.svc.ListByContract(c.Request.Context(), contractID)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary Get a product with its entries
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product UUID"
// @Success 200 {object} dto.ProductResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/products/{id} [get]
func (h *ProductsHandler) Get(c *gin.Context) {
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
// @Summary Update a product
// @Description Changes name, year, override, manufacturing or distribution data. Manufacturing and distribution blocks replace wholesale when present.
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product UUID"
// @Param body body dto.UpdateProductRequest true "Fields to change"
// @Success 200 {object} dto.ProductResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/products/{id} [put]
func (h *ProductsHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.UpdateProductRequest
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

// Delete godoc
// @Summary Delete a product and all its entries
// @Tags products
// @Security BearerAuth
// @Param id path string true "Product UUID"
// @Success 204
// @Failure 404 {object} apierror.APIError
// @Router /v1/products/{id} [delete]
func (h *ProductsHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// Footprint godoc
// @Summary Product footprint
// @Description Per-unit breakdown across the four lifecycle stages, computed on demand.
// @Tags footprint
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product UUID"
// @Success 200 {object} dto.ProductFootprintResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/products/{id}/footprint [get]
func (h *ProductsHandler) Footprint(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.footprints.ComputeProduct(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}
