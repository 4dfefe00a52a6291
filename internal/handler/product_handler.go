package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"marketplace/internal/errors"
	"marketplace/internal/model"
	"marketplace/internal/repository"
	"marketplace/internal/service"
)

// ProductHandler handles catalog endpoints.
type ProductHandler struct {
	productService service.ProductService
}

// NewProductHandler creates a new product handler.
func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// ProductRequest represents a product create/update payload.
type ProductRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=1000"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	IsAvailable bool            `json:"is_available"`
}

func parseProductID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid product ID",
			Code:  "INVALID_UUID",
		})
	}
	return id, nil
}

// CreateProduct godoc
// @Summary Create a product owned by the authenticated user
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ProductRequest true "Product data"
// @Success 201 {object} model.Product
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /products [post]
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	creatorID, err := authenticatedUserID(c)
	if err != nil {
		return err
	}

	product, err := h.productService.CreateProduct(c.Request().Context(), creatorID, req.Name, req.Description, req.Price, req.IsAvailable)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusCreated, product)
}

// GetProduct godoc
// @Summary Get product by id
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} model.Product
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /products/{id} [get]
func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := parseProductID(c)
	if err != nil {
		return err
	}
	product, err := h.productService.GetProduct(c.Request().Context(), id)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, product)
}

// UpdateProduct godoc
// @Summary Update a product
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param request body ProductRequest true "Product data"
// @Success 200 {object} model.Product
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /products/{id} [put]
// requireOwnership rejects product mutations by anyone other than the
// creator. Admins may mutate any product.
func (h *ProductHandler) requireOwnership(c echo.Context, productID uuid.UUID) error {
	if authenticatedRole(c) == model.RoleAdmin {
		return nil
	}
	callerID, err := authenticatedUserID(c)
	if err != nil {
		return err
	}
	product, err := h.productService.GetProduct(c.Request().Context(), productID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	if product.CreatorUserID != callerID {
		return echo.NewHTTPError(http.StatusForbidden, "not the product creator")
	}
	return nil
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := parseProductID(c)
	if err != nil {
		return err
	}
	if err := h.requireOwnership(c, id); err != nil {
		return err
	}
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	product, err := h.productService.UpdateProduct(c.Request().Context(), id, req.Name, req.Description, req.Price, req.IsAvailable)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct godoc
// @Summary Soft-delete a product
// @Tags products
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 204
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /products/{id} [delete]
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := parseProductID(c)
	if err != nil {
		return err
	}
	if err := h.requireOwnership(c, id); err != nil {
		return err
	}
	if err := h.productService.DeleteProduct(c.Request().Context(), id); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.NoContent(http.StatusNoContent)
}

// ListUserProducts godoc
// @Summary List a user's non-deleted products
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {array} model.Product
// @Failure 400 {object} errors.ErrorResponse
// @Router /users/{id}/products [get]
func (h *ProductHandler) ListUserProducts(c echo.Context) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}
	products, err := h.productService.ListByCreator(c.Request().Context(), id)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, products)
}

// SearchProducts godoc
// @Summary Search the catalog
// @Tags products
// @Produce json
// @Param name query string false "Name substring"
// @Param minPrice query string false "Minimum price (inclusive)"
// @Param maxPrice query string false "Maximum price (inclusive)"
// @Param page query int false "1-based page number" default(1)
// @Param pageSize query int false "Page size" default(10)
// @Success 200 {array} model.Product
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /products/search [get]
func (h *ProductHandler) SearchProducts(c echo.Context) error {
	q := repository.ProductQuery{
		Name:     c.QueryParam("name"),
		Page:     1,
		PageSize: 10,
	}

	if raw := c.QueryParam("minPrice"); raw != "" {
		min, err := decimal.NewFromString(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
				Error: "invalid minPrice",
				Code:  "INVALID_PRICE_FILTER",
			})
		}
		q.MinPrice = &min
	}
	if raw := c.QueryParam("maxPrice"); raw != "" {
		max, err := decimal.NewFromString(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
				Error: "invalid maxPrice",
				Code:  "INVALID_PRICE_FILTER",
			})
		}
		q.MaxPrice = &max
	}
	if raw := c.QueryParam("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
				Error: "invalid page",
				Code:  "INVALID_PAGINATION",
			})
		}
		q.Page = page
	}
	if raw := c.QueryParam("pageSize"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
				Error: "invalid pageSize",
				Code:  "INVALID_PAGINATION",
			})
		}
		q.PageSize = size
	}

	products, err := h.productService.Search(c.Request().Context(), q)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, products)
}
