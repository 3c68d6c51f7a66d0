package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"warebase/internal/core/apperror"
	"warebase/internal/core/id"
	"warebase/internal/domain/warehouse"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// WarehouseHandler handles warehouse master-data endpoints.
type WarehouseHandler struct {
	*BaseHandler
	service *warehouse.Service
}

// NewWarehouseHandler creates a new warehouse handler.
func NewWarehouseHandler(service *warehouse.Service) *WarehouseHandler {
	return &WarehouseHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// Register mounts warehouse routes on the given group.
func (h *WarehouseHandler) Register(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/active", h.ListActive)
	rg.GET("/active/pageable", h.ListActivePage)
	rg.GET("/search", h.Search)
	rg.GET("/code/:code", h.GetByCode)
	rg.GET("/exists/:code", h.ExistsByCode)
	rg.GET("/by-city/:city", h.ListByCity)
	rg.GET("/by-state/:state", h.ListByState)
	rg.GET("/by-country/:country", h.ListByCountry)
	rg.GET("/:id", h.GetByID)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.PATCH("/:id/soft-delete", h.SoftDelete)
}

// Create handles POST /warehouses.
func (h *WarehouseHandler) Create(c *gin.Context) {
	var dto warehouse.DTO
	if !h.BindJSON(c, &dto) {
		return
	}

	created, err := h.service.Create(c.Request.Context(), &dto)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// GetByID handles GET /warehouses/:id.
func (h *WarehouseHandler) GetByID(c *gin.Context) {
	warehouseID, ok := h.parseID(c)
	if !ok {
		return
	}

	dto, err := h.service.GetByID(c.Request.Context(), warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto)
}

// GetByCode handles GET /warehouses/code/:code.
func (h *WarehouseHandler) GetByCode(c *gin.Context) {
	dto, err := h.service.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto)
}

// List handles GET /warehouses with pagination.
func (h *WarehouseHandler) List(c *gin.Context) {
	page, err := h.service.ListPage(c.Request.Context(), h.pageRequest(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// ListActive handles GET /warehouses/active.
func (h *WarehouseHandler) ListActive(c *gin.Context) {
	list, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// ListActivePage handles GET /warehouses/active/pageable.
func (h *WarehouseHandler) ListActivePage(c *gin.Context) {
	page, err := h.service.ListActivePage(c.Request.Context(), h.pageRequest(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// Update handles PUT /warehouses/:id. Absent fields keep their
// stored values; code is immutable.
func (h *WarehouseHandler) Update(c *gin.Context) {
	warehouseID, ok := h.parseID(c)
	if !ok {
		return
	}

	var dto warehouse.DTO
	if !h.BindJSON(c, &dto) {
		return
	}

	updated, err := h.service.Update(c.Request.Context(), warehouseID, &dto)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /warehouses/:id.
func (h *WarehouseHandler) Delete(c *gin.Context) {
	warehouseID, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), warehouseID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SoftDelete handles PATCH /warehouses/:id/soft-delete.
func (h *WarehouseHandler) SoftDelete(c *gin.Context) {
	warehouseID, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.service.SoftDelete(c.Request.Context(), warehouseID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Search handles GET /warehouses/search. Absent query parameters do
// not constrain the result.
func (h *WarehouseHandler) Search(c *gin.Context) {
	filter := warehouse.SearchFilter{
		Code:    queryPtr(c, "code"),
		Name:    queryPtr(c, "name"),
		City:    queryPtr(c, "city"),
		State:   queryPtr(c, "state"),
		Country: queryPtr(c, "country"),
	}

	if raw, present := c.GetQuery("isActive"); present {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("isActive must be a boolean"))
			return
		}
		filter.IsActive = &active
	}

	page, err := h.service.Search(c.Request.Context(), filter, h.pageRequest(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// ListByCity handles GET /warehouses/by-city/:city.
func (h *WarehouseHandler) ListByCity(c *gin.Context) {
	h.listBy(c, h.service.ListByCity, c.Param("city"))
}

// ListByState handles GET /warehouses/by-state/:state.
func (h *WarehouseHandler) ListByState(c *gin.Context) {
	h.listBy(c, h.service.ListByState, c.Param("state"))
}

// ListByCountry handles GET /warehouses/by-country/:country.
func (h *WarehouseHandler) ListByCountry(c *gin.Context) {
	h.listBy(c, h.service.ListByCountry, c.Param("country"))
}

// ExistsByCode handles GET /warehouses/exists/:code.
func (h *WarehouseHandler) ExistsByCode(c *gin.Context) {
	exists, err := h.service.ExistsByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, exists)
}

// --- Helpers ---

func (h *WarehouseHandler) listBy(
	c *gin.Context,
	fn func(ctx context.Context, value string) ([]*warehouse.DTO, error),
	value string,
) {
	list, err := fn(c.Request.Context(), value)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *WarehouseHandler) parseID(c *gin.Context) (id.ID, bool) {
	parsed, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid warehouse id"))
		return id.Nil(), false
	}
	return parsed, true
}

func (h *WarehouseHandler) pageRequest(c *gin.Context) warehouse.PageRequest {
	req := warehouse.DefaultPageRequest()

	if page := h.ParseIntQuery(c, "page", 0); page > 0 {
		req.Page = page
	}
	if size := h.ParseIntQuery(c, "size", defaultPageSize); size > 0 {
		if size > maxPageSize {
			size = maxPageSize
		}
		req.Size = size
	}
	req.Sort = c.Query("sort")

	return req
}

func queryPtr(c *gin.Context, key string) *string {
	if val, present := c.GetQuery(key); present {
		return &val
	}
	return nil
}
