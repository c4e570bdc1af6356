// backend-go/internal/api/handlers/forecast_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/hacks11/inventory-health/backend-go/internal/domain"
	"github.com/hacks11/inventory-health/backend-go/internal/service"
)

type ForecastHandler struct {
	service *service.ForecastService
}

func NewForecastHandler(service *service.ForecastService) *ForecastHandler {
	return &ForecastHandler{service: service}
}

// PredictInventory handles POST /predict/inventory
func (h *ForecastHandler) PredictInventory(c *gin.Context) {
	var req domain.PredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.PredictInventory(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Optimize handles POST /analytics/optimization/:sku_id
func (h *ForecastHandler) Optimize(c *gin.Context) {
	skuID := c.Param("sku_id")

	var req domain.OptimizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.service.Optimize(c.Request.Context(), skuID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListSKUs handles GET /skus
func (h *ForecastHandler) ListSKUs(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(c, http.StatusBadRequest, "invalid limit: must be a positive integer")
			return
		}
		limit = parsed
	}

	infos, err := h.service.ListSKUs(c.Request.Context(), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if infos == nil {
		infos = make([]domain.SKUInfo, 0)
	}

	c.JSON(http.StatusOK, gin.H{
		"skus":  infos,
		"count": len(infos),
	})
}

// Health handles GET /health
func (h *ForecastHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Health(c.Request.Context()))
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	var (
		noData     *domain.NoDataError
		featureErr *domain.FeatureError
		validation *domain.ValidationError
	)

	switch {
	case errors.Is(err, domain.ErrModelsUnavailable):
		respondError(c, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &noData):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.As(err, &featureErr):
		respondError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &validation):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, err.Error())
	}
}

func respondError(c *gin.Context, statusCode int, message string) {
	log.Error().Int("status", statusCode).Msg(message)
	c.JSON(statusCode, gin.H{"error": message})
}
