package api

import (
	"net/http"

	"github.com/doltservices/doltbook/internal/domain"
	"github.com/doltservices/doltbook/internal/service/catalog"
	"github.com/gin-gonic/gin"
)

type ServiceHandler struct {
	service catalog.CatalogUseCase
}

type serviceResponse struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Category        string   `json:"category"`
	BasePriceCents  int64    `json:"base_price_cents"`
	Currency        string   `json:"currency"`
	DurationMinutes int      `json:"duration_minutes,omitempty"`
	Features        []string `json:"features,omitempty"`
}

func NewServiceHandler(service catalog.CatalogUseCase) *ServiceHandler {
	return &ServiceHandler{service: service}
}

func (h *ServiceHandler) Register(router *gin.RouterGroup) {
	router.GET("/services", h.list)
	router.GET("/services/:id", h.get)
}

func (h *ServiceHandler) list(c *gin.Context) {
	services, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]serviceResponse, len(services))
	for i := range services {
		out[i] = newServiceResponse(&services[i])
	}
	c.JSON(http.StatusOK, out)
}

func (h *ServiceHandler) get(c *gin.Context) {
	found, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newServiceResponse(found))
}

func newServiceResponse(s *domain.Service) serviceResponse {
	return serviceResponse{
		ID:              s.ID,
		Title:           s.Title,
		Description:     s.Description,
		Category:        s.Category,
		BasePriceCents:  s.BasePriceCents,
		Currency:        s.Currency,
		DurationMinutes: s.DurationMinutes,
		Features:        s.Features,
	}
}
