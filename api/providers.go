package api

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/doltservices/doltbook/internal/geo"
	"github.com/doltservices/doltbook/internal/repository"
	"github.com/gin-gonic/gin"
)

type ProviderHandler struct {
	providers repository.ProviderRepository
}

type nearbyProviderResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Rating     float64 `json:"rating"`
	DistanceKM float64 `json:"distance_km"`
}

func NewProviderHandler(providers repository.ProviderRepository) *ProviderHandler {
	return &ProviderHandler{providers: providers}
}

func (h *ProviderHandler) Register(router *gin.RouterGroup) {
	router.GET("/providers/nearby", h.nearby)
}

// nearby lists available providers whose service radius covers the given
// point, nearest first.
func (h *ProviderHandler) nearby(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat is required"})
		return
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lon is required"})
		return
	}
	point := geo.Coordinates{Latitude: lat, Longitude: lon}

	providers, err := h.providers.ListAvailable(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	matches := make([]nearbyProviderResponse, 0)
	for _, p := range providers {
		distance := geo.Distance(point, geo.Coordinates{Latitude: p.Latitude, Longitude: p.Longitude})
		if distance <= p.ServiceRadiusKM {
			matches = append(matches, nearbyProviderResponse{
				ID:         p.ID,
				Name:       p.Name,
				Rating:     p.Rating,
				DistanceKM: distance,
			})
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].DistanceKM < matches[j].DistanceKM })

	c.JSON(http.StatusOK, matches)
}
