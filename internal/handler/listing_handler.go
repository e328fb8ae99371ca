package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/William19D/rv-parks-for-sale-sub001/internal/filter"
	"github.com/William19D/rv-parks-for-sale-sub001/internal/middleware"
	"github.com/William19D/rv-parks-for-sale-sub001/internal/model"
	"github.com/William19D/rv-parks-for-sale-sub001/internal/service"
)

// ListingHandler exposes the public browse endpoints and the broker CRUD
// endpoints.
type ListingHandler struct {
	Svc *service.ListingService
	Log *logrus.Entry
}

func (h *ListingHandler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("/listings", h.Search)
	rg.GET("/listings/:id", h.GetByID)
}

func (h *ListingHandler) RegisterProtected(rg *gin.RouterGroup) {
	rg.POST("/listings", h.Create)
	rg.PUT("/listings/:id", h.Update)
	rg.DELETE("/listings/:id", h.Delete)
	rg.GET("/my/listings", h.MyListings)
}

// GET /api/listings?search=...&min_price=...&states=TX,CO&sort_by=price&...
func (h *ListingHandler) Search(c *gin.Context) {
	cfg, err := filter.FromQuery(c.Request.URL.Query())
	if err != nil {
		writeError(c, err)
		return
	}

	res := h.Svc.Search(c.Request.Context(), cfg)
	h.Log.WithFields(logrus.Fields{
		"source":  res.Source.String(),
		"results": len(res.Listings),
	}).Debug("listing search served")

	c.JSON(http.StatusOK, gin.H{
		"listings": res.Listings,
		"source":   res.Source.String(),
	})
}

// GET /api/listings/:id
func (h *ListingHandler) GetByID(c *gin.Context) {
	listing, err := h.Svc.Get(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// ListingRequestDTO carries the content fields a broker may set. Status is
// deliberately absent: moderation owns it.
type ListingRequestDTO struct {
	Title         string   `json:"title" binding:"required"`
	Description   string   `json:"description" binding:"required"`
	PropertyType  string   `json:"property_type" binding:"required"`
	Amenities     []string `json:"amenities"`
	Address       string   `json:"address"`
	City          string   `json:"city" binding:"required"`
	State         string   `json:"state" binding:"required"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	Price         float64  `json:"price" binding:"required"`
	NumSites      int      `json:"num_sites" binding:"required"`
	OccupancyRate float64  `json:"occupancy_rate"`
	AnnualRevenue float64  `json:"annual_revenue"`
	CapRate       float64  `json:"cap_rate"`
	Featured      bool     `json:"featured"`
}

func (dto *ListingRequestDTO) toModel() *model.Listing {
	return &model.Listing{
		Title:         dto.Title,
		Description:   dto.Description,
		PropertyType:  dto.PropertyType,
		Amenities:     pq.StringArray(dto.Amenities),
		Address:       dto.Address,
		City:          dto.City,
		State:         dto.State,
		Latitude:      dto.Latitude,
		Longitude:     dto.Longitude,
		Price:         dto.Price,
		NumSites:      dto.NumSites,
		OccupancyRate: dto.OccupancyRate,
		AnnualRevenue: dto.AnnualRevenue,
		CapRate:       dto.CapRate,
		Featured:      dto.Featured,
	}
}

// POST /api/listings
func (h *ListingHandler) Create(c *gin.Context) {
	var req ListingRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	listing, err := h.Svc.Create(c.Request.Context(), middleware.ActorFrom(c), req.toModel())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, listing)
}

// PUT /api/listings/:id
func (h *ListingHandler) Update(c *gin.Context) {
	var req ListingRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	listing, err := h.Svc.Update(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req.toModel())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// DELETE /api/listings/:id
func (h *ListingHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.ActorFrom(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// GET /api/my/listings
func (h *ListingHandler) MyListings(c *gin.Context) {
	listings, err := h.Svc.MyListings(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if listings == nil {
		listings = []model.Listing{}
	}
	c.JSON(http.StatusOK, listings)
}
