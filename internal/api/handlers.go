package api

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"realestate/server/internal/listings"
	"realestate/server/internal/models"
	"realestate/server/internal/sales"
	"realestate/server/internal/tours"
)

type Handler struct {
	listings *listings.Service
	sales    *sales.Service
	tours    *tours.Service
	logger   *logrus.Logger
}

type MunicipalityRequest struct {
	Name        string          `json:"name" binding:"required"`
	PricePerSqm decimal.Decimal `json:"price_per_sqm"`
}

type AmenityRequest struct {
	Name     string                 `json:"name" binding:"required"`
	Category models.AmenityCategory `json:"amenity_type" binding:"required"`
	Price    decimal.Decimal        `json:"price"`
}

type PropertyRequest struct {
	Name             string             `json:"name" binding:"required"`
	Description      string             `json:"description"`
	Address          string             `json:"address"`
	MunicipalityID   uint               `json:"municipality_id" binding:"required"`
	AgentID          *uint              `json:"agent_id"`
	Size             int                `json:"size"`
	NumBedrooms      int                `json:"num_bedrooms"`
	NumBathrooms     int                `json:"num_bathrooms"`
	Price            *decimal.Decimal   `json:"price"`
	Type             models.ListingType `json:"type"`
	AvailableForTour bool               `json:"is_available_for_tour"`
	Amenities        []AmenityRequest   `json:"amenities"`
}

type SaleRequest struct {
	PropertyID uint             `json:"property_id" binding:"required"`
	FinalPrice *decimal.Decimal `json:"final_price"`
	BuyerID    *uint            `json:"buyer_id"`
}

type ResolveRequest struct {
	Decision   models.RequestStatus `json:"decision" binding:"required"`
	AdminNotes string               `json:"admin_notes"`
}

type TourRequest struct {
	AgentID   *uint     `json:"agent_id"`
	BuyerID   *uint     `json:"buyer_id"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

type TourUpdateRequest struct {
	PropertyID *uint              `json:"property_id"`
	AgentID    *uint              `json:"agent_id"`
	ClearAgent bool               `json:"clear_agent"`
	BuyerID    *uint              `json:"buyer_id"`
	StartTime  *time.Time         `json:"start_time"`
	EndTime    *time.Time         `json:"end_time"`
	Status     *models.TourStatus `json:"status"`
}

func NewHandler(listingService *listings.Service, saleService *sales.Service, tourService *tours.Service, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		listings: listingService,
		sales:    saleService,
		tours:    tourService,
		logger:   logger,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) CreateMunicipality(c *gin.Context) {
	var req MunicipalityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	municipality, err := h.listings.CreateMunicipality(c.Request.Context(), actorFrom(c), listings.MunicipalityInput{
		Name:        req.Name,
		PricePerSqm: req.PricePerSqm,
	})
	if err != nil {
		h.fail(c, err, "create municipality")
		return
	}
	c.JSON(http.StatusCreated, municipality)
}

func (h *Handler) CreateProperty(c *gin.Context) {
	var req PropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	input := listings.PropertyInput{
		Name:             req.Name,
		Description:      req.Description,
		Address:          req.Address,
		MunicipalityID:   req.MunicipalityID,
		AgentID:          req.AgentID,
		Size:             req.Size,
		NumBedrooms:      req.NumBedrooms,
		NumBathrooms:     req.NumBathrooms,
		Price:            req.Price,
		Type:             req.Type,
		AvailableForTour: req.AvailableForTour,
	}
	for _, a := range req.Amenities {
		input.Amenities = append(input.Amenities, listings.AmenityInput{Name: a.Name, Category: a.Category, Price: a.Price})
	}

	property, err := h.listings.CreateProperty(c.Request.Context(), actorFrom(c), input)
	if err != nil {
		h.fail(c, err, "create property")
		return
	}
	c.JSON(http.StatusCreated, property)
}

func (h *Handler) GetProperty(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	property, err := h.listings.GetProperty(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "get property")
		return
	}
	c.JSON(http.StatusOK, property)
}

// GetPrice returns the current reference price without storing it
func (h *Handler) GetPrice(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	price, err := h.listings.RecalculatePrice(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "calculate price")
		return
	}
	c.JSON(http.StatusOK, gin.H{"property_id": id, "total_price": price})
}

func (h *Handler) AddAmenity(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req AmenityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	amenity, err := h.listings.AddAmenity(c.Request.Context(), actorFrom(c), id, listings.AmenityInput{
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
	})
	if err != nil {
		h.fail(c, err, "add amenity")
		return
	}
	c.JSON(http.StatusCreated, amenity)
}

// SubmitSale answers 201 with the sale when it completes and 202 with the
// pending request when it needs review
func (h *Handler) SubmitSale(c *gin.Context) {
	var req SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	submission, err := h.sales.Submit(c.Request.Context(), actorFrom(c), sales.SubmitSaleInput{
		PropertyID: req.PropertyID,
		FinalPrice: req.FinalPrice,
		BuyerID:    req.BuyerID,
	})
	if err != nil {
		h.fail(c, err, "submit sale")
		return
	}

	if submission.Pending != nil {
		c.JSON(http.StatusAccepted, submission.Pending)
		return
	}
	c.JSON(http.StatusCreated, submission.Sale)
}

func (h *Handler) ListSales(c *gin.Context) {
	list, err := h.sales.ListSales(c.Request.Context(), actorFrom(c))
	if err != nil {
		h.fail(c, err, "list sales")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetSale(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	sale, err := h.sales.GetSale(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		h.fail(c, err, "get sale")
		return
	}
	c.JSON(http.StatusOK, sale)
}

func (h *Handler) ListPendingSales(c *gin.Context) {
	requests, err := h.sales.ListPending(c.Request.Context(), actorFrom(c))
	if err != nil {
		h.fail(c, err, "list pending sales")
		return
	}
	c.JSON(http.StatusOK, requests)
}

func (h *Handler) ResolvePendingSale(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	sale, err := h.sales.Resolve(c.Request.Context(), actorFrom(c), id, req.Decision, req.AdminNotes)
	if err != nil {
		h.fail(c, err, "resolve pending sale")
		return
	}
	if sale == nil {
		c.JSON(http.StatusOK, gin.H{"request_id": id, "status": req.Decision})
		return
	}
	c.JSON(http.StatusOK, sale)
}

func (h *Handler) ListCommissions(c *gin.Context) {
	commissions, err := h.sales.ListCommissions(c.Request.Context(), actorFrom(c))
	if err != nil {
		h.fail(c, err, "list commissions")
		return
	}
	c.JSON(http.StatusOK, commissions)
}

func (h *Handler) CreateTour(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req TourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	tour, err := h.tours.Create(c.Request.Context(), actorFrom(c), tours.CreateTourInput{
		PropertyID: id,
		AgentID:    req.AgentID,
		BuyerID:    req.BuyerID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	})
	if err != nil {
		h.fail(c, err, "create tour")
		return
	}
	c.JSON(http.StatusCreated, tour)
}

// ListTours returns every tour of a property to any authenticated user
func (h *Handler) ListTours(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	list, err := h.tours.ListTours(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "list tours")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) UpdateTour(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req TourUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	tour, err := h.tours.Update(c.Request.Context(), actorFrom(c), id, tours.UpdateTourInput{
		PropertyID: req.PropertyID,
		AgentID:    req.AgentID,
		ClearAgent: req.ClearAgent,
		BuyerID:    req.BuyerID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Status:     req.Status,
	})
	if err != nil {
		h.fail(c, err, "update tour")
		return
	}
	c.JSON(http.StatusOK, tour)
}

func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, fmt.Errorf("invalid id %q", c.Param("id")))
		return 0, false
	}
	return uint(id), true
}
