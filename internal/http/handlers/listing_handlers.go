package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/you/staysvc/domain"
	"github.com/you/staysvc/internal/http/middleware"
)

// maxImageSize bounds a single uploaded listing image
const maxImageSize = 10 << 20

// ListingHandlers handles catalog requests
type ListingHandlers struct {
	catalogSvc     domain.CatalogService
	reservationSvc domain.ReservationService
}

// NewListingHandlers creates new listing handlers
func NewListingHandlers(catalogSvc domain.CatalogService, reservationSvc domain.ReservationService) *ListingHandlers {
	return &ListingHandlers{catalogSvc: catalogSvc, reservationSvc: reservationSvc}
}

// ListingRequest is the body of a listing creation
type ListingRequest struct {
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	PropertyType string          `json:"propertyType"`
	Price        float64         `json:"price"`
	Location     domain.Location `json:"location"`
	Images       []domain.Image  `json:"images"`
	Amenities    []string        `json:"amenities"`
	Capacity     domain.Capacity `json:"capacity"`
}

// ListingPatchRequest is the body of a listing update; absent fields are left untouched
type ListingPatchRequest struct {
	Title        *string  `json:"title"`
	Description  *string  `json:"description"`
	PropertyType *string  `json:"propertyType"`
	Price        *float64 `json:"price"`
	Location     *struct {
		City    *string `json:"city"`
		Country *string `json:"country"`
	} `json:"location"`
	Images    *[]domain.Image  `json:"images"`
	Amenities *[]string        `json:"amenities"`
	Capacity  *domain.Capacity `json:"capacity"`
}

func (r ListingPatchRequest) patch() domain.ListingPatch {
	p := domain.ListingPatch{
		Title:        r.Title,
		Description:  r.Description,
		PropertyType: r.PropertyType,
		Price:        r.Price,
		Images:       r.Images,
		Amenities:    r.Amenities,
		Capacity:     r.Capacity,
	}
	if r.Location != nil {
		p.City = r.Location.City
		p.Country = r.Location.Country
	}
	return p
}

// ReviewRequest is the body of a review submission
type ReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// List handles catalog search
func (h *ListingHandlers) List(c *gin.Context) {
	filter := domain.ListingFilter{
		Text: strings.TrimSpace(c.Query("search")),
		City: strings.TrimSpace(c.Query("city")),
	}

	var err error
	if filter.MinPrice, err = priceParam(c, "minPrice"); err != nil {
		respondError(c, err)
		return
	}
	if filter.MaxPrice, err = priceParam(c, "maxPrice"); err != nil {
		respondError(c, err)
		return
	}

	listings, err := h.catalogSvc.Search(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(listings), "data": listings})
}

func priceParam(c *gin.Context, name string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, domain.NewValidationError("%s must be a number", name)
	}
	return &v, nil
}

// Get returns a listing with its host and review authors
func (h *ListingHandlers) Get(c *gin.Context) {
	detail, err := h.catalogSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": detail})
}

// Quote prices a stay without booking it
func (h *ListingHandlers) Quote(c *gin.Context) {
	checkIn, err := parseDate("checkIn", c.Query("checkIn"))
	if err != nil {
		respondError(c, err)
		return
	}
	checkOut, err := parseDate("checkOut", c.Query("checkOut"))
	if err != nil {
		respondError(c, err)
		return
	}

	quote, err := h.reservationSvc.Quote(c.Request.Context(), c.Param("id"), checkIn, checkOut)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": quote})
}

// Create publishes a new listing owned by the caller
func (h *ListingHandlers) Create(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		respondError(c, domain.ErrUnauthenticated)
		return
	}

	var req ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	listing, err := h.catalogSvc.Create(c.Request.Context(), identity.AccountID, domain.ListingInput{
		Title:        req.Title,
		Description:  req.Description,
		PropertyType: req.PropertyType,
		Price:        req.Price,
		Location:     req.Location,
		Images:       req.Images,
		Amenities:    req.Amenities,
		Capacity:     req.Capacity,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": listing})
}

// Update applies a partial update to a listing owned by the caller
func (h *ListingHandlers) Update(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		respondError(c, domain.ErrUnauthenticated)
		return
	}

	var req ListingPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	listing, err := h.catalogSvc.Update(c.Request.Context(), identity.AccountID, c.Param("id"), req.patch())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": listing})
}

// Delete removes a listing owned by the caller
func (h *ListingHandlers) Delete(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		respondError(c, domain.ErrUnauthenticated)
		return
	}

	if err := h.catalogSvc.Delete(c.Request.Context(), identity.AccountID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Listing removed"}})
}

// AddReview records a review by the caller
func (h *ListingHandlers) AddReview(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		respondError(c, domain.ErrUnauthenticated)
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	detail, err := h.catalogSvc.AddReview(c.Request.Context(), identity.AccountID, c.Param("id"), req.Rating, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": detail})
}

// AttachImage uploads the multipart "image" file and appends it to the listing
func (h *ListingHandlers) AttachImage(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		respondError(c, domain.ErrUnauthenticated)
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		respondError(c, domain.NewValidationError("image file is required"))
		return
	}
	if file.Size > maxImageSize {
		respondError(c, domain.NewValidationError("image exceeds %d bytes", maxImageSize))
		return
	}

	body, err := file.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer body.Close()

	listing, err := h.catalogSvc.AttachImage(c.Request.Context(), identity.AccountID, c.Param("id"), domain.ImageUpload{
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Size:        file.Size,
		Body:        body,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": listing})
}
