package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/you/staysvc/domain"
	"github.com/you/staysvc/internal/http/middleware"
)

// BookingHandlers handles reservation requests
type BookingHandlers struct {
	reservationSvc domain.ReservationService
	exporter       domain.BookingExporter
}

// NewBookingHandlers creates new booking handlers. exporter supplies the download metadata of exports.
func NewBookingHandlers(reservationSvc domain.ReservationService, exporter domain.BookingExporter) *BookingHandlers {
	return &BookingHandlers{reservationSvc: reservationSvc, exporter: exporter}
}

// BookingRequest is the body of a reservation. GuestCount is accepted as an alias of Guests.
type BookingRequest struct {
	ListingID  string `json:"listingId" binding:"required"`
	CheckIn    string `json:"checkIn"`
	CheckOut   string `json:"checkOut"`
	Guests     *int   `json:"guests"`
	GuestCount *int   `json:"guestCount"`
}

// Create reserves a listing for the caller
func (h *BookingHandlers) Create(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		respondError(c, domain.ErrUnauthenticated)
		return
	}

	var req BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	checkIn, err := parseDate("checkIn", req.CheckIn)
	if err != nil {
		respondError(c, err)
		return
	}
	checkOut, err := parseDate("checkOut", req.CheckOut)
	if err != nil {
		respondError(c, err)
		return
	}

	guests := 0
	switch {
	case req.Guests != nil:
		guests = *req.Guests
	case req.GuestCount != nil:
		guests = *req.GuestCount
	}

	booking, err := h.reservationSvc.Reserve(c.Request.Context(), identity.AccountID, domain.ReservationRequest{
		ListingID: req.ListingID,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Guests:    guests,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": booking})
}

// MyBookings lists the caller's bookings, newest first
func (h *BookingHandlers) MyBookings(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		respondError(c, domain.ErrUnauthenticated)
		return
	}

	views, err := h.reservationSvc.ListForGuest(c.Request.Context(), identity.AccountID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(views), "data": views})
}

// Export downloads the caller's bookings as a document
func (h *BookingHandlers) Export(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		respondError(c, domain.ErrUnauthenticated)
		return
	}
	if h.exporter == nil {
		respondError(c, fmt.Errorf("%w: booking export is not configured", domain.ErrUnavailable))
		return
	}

	// buffered so a failure can still be reported as JSON
	var buf bytes.Buffer
	if err := h.reservationSvc.ExportForGuest(c.Request.Context(), identity.AccountID, &buf); err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="bookings.%s"`, h.exporter.FileExtension()))
	c.Data(http.StatusOK, h.exporter.ContentType(), buf.Bytes())
}
