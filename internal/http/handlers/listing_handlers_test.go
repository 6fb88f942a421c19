package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/you/staysvc/domain"
	"github.com/you/staysvc/internal/mocks"
)

func newListingRouter(catalog domain.CatalogService, reservations domain.ReservationService) *gin.Engine {
	h := NewListingHandlers(catalog, reservations)
	r := gin.New()
	r.GET("/api/listings", h.List)
	r.GET("/api/listings/:id", h.Get)
	r.GET("/api/listings/:id/quote", h.Quote)
	r.POST("/api/listings", testGate(), h.Create)
	r.PUT("/api/listings/:id", testGate(), h.Update)
	r.DELETE("/api/listings/:id", testGate(), h.Delete)
	r.POST("/api/listings/:id/reviews", testGate(), h.AddReview)
	r.POST("/api/listings/:id/images", testGate(), h.AttachImage)
	return r
}

func TestListingHandlers_List(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		query          string
		expectedStatus int
		validate       func(t *testing.T, f domain.ListingFilter)
	}{
		{
			name:           "no filters",
			query:          "",
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, f domain.ListingFilter) {
				if f.Text != "" || f.City != "" || f.MinPrice != nil || f.MaxPrice != nil {
					t.Errorf("expected empty filter, got %+v", f)
				}
			},
		},
		{
			name:           "all filters",
			query:          "?search=loft&city=Paris&minPrice=300&maxPrice=400.5",
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, f domain.ListingFilter) {
				if f.Text != "loft" || f.City != "Paris" || *f.MinPrice != 300 || *f.MaxPrice != 400.5 {
					t.Errorf("unexpected filter %+v", f)
				}
			},
		},
		{name: "malformed min price", query: "?minPrice=cheap", expectedStatus: http.StatusBadRequest},
		{name: "malformed max price", query: "?maxPrice=1e", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got domain.ListingFilter
			called := false
			catalog := &mocks.MockCatalogService{SearchFunc: func(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error) {
				got, called = filter, true
				return []domain.Listing{{ID: "l1", Title: "Loft", Price: 320}}, nil
			}}

			rec := doRequest(t, newListingRouter(catalog, &mocks.MockReservationService{}), http.MethodGet, "/api/listings"+tt.query, "", nil)
			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, rec.Code, rec.Body.String())
			}
			if tt.expectedStatus != http.StatusOK {
				if called {
					t.Error("search must not run with malformed parameters")
				}
				if body := decodeBody(t, rec); body["code"] != "VALIDATION_FAILURE" {
					t.Errorf("unexpected body %v", body)
				}
				return
			}
			body := decodeBody(t, rec)
			if body["count"] != float64(1) {
				t.Errorf("expected count 1, got %v", body["count"])
			}
			tt.validate(t, got)
		})
	}
}

func TestListingHandlers_GetAndQuote(t *testing.T) {
	gin.SetMode(gin.TestMode)

	catalog := &mocks.MockCatalogService{GetFunc: func(ctx context.Context, id string) (*domain.ListingDetail, error) {
		if id != "l1" {
			return nil, domain.ErrListingNotFound
		}
		return &domain.ListingDetail{
			Listing: domain.Listing{ID: "l1", Title: "Loft", HostID: "h1"},
			Host:    &domain.AccountView{ID: "h1", Name: "Host"},
		}, nil
	}}
	reservations := &mocks.MockReservationService{QuoteFunc: func(ctx context.Context, listingID string, checkIn, checkOut time.Time) (domain.Quote, error) {
		return domain.ComputeQuote(100, checkIn, checkOut)
	}}
	r := newListingRouter(catalog, reservations)

	rec := doRequest(t, r, http.MethodGet, "/api/listings/l1", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data := decodeBody(t, rec)["data"].(map[string]interface{})
	if data["id"] != "l1" || data["host"].(map[string]interface{})["name"] != "Host" {
		t.Errorf("unexpected detail %v", data)
	}

	if rec := doRequest(t, r, http.MethodGet, "/api/listings/missing", "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}

	rec = doRequest(t, r, http.MethodGet, "/api/listings/l1/quote?checkIn=2024-03-15&checkOut=2024-03-20", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	quote := decodeBody(t, rec)["data"].(map[string]interface{})
	if quote["nights"] != float64(5) || quote["totalPrice"] != float64(500) {
		t.Errorf("unexpected quote %v", quote)
	}

	rec = doRequest(t, r, http.MethodGet, "/api/listings/l1/quote?checkIn=2024-03-20&checkOut=2024-03-15", "", nil)
	if rec.Code != http.StatusBadRequest || decodeBody(t, rec)["code"] != "INVALID_DATE_RANGE" {
		t.Errorf("expected invalid date range, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, r, http.MethodGet, "/api/listings/l1/quote?checkIn=2024-03-20", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing checkOut, got %d", rec.Code)
	}
}

func TestListingHandlers_Create(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var gotHost string
	var gotInput domain.ListingInput
	catalog := &mocks.MockCatalogService{CreateFunc: func(ctx context.Context, hostID string, input domain.ListingInput) (*domain.Listing, error) {
		gotHost, gotInput = hostID, input
		return &domain.Listing{ID: "l1", HostID: hostID, Title: input.Title, Price: input.Price}, nil
	}}
	r := newListingRouter(catalog, &mocks.MockReservationService{})

	body := map[string]interface{}{
		"title":        "Loft",
		"description":  "Bright",
		"propertyType": "apartment",
		"price":        100,
		"location":     map[string]string{"city": "Paris", "country": "France"},
		"images":       []map[string]string{{"url": "https://img/1.jpg"}},
		"amenities":    []string{"wifi"},
		"capacity":     map[string]int{"guests": 2, "bedrooms": 1, "beds": 1, "bathrooms": 1},
	}

	if rec := doRequest(t, r, http.MethodPost, "/api/listings", "", body); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec := doRequest(t, r, http.MethodPost, "/api/listings", "token_host-1", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotHost != "host-1" {
		t.Errorf("expected host from token, got %s", gotHost)
	}
	if gotInput.Location.City != "Paris" || gotInput.Capacity.Guests != 2 || len(gotInput.Images) != 1 || gotInput.Images[0].URL != "https://img/1.jpg" {
		t.Errorf("unexpected input %+v", gotInput)
	}
	if data := decodeBody(t, rec)["data"].(map[string]interface{}); data["hostId"] != "host-1" {
		t.Errorf("unexpected listing %v", data)
	}
}

func TestListingHandlers_UpdateAndDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var gotPatch domain.ListingPatch
	catalog := &mocks.MockCatalogService{
		UpdateFunc: func(ctx context.Context, requesterID, id string, patch domain.ListingPatch) (*domain.Listing, error) {
			if requesterID != "host-1" {
				return nil, domain.ErrForbidden
			}
			gotPatch = patch
			return &domain.Listing{ID: id, HostID: requesterID}, nil
		},
		DeleteFunc: func(ctx context.Context, requesterID, id string) error {
			if requesterID != "host-1" {
				return domain.ErrForbidden
			}
			return nil
		},
	}
	r := newListingRouter(catalog, &mocks.MockReservationService{})

	rec := doRequest(t, r, http.MethodPut, "/api/listings/l1", "token_host-1", `{"title":"Renamed","location":{"city":"Lyon"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotPatch.Title == nil || *gotPatch.Title != "Renamed" || gotPatch.City == nil || *gotPatch.City != "Lyon" {
		t.Errorf("unexpected patch %+v", gotPatch)
	}
	if gotPatch.Country != nil || gotPatch.Price != nil || gotPatch.Description != nil {
		t.Errorf("absent fields must stay nil: %+v", gotPatch)
	}

	rec = doRequest(t, r, http.MethodPut, "/api/listings/l1", "token_guest-1", `{"title":"Mine now"}`)
	if rec.Code != http.StatusForbidden || decodeBody(t, rec)["error"] != "not authorized" {
		t.Errorf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}

	if rec := doRequest(t, r, http.MethodDelete, "/api/listings/l1", "token_guest-1", nil); rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
	rec = doRequest(t, r, http.MethodDelete, "/api/listings/l1", "token_host-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if msg := decodeBody(t, rec)["data"].(map[string]interface{})["message"]; msg != "Listing removed" {
		t.Errorf("unexpected message %v", msg)
	}
}

func TestListingHandlers_AddReview(t *testing.T) {
	gin.SetMode(gin.TestMode)

	catalog := &mocks.MockCatalogService{AddReviewFunc: func(ctx context.Context, authorID, listingID string, rating int, comment string) (*domain.ListingDetail, error) {
		if rating < 1 || rating > 5 {
			return nil, domain.NewValidationError("rating must be between 1 and 5")
		}
		return &domain.ListingDetail{Listing: domain.Listing{ID: listingID, Rating: float64(rating)}}, nil
	}}
	r := newListingRouter(catalog, &mocks.MockReservationService{})

	if rec := doRequest(t, r, http.MethodPost, "/api/listings/l1/reviews", "token_guest-1", ReviewRequest{Rating: 5, Comment: "Great"}); rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	if rec := doRequest(t, r, http.MethodPost, "/api/listings/l1/reviews", "token_guest-1", ReviewRequest{Rating: 9}); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestListingHandlers_AttachImage(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var got domain.ImageUpload
	var content []byte
	catalog := &mocks.MockCatalogService{AttachImageFunc: func(ctx context.Context, requesterID, listingID string, upload domain.ImageUpload) (*domain.Listing, error) {
		got = upload
		content, _ = io.ReadAll(upload.Body)
		return &domain.Listing{ID: listingID, Images: []domain.Image{{URL: "https://img/" + upload.Filename}}}, nil
	}}
	r := newListingRouter(catalog, &mocks.MockReservationService{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="image"; filename="front.png"`)
	hdr.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("png-bytes"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/listings/l1/images", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer token_host-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if got.Filename != "front.png" || got.ContentType != "image/png" || got.Size != int64(len("png-bytes")) {
		t.Errorf("unexpected upload %+v", got)
	}
	if string(content) != "png-bytes" {
		t.Errorf("unexpected content %q", content)
	}

	rec = doRequest(t, r, http.MethodPost, "/api/listings/l1/images", "token_host-1", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without a file, got %d", rec.Code)
	}
}
