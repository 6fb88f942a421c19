package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/you/staysvc/domain"
)

var statusByKind = map[domain.ErrorKind]int{
	domain.KindDuplicateAccount:   http.StatusBadRequest,
	domain.KindValidation:         http.StatusBadRequest,
	domain.KindInvalidDateRange:   http.StatusBadRequest,
	domain.KindInvalidCredentials: http.StatusUnauthorized,
	domain.KindUnauthenticated:    http.StatusUnauthorized,
	domain.KindInvalidToken:       http.StatusUnauthorized,
	domain.KindForbidden:          http.StatusForbidden,
	domain.KindNotFound:           http.StatusNotFound,
	domain.KindUnavailable:        http.StatusServiceUnavailable,
}

// respondError renders a domain error. Internal errors are logged and never echoed to the client.
func respondError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		log.Printf("REQUEST_FAILED: method=%s path=%s error=%v timestamp=%s",
			c.Request.Method, c.Request.URL.Path, err, time.Now().UTC().Format(time.RFC3339))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error", "code": domain.KindInternal})
		return
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": kind})
}

// respondBindError renders a malformed request body
func respondBindError(c *gin.Context, err error) {
	respondError(c, domain.NewValidationError("%s", err.Error()))
}

// parseDate accepts a calendar date or an RFC 3339 timestamp
func parseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, domain.NewValidationError("%s is required", field)
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Time{}, domain.NewValidationError("%s must be a date (YYYY-MM-DD) or RFC 3339 timestamp", field)
}
