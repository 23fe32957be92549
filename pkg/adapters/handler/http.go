package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/qrtrack/go-qr-tracker/pkg/core/domain"
	"github.com/qrtrack/go-qr-tracker/pkg/ports"
)

type HTTPHandler struct {
	service ports.LinkService
}

func NewHTTPHandler(service ports.LinkService) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// CreateQRCodeRequest payload
type CreateQRCodeRequest struct {
	Destination string `json:"destination"`
	Format      string `json:"format,omitempty"` // png (default) or svg
}

type linkResponse struct {
	domain.Link
	ShortURL string `json:"short_url"`
}

// Create QR code
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateQRCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	link, err := h.service.Create(r.Context(), req.Destination, req.Format)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(linkResponse{Link: *link, ShortURL: h.service.ShortURL(link.ShortCode)})
}

// Redirect to the destination, appending a scan to the ledger first.
func (h *HTTPHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("short_code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "short code missing")
		return
	}

	scan := domain.Scan{
		UserAgent:     r.UserAgent(),
		SourceAddress: sourceAddress(r),
	}
	destination, err := h.service.Scan(r.Context(), code, scan)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	http.Redirect(w, r, destination, http.StatusFound)
}

// Analytics for a link
func (h *HTTPHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	analytics, err := h.service.Analytics(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(analytics)
}

// List QR codes, paginated newest-first.
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	links, total, err := h.service.List(r.Context(), page, pageSize)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	items := make([]linkResponse, 0, len(links))
	for _, l := range links {
		items = append(items, linkResponse{Link: l, ShortURL: h.service.ShortURL(l.ShortCode)})
	}

	resp := map[string]interface{}{
		"data":        items,
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// sourceAddress extracts the client address from forwarding headers. Absence
// is normal and never fails the request.
func sourceAddress(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	}
	return r.Header.Get("X-Real-IP")
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case domain.IsNotFound(err):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrCodeExhausted):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "operation timed out")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
