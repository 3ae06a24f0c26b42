// Package httpapi exposes the dashboard pipeline over HTTP.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"silentskies-service/internal/domain/entity"
	"silentskies-service/internal/domain/repository"
	"silentskies-service/internal/usecase"
	"silentskies-service/pkg/logger"
	"silentskies-service/pkg/metrics"
	"silentskies-service/pkg/table"
	"silentskies-service/pkg/utils"
)

const maxUploadBytes = 32 << 20

const sampleNoiseCSV = "timestamp,noise_db,max_slow,icao\n" +
	"2025-07-01T12:00:00+02:00,65,72,EDDB\n" +
	"2025-07-01T12:15:00+02:00,68,74,EDDB\n"

// Dashboard runs one dashboard request
type Dashboard interface {
	Run(ctx context.Context, req usecase.DashboardRequest) (*usecase.DashboardResult, error)
}

// Handler serves the dashboard API
type Handler struct {
	dashboard        Dashboard
	airports         repository.AirportRepository
	defaultTolerance time.Duration
	metrics          *metrics.Metrics
	logger           logger.Logger
	now              func() time.Time
}

// NewHandler creates a new API handler
func NewHandler(
	dashboard Dashboard,
	airports repository.AirportRepository,
	defaultTolerance time.Duration,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *Handler {
	return &Handler{
		dashboard:        dashboard,
		airports:         airports,
		defaultTolerance: defaultTolerance,
		metrics:          metrics,
		logger:           logger,
		now:              time.Now,
	}
}

// Register mounts the API routes on mux
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/dashboard", h.handleDashboard)
	mux.HandleFunc("GET /api/v1/airports", h.handleAirports)
	mux.HandleFunc("GET /api/v1/sample-noise.csv", h.handleSample)
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid form: %w", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	req, err := h.parseRequest(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	defer closeUploads(&req.Noise, req.Arrivals)

	result, err := h.dashboard.Run(r.Context(), *req)
	if err != nil {
		h.writeError(w, statusFor(err), err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) parseRequest(r *http.Request) (*usecase.DashboardRequest, error) {
	noise, err := formFile(r, "noise")
	if err != nil {
		return nil, err
	}
	if noise == nil {
		return nil, errors.New("a noise file is required")
	}

	req := &usecase.DashboardRequest{Noise: *noise}
	if req.Arrivals, err = formFile(r, "arrivals"); err != nil {
		return nil, err
	}
	if req.Airports, err = utils.SplitICAOList(r.FormValue("airports")); err != nil {
		return nil, err
	}
	if req.Day, err = utils.ParseDay(r.FormValue("date"), h.now()); err != nil {
		return nil, err
	}
	if req.Tolerance, err = utils.ParseToleranceMinutes(r.FormValue("tolerance"), h.defaultTolerance); err != nil {
		return nil, err
	}

	lat, lon := r.FormValue("lat"), r.FormValue("lon")
	if lat != "" || lon != "" {
		at, err := utils.ParseLatLon(lat, lon)
		if err != nil {
			return nil, err
		}
		req.Location = &at
	}

	if v := r.FormValue("export"); v != "" {
		if req.Export, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("invalid export flag %q", v)
		}
	}
	return req, nil
}

// formFile returns nil when the field was not sent.
func formFile(r *http.Request, field string) (*usecase.Upload, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return &usecase.Upload{Filename: header.Filename, Body: file}, nil
}

func closeUploads(uploads ...*usecase.Upload) {
	for _, u := range uploads {
		if u == nil {
			continue
		}
		if f, ok := u.Body.(multipart.File); ok {
			f.Close()
		}
	}
}

func (h *Handler) handleAirports(w http.ResponseWriter, r *http.Request) {
	airports, err := h.airports.List(r.Context())
	if err != nil {
		h.metrics.ErrorsCount.WithLabelValues("airports").Inc()
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"airports": airports})
}

func (h *Handler) handleSample(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="sample-noise.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(sampleNoiseCSV))
}

// statusFor maps pipeline errors to the status the caller sees.
func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrUnsupportedFormat),
		errors.Is(err, table.ErrMissingColumn),
		errors.Is(err, table.ErrNotTemporal):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", "error", err)
	} else {
		h.logger.Warn("Rejected request", "error", err)
	}
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeJSON encodes body before any header is sent so an unencodable body
// still produces a JSON error response.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
		h.metrics.ErrorsCount.WithLabelValues("encode").Inc()
		status = http.StatusInternalServerError
		buf.Reset()
		json.NewEncoder(&buf).Encode(map[string]string{
			"error": fmt.Sprintf("failed to encode response: %v", err),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
