package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/guregu/null/v6"
	"github.com/rs/zerolog/log"

	sm "github.com/ximlor/inv-nbs/service/models"
)

const (
	DefaultAddr  = ":8080"
	maxBodyBytes = 1 << 20
)

type Pong struct {
	Message string `json:"message"`
}

type ServerSettings struct {
	Addr           string
	AllowedOrigins []string
	PeriodsPerYear int
}

func GetHttpServer(sc ServiceContext, settings ServerSettings) *http.Server {
	router := chi.NewRouter()

	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(loggingMiddleware)

	origins := settings.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           int((12 * time.Hour).Seconds()),
	}))

	periodsPerYear := settings.PeriodsPerYear
	if periodsPerYear <= 0 {
		periodsPerYear = sm.Yearly
	}

	router.Route("/api", func(r chi.Router) {
		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) { ping(w, r, sc) })
		r.Post("/rolling-returns", rollingReturns)
		r.Post("/rolling-returns/summary", func(w http.ResponseWriter, r *http.Request) {
			rollingReturnsSummary(w, r, periodsPerYear)
		})
	})

	addr := settings.Addr
	if addr == "" {
		addr = DefaultAddr
	}

	server := &http.Server{
		Addr:           addr,
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	return server
}

// ping answers 503 once the service context is done, so health checks fail during shutdown
func ping(w http.ResponseWriter, r *http.Request, sc ServiceContext) {
	if sc.Context != nil && sc.Context.Err() != nil {
		writeJSON(w, http.StatusServiceUnavailable, sm.GetServiceResponseError(errors.New("shutting down")))
		return
	}
	writeJSON(w, http.StatusOK, sm.GetServiceResponseOk(&Pong{Message: "pong"}))
}

func rollingReturns(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRollingReturnRequest(w, r)
	if !ok {
		return
	}

	values, err := calculateFinite(req)
	if err != nil {
		writeCalculationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sm.GetServiceResponseOk(&sm.RollingReturnResponse{
		Window: req.Window,
		Values: values,
	}))
}

func rollingReturnsSummary(w http.ResponseWriter, r *http.Request, periodsPerYear int) {
	req, ok := decodeRollingReturnRequest(w, r)
	if !ok {
		return
	}

	values, err := calculateFinite(req)
	if err != nil {
		writeCalculationError(w, err)
		return
	}

	summary := SummarizeRolling(ColumnSuffix(req.Window, periodsPerYear)[1:], values, req.Window, periodsPerYear)
	writeJSON(w, http.StatusOK, sm.GetServiceResponseOk(&summary))
}

func decodeRollingReturnRequest(w http.ResponseWriter, r *http.Request) (*sm.RollingReturnRequest, bool) {
	var req sm.RollingReturnRequest

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, sm.GetServiceResponseError(fmt.Errorf("invalid request body: %w", err)))
		return nil, false
	}

	return &req, true
}

// calculateFinite rejects windows whose product overflows float64, JSON has no encoding for them
func calculateFinite(req *sm.RollingReturnRequest) ([]null.Float, error) {
	values, err := CalculateRollingReturns(req.Returns, req.Window)
	if err != nil {
		return nil, err
	}

	idx := slices.IndexFunc(values, func(v null.Float) bool {
		return v.Valid && (math.IsInf(v.Float64, 0) || math.IsNaN(v.Float64))
	})
	if idx >= 0 {
		return nil, fmt.Errorf("%w: rolling return at position %d is out of range", ErrNonFinite, idx)
	}
	return values, nil
}

func writeCalculationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, sm.GetServiceResponseError(err))
	case errors.Is(err, ErrNonFinite):
		writeJSON(w, http.StatusUnprocessableEntity, sm.GetServiceResponseError(err))
	default:
		writeJSON(w, http.StatusInternalServerError, sm.GetServiceResponseError(err))
	}
}

// writeJSON encodes before sending the status so an encoding failure still answers with an error body
func writeJSON(w http.ResponseWriter, status int, body any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		log.Error().Err(err).Msg("error encoding response")

		buf.Reset()
		status = http.StatusInternalServerError
		// a plain error envelope always encodes
		_ = json.NewEncoder(&buf).Encode(sm.GetServiceResponseError(errors.New("error encoding response")))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Error().Err(err).Msg("error writing response")
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("http request")
	})
}
