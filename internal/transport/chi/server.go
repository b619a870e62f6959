// Package chi exposes lifecycle webhooks, the ask relay, and operational
// endpoints over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsync/internal/domain"
	askuc "github.com/kailas-cloud/docsync/internal/usecase/ask"
	healthuc "github.com/kailas-cloud/docsync/internal/usecase/health"
	syncuc "github.com/kailas-cloud/docsync/internal/usecase/sync"
)

const maxBodyBytes = 10 << 20

// Syncer processes entity lifecycle events.
type Syncer interface {
	Insert(ctx context.Context, e domain.Entity) syncuc.Report
	Update(ctx context.Context, e domain.Entity) syncuc.Report
	Delete(ctx context.Context, e domain.Entity) syncuc.Report
}

// Asker relays questions.
type Asker interface {
	Ask(ctx context.Context, question string) askuc.Answer
}

// MappingReader lists stored mappings.
type MappingReader interface {
	Mappings(ctx context.Context, entityID int64) ([]domain.Mapping, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server holds the HTTP handlers.
type Server struct {
	sync          Syncer
	ask           Asker
	mappings      MappingReader
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(sync Syncer, ask Asker, mappings MappingReader, health HealthChecker, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		sync:          sync,
		ask:           ask,
		mappings:      mappings,
		health:        health,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Routes mounts the handlers on r.
func (s *Server) Routes(r gochi.Router) {
	r.Post("/entities", s.CreateEntity)
	r.Put("/entities/{id}", s.UpdateEntity)
	r.Delete("/entities/{id}", s.DeleteEntity)
	r.Get("/entities/{id}/documents", s.ListEntityDocuments)
	r.Post("/ask", s.Ask)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// CreateEntity handles POST /entities.
func (s *Server) CreateEntity(w http.ResponseWriter, r *http.Request) {
	var req CreateEntityRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.ID == nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "id is required")
		return
	}

	e, err := domain.NewEntity(*req.ID, req.Body)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	rep := s.sync.Insert(detach(r), e)
	writeJSON(w, http.StatusAccepted, NewReportResponse(rep))
}

// UpdateEntity handles PUT /entities/{id}.
func (s *Server) UpdateEntity(w http.ResponseWriter, r *http.Request) {
	id, ok := s.entityID(w, r)
	if !ok {
		return
	}
	var req UpdateEntityRequest
	if !s.decode(w, r, &req) {
		return
	}

	e, err := domain.NewEntity(id, req.Body)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	rep := s.sync.Update(detach(r), e)
	writeJSON(w, http.StatusAccepted, NewReportResponse(rep))
}

// DeleteEntity handles DELETE /entities/{id}.
func (s *Server) DeleteEntity(w http.ResponseWriter, r *http.Request) {
	id, ok := s.entityID(w, r)
	if !ok {
		return
	}

	e, err := domain.NewEntity(id, "")
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	rep := s.sync.Delete(detach(r), e)
	writeJSON(w, http.StatusAccepted, NewReportResponse(rep))
}

// ListEntityDocuments handles GET /entities/{id}/documents.
func (s *Server) ListEntityDocuments(w http.ResponseWriter, r *http.Request) {
	id, ok := s.entityID(w, r)
	if !ok {
		return
	}

	rows, err := s.mappings.Mappings(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NewMappingListResponse(id, rows))
}

// Ask handles POST /ask.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if !s.decode(w, r, &req) {
		return
	}

	a := s.ask.Ask(r.Context(), req.Question)
	switch {
	case a.Invalid:
		writeError(w, http.StatusBadRequest, CodeValidationFailed, a.Text)
	case a.Failed:
		writeJSON(w, http.StatusBadGateway, AskResponse{Error: &a.Text, Display: a.Display()})
	default:
		writeJSON(w, http.StatusOK, AskResponse{Response: &a.Text, Display: a.Display()})
	}
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthToDTO(report))
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// entityID binds the {id} path parameter.
func (s *Server) entityID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	var id int64
	err := runtime.BindStyledParameterWithOptions("simple", "id", gochi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid format for parameter id: "+err.Error())
		return 0, false
	}
	return id, true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// detach keeps request values (request ID, logger) but lets a lifecycle
// event finish after the caller hangs up.
func detach(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}
