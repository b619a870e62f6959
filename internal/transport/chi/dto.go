package chi

import (
	"github.com/kailas-cloud/docsync/internal/domain"
	"github.com/kailas-cloud/docsync/internal/domain/reconcile"
	healthuc "github.com/kailas-cloud/docsync/internal/usecase/health"
	syncuc "github.com/kailas-cloud/docsync/internal/usecase/sync"
)

// CreateEntityRequest is the body of POST /entities.
type CreateEntityRequest struct {
	ID   *int64 `json:"id"`
	Body string `json:"body"`
}

// UpdateEntityRequest is the body of PUT /entities/{id}.
type UpdateEntityRequest struct {
	Body string `json:"body"`
}

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse mirrors the remote ask contract: exactly one field is set.
type AskResponse struct {
	Response *string `json:"response,omitempty"`
	Error    *string `json:"error,omitempty"`
	Display  string  `json:"display"`
}

// ReportResponse describes one processed lifecycle event.
type ReportResponse struct {
	Op       string               `json:"op"`
	EntityID int64                `json:"entity_id"`
	Outcome  string               `json:"outcome"`
	DocIDs   []string             `json:"doc_ids"`
	Results  []ReconcileResultDTO `json:"results,omitempty"`
	Error    string               `json:"error,omitempty"`
}

// ReconcileResultDTO is the store outcome for one document ID.
type ReconcileResultDTO struct {
	DocID    string `json:"doc_id"`
	Status   string `json:"status"`
	RecordID int64  `json:"record_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

// MappingDTO is one entity-to-document mapping row.
type MappingDTO struct {
	RecordID int64  `json:"record_id"`
	DocID    string `json:"doc_id"`
	DocType  string `json:"doc_type"`
}

// MappingListResponse is the body of GET /entities/{id}/documents.
type MappingListResponse struct {
	EntityID int64        `json:"entity_id"`
	Items    []MappingDTO `json:"items"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// NewReportResponse renders a sync report for HTTP and CLI output.
func NewReportResponse(r syncuc.Report) ReportResponse {
	out := ReportResponse{
		Op:       string(r.Op),
		EntityID: r.EntityID,
		Outcome:  string(r.Outcome),
		DocIDs:   r.DocIDs,
	}
	if out.DocIDs == nil {
		out.DocIDs = []string{}
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	for _, res := range r.Results {
		out.Results = append(out.Results, reconcileToDTO(res))
	}
	return out
}

func reconcileToDTO(r reconcile.Result) ReconcileResultDTO {
	dto := ReconcileResultDTO{
		DocID:    r.DocID(),
		Status:   string(r.Status()),
		RecordID: r.RecordID(),
	}
	if r.Err() != nil {
		dto.Error = r.Err().Error()
	}
	return dto
}

// NewMappingListResponse renders mapping rows for HTTP and CLI output.
func NewMappingListResponse(entityID int64, rows []domain.Mapping) MappingListResponse {
	items := make([]MappingDTO, len(rows))
	for i, m := range rows {
		items[i] = MappingDTO{RecordID: m.RecordID, DocID: m.DocID, DocType: m.DocType}
	}
	return MappingListResponse{EntityID: entityID, Items: items}
}

func healthToDTO(r healthuc.Report) HealthResponse {
	checks := make(map[string]string, len(r.Checks))
	for k, v := range r.Checks {
		checks[k] = string(v)
	}
	return HealthResponse{Status: string(r.Status), Checks: checks}
}
