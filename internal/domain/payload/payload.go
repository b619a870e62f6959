// Package payload models the request and response bodies of the remote indexing API.
// Each operation has its own type with required fields; bodies are validated before
// they are serialized.
package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/docsync/internal/domain"
)

// Route is a remote API path.
type Route string

// Remote API routes.
const (
	RouteAdd    Route = "/feed/add"
	RouteUpdate Route = "/feed/update"
	RouteDelete Route = "/feed/delete"
	RouteAsk    Route = "/ask"
)

// Payload is a request body bound to one remote route.
type Payload interface {
	Route() Route
	Validate() error
}

// Feed is a payload for one of the document feed routes (add, update, delete).
type Feed interface {
	Payload
	isFeed()
}

// Add is the add-document request body.
type Add struct {
	EntityID string `json:"entity_id"`
	Data     string `json:"data"`
}

// NewAdd builds the add payload from the entity's current state.
func NewAdd(e domain.Entity) Add {
	return Add{EntityID: e.IDString(), Data: e.Body}
}

// Route implements Payload.
func (Add) Route() Route { return RouteAdd }

// Validate implements Payload.
func (p Add) Validate() error { return validateEntityID(p.EntityID) }

func (Add) isFeed() {}

// Update is the update-document request body.
type Update struct {
	EntityID string   `json:"entity_id"`
	IDs      []string `json:"ids"`
	Data     string   `json:"data"`
}

// NewUpdate builds the update payload from the entity and its currently mapped document IDs.
func NewUpdate(e domain.Entity, docIDs []string) Update {
	return Update{EntityID: e.IDString(), IDs: nonNil(docIDs), Data: e.Body}
}

// Route implements Payload.
func (Update) Route() Route { return RouteUpdate }

// Validate implements Payload.
func (p Update) Validate() error {
	if err := validateEntityID(p.EntityID); err != nil {
		return err
	}
	return validateDocIDs(p.IDs)
}

// MarshalJSON always emits ids as an array.
func (p Update) MarshalJSON() ([]byte, error) {
	type alias Update
	a := alias(p)
	a.IDs = nonNil(a.IDs)
	return marshal(a)
}

func (Update) isFeed() {}

// Delete is the delete-document request body.
type Delete struct {
	IDs []string `json:"ids"`
}

// NewDelete builds the delete payload from the currently mapped document IDs.
func NewDelete(docIDs []string) Delete {
	return Delete{IDs: nonNil(docIDs)}
}

// Route implements Payload.
func (Delete) Route() Route { return RouteDelete }

// Validate implements Payload.
func (p Delete) Validate() error { return validateDocIDs(p.IDs) }

// MarshalJSON always emits ids as an array.
func (p Delete) MarshalJSON() ([]byte, error) {
	type alias Delete
	a := alias(p)
	a.IDs = nonNil(a.IDs)
	return marshal(a)
}

func (Delete) isFeed() {}

// Ask is the question-answering request body.
type Ask struct {
	Question string `json:"question"`
}

// Route implements Payload.
func (Ask) Route() Route { return RouteAsk }

// Validate implements Payload.
func (p Ask) Validate() error {
	if strings.TrimSpace(p.Question) == "" {
		return fmt.Errorf("question is required: %w", domain.ErrInvalidPayload)
	}
	return nil
}

// Encode validates p and serializes it to JSON. HTML in entity bodies is sent verbatim.
func Encode(p Payload) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", p.Route(), err)
	}
	data, err := marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", p.Route(), err)
	}
	return data, nil
}

// marshal is json.Marshal without HTML escaping.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err //nolint:wrapcheck // callers add context
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// FeedResponse is the success body of the add and update routes.
type FeedResponse struct {
	DocIDs []string `json:"doc_ids"`
}

// HasDocIDs reports whether the remote side confirmed at least one document.
func (r *FeedResponse) HasDocIDs() bool {
	return r != nil && len(r.DocIDs) > 0
}

// AskResponse is the body of the ask route: either response or error is set.
type AskResponse struct {
	Response *string `json:"response,omitempty"`
	Error    *string `json:"error,omitempty"`
}

func validateEntityID(id string) error {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return fmt.Errorf("entity_id must be a positive integer, got %q: %w", id, domain.ErrInvalidPayload)
	}
	return nil
}

func validateDocIDs(ids []string) error {
	for i, id := range ids {
		if id == "" {
			return fmt.Errorf("ids[%d] is empty: %w", i, domain.ErrInvalidPayload)
		}
	}
	return nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
