package domain

import (
	"fmt"
	"strconv"
)

// Entity is a unit of content in the host system.
type Entity struct {
	ID   int64
	Body string
}

// NewEntity validates and creates an Entity.
func NewEntity(id int64, body string) (Entity, error) {
	e := Entity{ID: id, Body: body}
	if err := e.Validate(); err != nil {
		return Entity{}, err
	}
	return e, nil
}

// Validate checks that the entity carries a usable identifier.
func (e Entity) Validate() error {
	if e.ID <= 0 {
		return fmt.Errorf("entity id must be positive, got %d: %w", e.ID, ErrInvalidEntity)
	}
	return nil
}

// IDString returns the entity ID in the decimal form used on the wire.
func (e Entity) IDString() string {
	return strconv.FormatInt(e.ID, 10)
}
