// Package types holds the shared data structures (models) used across
// the application. Storage, service and transport all import types
// without depending on each other.
package types

import (
	"time"

	"github.com/google/uuid"
)

// Person is the single record kept by the service.
//
// The json:"..." tags fix the on-disk field names of the backing file
// (camelCase). ID is assigned once on creation and never changes; every
// other field can be replaced by an update.
type Person struct {
	ID           uuid.UUID `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	NationalCode string    `json:"nationalCode"`
	BirthDate    time.Time `json:"birthDate"`
}

// Apply copies every mutable field of src onto p, keeping p.ID.
func (p *Person) Apply(src Person) {
	p.FirstName = src.FirstName
	p.LastName = src.LastName
	p.NationalCode = src.NationalCode
	p.BirthDate = src.BirthDate
}
