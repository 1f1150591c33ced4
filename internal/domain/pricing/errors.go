package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sangkips/devis-eau-api/internal/domain/enum"
)

// ErrTariffNotFound is returned when no active tariff prices a service type.
// It is always wrapped with the service type that was looked up.
var ErrTariffNotFound = errors.New("tariff not found")

// DuplicateTariffError reports that a tariff would collide with one that is
// already active.
type DuplicateTariffError struct {
	ExistingID      uint
	ServiceType     enum.ServiceType
	ReferenceVolume *int
}

func (e *DuplicateTariffError) Error() string {
	if e.ReferenceVolume != nil {
		return fmt.Sprintf("an active %s tariff for reference volume %d already exists (id %d)",
			e.ServiceType, *e.ReferenceVolume, e.ExistingID)
	}
	return fmt.Sprintf("an active %s tariff already exists (id %d)", e.ServiceType, e.ExistingID)
}

// ValidationError is a rejected input field
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors collects every rejected field of one input
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Add appends a field error
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, ValidationError{Field: field, Message: message})
}

// Err returns nil when nothing was collected
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}
