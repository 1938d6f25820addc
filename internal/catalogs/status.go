package catalogs

import (
	"errors"
	"fmt"

	"github.com/modavia/backend/internal/models"
)

var (
	// ErrCatalogNotFound is returned when a referenced catalog does not exist.
	ErrCatalogNotFound = errors.New("catalog not found")
	// ErrCatalogArchived is returned for any update attempt against an
	// archived catalog, regardless of which fields are changing.
	ErrCatalogArchived = errors.New("catalog is archived and immutable")
	// ErrUnknownStatus is returned for a status value outside the enum.
	ErrUnknownStatus = errors.New("unknown catalog status")
)

// InvalidTransitionError reports a rejected status transition with the
// attempted (from, to) pair.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid catalog status transition: %s -> %s", e.From, e.To)
}

// transitions maps each status to the set of statuses it may move to.
// Archived is terminal; same-state writes are not transitions.
var transitions = map[string]map[string]bool{
	models.CatalogStatusDraft: {
		models.CatalogStatusPublished: true,
		models.CatalogStatusArchived:  true,
	},
	models.CatalogStatusPublished: {
		models.CatalogStatusArchived: true,
	},
	models.CatalogStatusArchived: {},
}

// ValidateTransition checks that from -> to is an allowed status change.
func ValidateTransition(from, to string) error {
	targets, ok := transitions[from]
	if !ok {
		return ErrUnknownStatus
	}
	if _, ok := transitions[to]; !ok {
		return ErrUnknownStatus
	}
	if from == models.CatalogStatusArchived {
		return ErrCatalogArchived
	}
	if !targets[to] {
		return &InvalidTransitionError{From: from, To: to}
	}
	return nil
}

// BecamePublished reports whether a validated from -> to change is the
// publication edge: the stored status was not published and the new one is.
// Only this edge triggers the client notification fan-out; a redundant
// write that leaves status at published never fires it.
func BecamePublished(from, to string) bool {
	return from != models.CatalogStatusPublished && to == models.CatalogStatusPublished
}
