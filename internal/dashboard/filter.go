package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/meridian-fin/meridian/internal/shared"
)

// DateRange is an inclusive period. Start and End are date-granular.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// FilterPredicate is the normalized constraint set shared by every query the
// summary issues, so all reported figures narrow consistently. Optional
// dimensions are shape-checked only; an unmatched filter yields a smaller
// result set downstream, never an error.
type FilterPredicate struct {
	Range      DateRange
	CategoryID *int64
	ProductID  *int64
	Region     string
	CustomerID *int64
}

// RawFilter carries the caller-supplied constraints before normalization.
type RawFilter struct {
	Start      time.Time
	End        time.Time
	CategoryID *int64
	ProductID  *int64
	Region     string
	CustomerID *int64
}

// ComposeFilter validates and normalizes raw constraints into a predicate.
// Pure; equal input always yields an equal predicate.
func ComposeFilter(raw RawFilter) (FilterPredicate, error) {
	if raw.Start.IsZero() || raw.End.IsZero() {
		return FilterPredicate{}, fmt.Errorf("%w: start and end are required", shared.ErrInvalidRange)
	}
	if raw.End.Before(raw.Start) {
		return FilterPredicate{}, fmt.Errorf("%w: start %s is after end %s",
			shared.ErrInvalidRange, raw.Start.Format(time.DateOnly), raw.End.Format(time.DateOnly))
	}
	if err := checkID("category_id", raw.CategoryID); err != nil {
		return FilterPredicate{}, err
	}
	if err := checkID("product_id", raw.ProductID); err != nil {
		return FilterPredicate{}, err
	}
	if err := checkID("customer_id", raw.CustomerID); err != nil {
		return FilterPredicate{}, err
	}

	return FilterPredicate{
		Range:      DateRange{Start: raw.Start, End: raw.End},
		CategoryID: raw.CategoryID,
		ProductID:  raw.ProductID,
		Region:     strings.TrimSpace(raw.Region),
		CustomerID: raw.CustomerID,
	}, nil
}

func checkID(name string, id *int64) error {
	if id != nil && *id <= 0 {
		return fmt.Errorf("%w: %s must be positive", shared.ErrInvalidRange, name)
	}
	return nil
}
