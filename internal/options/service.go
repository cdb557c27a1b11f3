package options

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/meridian-fin/meridian/internal/shared"
)

// Service resolves option pages for selection widgets. Stateless; safe for
// unbounded concurrent use.
type Service struct {
	repo Repository
}

// NewService wires the resolver with its repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Resolve returns one page of options for the requested entity kind.
// The cursor is decoded before any store access; limits are clamped to
// [1, MaxLimit] rather than rejected.
func (s *Service) Resolve(ctx context.Context, query Query) (Page, error) {
	if !query.Kind.Known() {
		return Page{}, fmt.Errorf("%w: %q", shared.ErrUnsupportedEntity, query.Kind)
	}

	limit := clampLimit(query.Limit)

	var after *Cursor
	if query.Cursor != "" {
		decoded, err := DecodeCursor(query.Cursor)
		if err != nil {
			return Page{}, err
		}
		after = &decoded
	}

	params := ListParams{
		Search: query.Search,
		After:  after,
		Limit:  limit + 1, // probe one past the page to learn HasMore
	}

	var (
		rows  []Row
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = s.list(gctx, query.Kind, params)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.count(gctx, query.Kind, query.Search)
		return err
	})
	if err := g.Wait(); err != nil {
		return Page{}, err
	}

	return buildPage(rows, limit, total), nil
}

// list dispatches over the closed kind enumeration. The default arm is
// unreachable after the Known check but keeps the switch total.
func (s *Service) list(ctx context.Context, kind EntityKind, params ListParams) ([]Row, error) {
	switch kind {
	case KindCategory:
		return s.repo.ListCategories(ctx, params)
	case KindProduct:
		return s.repo.ListProducts(ctx, params)
	case KindRegion:
		return s.repo.ListRegions(ctx, params)
	case KindCustomer:
		return s.repo.ListCustomers(ctx, params)
	default:
		return nil, fmt.Errorf("%w: %q", shared.ErrUnsupportedEntity, kind)
	}
}

func (s *Service) count(ctx context.Context, kind EntityKind, search string) (int, error) {
	switch kind {
	case KindCategory:
		return s.repo.CountCategories(ctx, search)
	case KindProduct:
		return s.repo.CountProducts(ctx, search)
	case KindRegion:
		return s.repo.CountRegions(ctx, search)
	case KindCustomer:
		return s.repo.CountCustomers(ctx, search)
	default:
		return 0, fmt.Errorf("%w: %q", shared.ErrUnsupportedEntity, kind)
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// buildPage trims the probe row, mints the continuation cursor from the last
// retained row, and upholds HasMore == (NextCursor != "").
func buildPage(rows []Row, limit, total int) Page {
	page := Page{Total: total, Items: make([]Item, 0, min(len(rows), limit))}

	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}

	for _, row := range rows {
		page.Items = append(page.Items, Item{
			ID:       row.ID,
			Label:    row.Label,
			Value:    row.Value,
			Metadata: row.Metadata,
		})
	}

	if hasMore {
		last := rows[len(rows)-1]
		page.NextCursor = EncodeCursor(Cursor{ID: last.ID, SortValue: last.SortKey})
		page.HasMore = true
	}

	return page
}
