package options

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/text/cases"

	"github.com/meridian-fin/meridian/internal/platform/db"
	"github.com/meridian-fin/meridian/internal/shared"
)

// Row is one candidate option as returned by the store, carrying the
// composite sort key the seek predicate anchors on.
type Row struct {
	ID       string
	Label    string
	Value    any
	Metadata map[string]any
	SortKey  string
}

// ListParams scopes one page fetch. Limit is the probe size (page size + 1);
// After, when set, is the decoded anchor of the previous page.
type ListParams struct {
	Search string
	After  *Cursor
	Limit  int
}

// Repository provides read-only option lookups per entity kind.
type Repository interface {
	ListCategories(ctx context.Context, params ListParams) ([]Row, error)
	CountCategories(ctx context.Context, search string) (int, error)
	ListProducts(ctx context.Context, params ListParams) ([]Row, error)
	CountProducts(ctx context.Context, search string) (int, error)
	ListRegions(ctx context.Context, params ListParams) ([]Row, error)
	CountRegions(ctx context.Context, search string) (int, error)
	ListCustomers(ctx context.Context, params ListParams) ([]Row, error)
	CountCustomers(ctx context.Context, search string) (int, error)
}

type repository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewRepository constructs a PostgreSQL-backed repository.
func NewRepository(pool *pgxpool.Pool, logger *slog.Logger) Repository {
	return &repository{pool: pool, logger: logger}
}

// fold lowercases with full case folding. A fresh Caser per call: Caser
// instances are stateful and not safe for concurrent use.
func fold(s string) string {
	return cases.Fold().String(s)
}

// foldTerm normalises a search term for case-insensitive matching.
func foldTerm(term string) string {
	return fold(strings.TrimSpace(term))
}

// sortKey composes the cursor sort value: match rank, then folded label.
// The separator cannot occur in a rank digit, keeping the key splittable.
const sortKeySep = "\x1f"

func makeSortKey(rank int, foldedLabel string) string {
	return strconv.Itoa(rank) + sortKeySep + foldedLabel
}

func splitSortKey(key string) (rank int, foldedLabel string, err error) {
	idx := strings.Index(key, sortKeySep)
	if idx < 0 {
		return 0, "", shared.ErrInvalidCursor
	}
	rank, convErr := strconv.Atoi(key[:idx])
	if convErr != nil || rank < 0 {
		return 0, "", shared.ErrInvalidCursor
	}
	return rank, key[idx+1:], nil
}

// rankExpr yields the match-rank SQL for a label column: exact fold match
// sorts before prefix, prefix before substring. Without a search term every
// row ranks 0 and the stable key alone decides.
func rankExpr(column string, argPos int) string {
	p := strconv.Itoa(argPos)
	return "CASE WHEN lower(" + column + ") = $" + p +
		" THEN 0 WHEN lower(" + column + ") LIKE $" + p + " || '%' THEN 1 ELSE 2 END"
}

// listQuery assembles the shared tail of a seek-paginated list query:
// optional substring filter, tuple seek past the anchor, deterministic
// ordering, and the probe limit. labelCol and idCol must be raw column names.
type listQuery struct {
	sql  string
	args []any
	rank string
}

func newListQuery(base, labelCol string, term string) listQuery {
	q := listQuery{sql: base, rank: "0"}
	if term != "" {
		q.args = append(q.args, term)
		pos := len(q.args)
		q.sql += ` AND lower(` + labelCol + `) LIKE '%' || $` + strconv.Itoa(pos) + ` || '%'`
		q.rank = rankExpr(labelCol, pos)
	}
	return q
}

// seek appends the anchor predicate. anchorID must already be in the column's
// native representation (int64 for id columns, string for value columns).
func (q *listQuery) seek(keyword, labelCol, idCol string, after *Cursor, anchorID any) error {
	anchorRank, anchorLabel, err := splitSortKey(after.SortValue)
	if err != nil {
		return err
	}
	q.args = append(q.args, anchorRank, anchorLabel, anchorID)
	n := len(q.args)
	q.sql += fmt.Sprintf(" %s (%s, lower(%s), %s) > ($%d, $%d, $%d)",
		keyword, q.rank, labelCol, idCol, n-2, n-1, n)
	return nil
}

func (q *listQuery) finish(labelCol, idCol string, limit int) {
	q.sql += ` ORDER BY match_rank, lower(` + labelCol + `), ` + idCol
	q.args = append(q.args, limit)
	q.sql += ` LIMIT $` + strconv.Itoa(len(q.args))
}

func parseNumericAnchor(after *Cursor) (int64, error) {
	id, err := strconv.ParseInt(after.ID, 10, 64)
	if err != nil {
		return 0, shared.ErrInvalidCursor
	}
	return id, nil
}

// --- Categories ---

func (r *repository) ListCategories(ctx context.Context, params ListParams) ([]Row, error) {
	term := foldTerm(params.Search)
	q := newListQuery(`SELECT id, name, %RANK% AS match_rank FROM categories WHERE 1=1`, "name", term)

	if params.After != nil {
		anchorID, err := parseNumericAnchor(params.After)
		if err != nil {
			return nil, err
		}
		if err := q.seek("AND", "name", "id", params.After, anchorID); err != nil {
			return nil, err
		}
	}
	q.finish("name", "id", params.Limit)
	q.sql = strings.Replace(q.sql, "%RANK%", q.rank, 1)

	var rows []Row
	err := db.WithRetry(ctx, r.logger, func(ctx context.Context) error {
		pgRows, err := r.pool.Query(ctx, q.sql, q.args...)
		if err != nil {
			return err
		}
		defer pgRows.Close()

		rows = rows[:0]
		for pgRows.Next() {
			var id int64
			var name string
			var matchRank int
			if err := pgRows.Scan(&id, &name, &matchRank); err != nil {
				return err
			}
			rows = append(rows, Row{
				ID:      strconv.FormatInt(id, 10),
				Label:   name,
				Value:   id,
				SortKey: makeSortKey(matchRank, fold(name)),
			})
		}
		return pgRows.Err()
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CountCategories(ctx context.Context, search string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM categories`, "name", search)
}

// --- Products ---

func (r *repository) ListProducts(ctx context.Context, params ListParams) ([]Row, error) {
	term := foldTerm(params.Search)
	q := newListQuery(`SELECT id, name, sku, category_id, %RANK% AS match_rank FROM products WHERE 1=1`, "name", term)

	if params.After != nil {
		anchorID, err := parseNumericAnchor(params.After)
		if err != nil {
			return nil, err
		}
		if err := q.seek("AND", "name", "id", params.After, anchorID); err != nil {
			return nil, err
		}
	}
	q.finish("name", "id", params.Limit)
	q.sql = strings.Replace(q.sql, "%RANK%", q.rank, 1)

	var rows []Row
	err := db.WithRetry(ctx, r.logger, func(ctx context.Context) error {
		pgRows, err := r.pool.Query(ctx, q.sql, q.args...)
		if err != nil {
			return err
		}
		defer pgRows.Close()

		rows = rows[:0]
		for pgRows.Next() {
			var id int64
			var name, sku string
			var categoryID *int64
			var matchRank int
			if err := pgRows.Scan(&id, &name, &sku, &categoryID, &matchRank); err != nil {
				return err
			}
			meta := map[string]any{"sku": sku}
			if categoryID != nil {
				meta["category_id"] = *categoryID
			}
			rows = append(rows, Row{
				ID:       strconv.FormatInt(id, 10),
				Label:    name,
				Value:    id,
				Metadata: meta,
				SortKey:  makeSortKey(matchRank, fold(name)),
			})
		}
		return pgRows.Err()
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CountProducts(ctx context.Context, search string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM products`, "name", search)
}

// --- Customers ---

func (r *repository) ListCustomers(ctx context.Context, params ListParams) ([]Row, error) {
	term := foldTerm(params.Search)
	q := newListQuery(`SELECT id, name, region, %RANK% AS match_rank FROM customers WHERE 1=1`, "name", term)

	if params.After != nil {
		anchorID, err := parseNumericAnchor(params.After)
		if err != nil {
			return nil, err
		}
		if err := q.seek("AND", "name", "id", params.After, anchorID); err != nil {
			return nil, err
		}
	}
	q.finish("name", "id", params.Limit)
	q.sql = strings.Replace(q.sql, "%RANK%", q.rank, 1)

	var rows []Row
	err := db.WithRetry(ctx, r.logger, func(ctx context.Context) error {
		pgRows, err := r.pool.Query(ctx, q.sql, q.args...)
		if err != nil {
			return err
		}
		defer pgRows.Close()

		rows = rows[:0]
		for pgRows.Next() {
			var id int64
			var name string
			var region *string
			var matchRank int
			if err := pgRows.Scan(&id, &name, &region, &matchRank); err != nil {
				return err
			}
			meta := map[string]any{}
			if region != nil && *region != "" {
				meta["region"] = *region
			}
			rows = append(rows, Row{
				ID:       strconv.FormatInt(id, 10),
				Label:    name,
				Value:    id,
				Metadata: meta,
				SortKey:  makeSortKey(matchRank, fold(name)),
			})
		}
		return pgRows.Err()
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CountCustomers(ctx context.Context, search string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM customers`, "name", search)
}

// --- Regions ---

// ListRegions aggregates distinct customer regions, attaching the member
// count, then applies the same seek pagination over the grouped rows. The
// region value itself serves as the row id.
func (r *repository) ListRegions(ctx context.Context, params ListParams) ([]Row, error) {
	term := foldTerm(params.Search)
	q := newListQuery(`SELECT region, COUNT(*) AS members, %RANK% AS match_rank FROM customers WHERE region IS NOT NULL AND region <> ''`, "region", term)
	q.sql += ` GROUP BY region`

	if params.After != nil {
		if err := q.seek("HAVING", "region", "region", params.After, params.After.ID); err != nil {
			return nil, err
		}
	}
	q.finish("region", "region", params.Limit)
	q.sql = strings.Replace(q.sql, "%RANK%", q.rank, 1)

	var rows []Row
	err := db.WithRetry(ctx, r.logger, func(ctx context.Context) error {
		pgRows, err := r.pool.Query(ctx, q.sql, q.args...)
		if err != nil {
			return err
		}
		defer pgRows.Close()

		rows = rows[:0]
		for pgRows.Next() {
			var region string
			var members, matchRank int
			if err := pgRows.Scan(&region, &members, &matchRank); err != nil {
				return err
			}
			rows = append(rows, Row{
				ID:       region,
				Label:    region,
				Value:    region,
				Metadata: map[string]any{"members": members},
				SortKey:  makeSortKey(matchRank, fold(region)),
			})
		}
		return pgRows.Err()
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CountRegions(ctx context.Context, search string) (int, error) {
	term := foldTerm(search)
	query := `SELECT COUNT(DISTINCT region) FROM customers WHERE region IS NOT NULL AND region <> ''`
	args := []any{}
	if term != "" {
		query += ` AND lower(region) LIKE '%' || $1 || '%'`
		args = append(args, term)
	}

	var total int
	err := db.WithRetry(ctx, r.logger, func(ctx context.Context) error {
		return r.pool.QueryRow(ctx, query, args...).Scan(&total)
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repository) count(ctx context.Context, base, labelCol, search string) (int, error) {
	term := foldTerm(search)
	query := base
	args := []any{}
	if term != "" {
		query += ` WHERE lower(` + labelCol + `) LIKE '%' || $1 || '%'`
		args = append(args, term)
	}

	var total int
	err := db.WithRetry(ctx, r.logger, func(ctx context.Context) error {
		return r.pool.QueryRow(ctx, query, args...).Scan(&total)
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
