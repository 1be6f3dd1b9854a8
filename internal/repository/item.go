package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"storefront/catalog/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var ErrItemNotFound = errors.New("item not found")

// Querier is the subset of *pgxpool.Pool the repository uses.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

type ItemRepository interface {
	ListItems(ctx context.Context, filter domain.Filter) ([]domain.Item, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetItem(ctx context.Context, id int64) (*domain.Item, error)
	Ping(ctx context.Context) error
}

type itemRepository struct {
	db Querier
}

func NewItemRepository(db Querier) ItemRepository {
	return &itemRepository{
		db: db,
	}
}

const itemColumns = `id, name, COALESCE(description, ''), price::text, category, stock_quantity, COALESCE(image_url, ''), is_active`

func (r *itemRepository) ListItems(ctx context.Context, filter domain.Filter) ([]domain.Item, error) {
	query, args := buildListQuery(filter)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read items: %w", err)
	}

	return items, nil
}

func (r *itemRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	query := `
	SELECT DISTINCT category
	FROM products
	WHERE is_active AND category <> ''
	ORDER BY category`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}

	return categories, nil
}

func (r *itemRepository) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM products WHERE id = $1 AND is_active`

	item, err := scanItem(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *itemRepository) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// buildListQuery returns the active-items query for the filter. Category is
// an exact match and search a case-insensitive substring of the name; both
// apply when both are set.
func buildListQuery(filter domain.Filter) (string, []any) {
	var (
		conditions = []string{"is_active"}
		args       []any
	)

	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, "category = $"+strconv.Itoa(len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		conditions = append(conditions, "name ILIKE $"+strconv.Itoa(len(args)))
	}

	query := `SELECT ` + itemColumns + ` FROM products WHERE ` +
		strings.Join(conditions, " AND ") + ` ORDER BY name`
	return query, args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func scanItem(row pgx.Row) (*domain.Item, error) {
	var (
		item  domain.Item
		price string
	)

	err := row.Scan(&item.ID, &item.Name, &item.Description, &price, &item.Category,
		&item.StockQuantity, &item.ImageURL, &item.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan item: %w", err)
	}

	item.Price, err = decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q for item %d: %w", price, item.ID, err)
	}

	return &item, nil
}
