package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/tanpawarit/shopdesk-agent/agent/contract"
)

type productRow struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID    string   `bun:"id,pk"`
	Title string   `bun:"title,notnull"`
	Price float64  `bun:"price,notnull"`
	Tags  []string `bun:"tags,array"`
	Sizes []string `bun:"sizes,array"`
	Color string   `bun:"color"`
}

type orderRow struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	OrderID   string                `bun:"order_id,pk"`
	Email     string                `bun:"email,notnull"`
	CreatedAt time.Time             `bun:"created_at,notnull"`
	Items     []contractx.OrderItem `bun:"items,type:jsonb"`
}

// PostgresSource reads the catalog and orders tables once through bun.
type PostgresSource struct {
	db *bun.DB
}

func NewPostgresSource(dsn string, timeout time.Duration) (*PostgresSource, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	opts := []pgdriver.Option{pgdriver.WithDSN(dsn)}
	if timeout > 0 {
		opts = append(opts, pgdriver.WithTimeout(timeout))
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(opts...))

	return &PostgresSource{db: bun.NewDB(sqldb, pgdialect.New())}, nil
}

func (s *PostgresSource) Load(ctx context.Context) (Snapshot, error) {
	var products []productRow
	if err := s.productQuery(&products).Scan(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("select products: %w", err)
	}

	var orders []orderRow
	if err := s.orderQuery(&orders).Scan(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("select orders: %w", err)
	}

	snap := Snapshot{
		Products: make([]contractx.Product, 0, len(products)),
		Orders:   make([]contractx.Order, 0, len(orders)),
	}
	for _, row := range products {
		snap.Products = append(snap.Products, contractx.Product{
			ID:    row.ID,
			Title: row.Title,
			Price: row.Price,
			Tags:  row.Tags,
			Sizes: row.Sizes,
			Color: row.Color,
		})
	}
	for _, row := range orders {
		snap.Orders = append(snap.Orders, contractx.Order{
			OrderID:   row.OrderID,
			Email:     row.Email,
			CreatedAt: row.CreatedAt.UTC(),
			Items:     row.Items,
		})
	}
	return snap, nil
}

func (s *PostgresSource) productQuery(dest *[]productRow) *bun.SelectQuery {
	return s.db.NewSelect().Model(dest).OrderExpr("p.id ASC")
}

func (s *PostgresSource) orderQuery(dest *[]orderRow) *bun.SelectQuery {
	return s.db.NewSelect().Model(dest).OrderExpr("o.created_at ASC, o.order_id ASC")
}

func (s *PostgresSource) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
