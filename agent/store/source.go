package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/shopdesk-agent/agent/contract"
	"github.com/tanpawarit/shopdesk-agent/data"
)

const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
	SourceUpstash  = "upstash"
)

type Config struct {
	Source      string        `envconfig:"SOURCE" default:"file"`
	CatalogPath string        `envconfig:"CATALOG_PATH"`
	OrdersPath  string        `envconfig:"ORDERS_PATH"`
	PostgresDSN string        `envconfig:"POSTGRES_DSN"`
	CatalogKey  string        `envconfig:"CATALOG_KEY" default:"shopdesk:catalog"`
	OrdersKey   string        `envconfig:"ORDERS_KEY" default:"shopdesk:orders"`
	LoadTimeout time.Duration `envconfig:"LOAD_TIMEOUT" default:"15s"`
}

// Snapshot is the raw static data a source hands over at startup.
type Snapshot struct {
	Products []contractx.Product
	Orders   []contractx.Order
}

type Source interface {
	Load(ctx context.Context) (Snapshot, error)
}

// Open loads the configured snapshot once and builds the read-only stores.
func Open(ctx context.Context, cfg Config, upstash UpstashRedisConfig) (*Catalog, *Orders, error) {
	src, closeFn, err := newSource(cfg, upstash)
	if err != nil {
		return nil, nil, err
	}
	defer closeFn()

	if cfg.LoadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.LoadTimeout)
		defer cancel()
	}

	snap, err := src.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s snapshot: %w", cfg.Source, err)
	}

	catalog, err := NewCatalog(snap.Products)
	if err != nil {
		return nil, nil, err
	}
	orders, err := NewOrders(snap.Orders)
	if err != nil {
		return nil, nil, err
	}

	log.Info().
		Str("source", strings.ToLower(cfg.Source)).
		Int("products", catalog.Len()).
		Int("orders", orders.Len()).
		Msg("static data loaded")

	return catalog, orders, nil
}

func newSource(cfg Config, upstash UpstashRedisConfig) (Source, func(), error) {
	noop := func() {}

	switch strings.ToLower(strings.TrimSpace(cfg.Source)) {
	case "", SourceFile:
		return FileSource{CatalogPath: cfg.CatalogPath, OrdersPath: cfg.OrdersPath}, noop, nil
	case SourcePostgres:
		pg, err := NewPostgresSource(cfg.PostgresDSN, cfg.LoadTimeout)
		if err != nil {
			return nil, noop, err
		}
		return pg, func() {
			if err := pg.Close(); err != nil {
				log.Warn().Err(err).Msg("close postgres source")
			}
		}, nil
	case SourceUpstash:
		rs, err := NewUpstashRedisSource(upstash, cfg.CatalogKey, cfg.OrdersKey)
		if err != nil {
			return nil, noop, err
		}
		return rs, noop, nil
	default:
		return nil, noop, fmt.Errorf("%w: unknown store source %q", contractx.ErrValidation, cfg.Source)
	}
}

// FileSource reads JSON arrays from disk, falling back to the embedded
// snapshot for any path left empty.
type FileSource struct {
	CatalogPath string
	OrdersPath  string
}

func (f FileSource) Load(ctx context.Context) (Snapshot, error) {
	catalogRaw, err := readOrEmbedded(f.CatalogPath, data.Catalog)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read catalog: %w", err)
	}
	ordersRaw, err := readOrEmbedded(f.OrdersPath, data.Orders)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read orders: %w", err)
	}
	return DecodeSnapshot(catalogRaw, ordersRaw)
}

// DecodeSnapshot parses the catalog and order JSON arrays.
func DecodeSnapshot(catalogRaw, ordersRaw []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(catalogRaw, &snap.Products); err != nil {
		return Snapshot{}, fmt.Errorf("%w: decode catalog: %v", contractx.ErrValidation, err)
	}
	if err := json.Unmarshal(ordersRaw, &snap.Orders); err != nil {
		return Snapshot{}, fmt.Errorf("%w: decode orders: %v", contractx.ErrValidation, err)
	}
	return snap, nil
}

func readOrEmbedded(path string, embedded []byte) ([]byte, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return embedded, nil
	}
	return os.ReadFile(path)
}
