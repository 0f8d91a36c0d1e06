package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pairScope/internal/model"
	"pairScope/internal/pairlist"
)

const schema = `
CREATE TABLE IF NOT EXISTS markets (
	symbol           TEXT PRIMARY KEY,
	base             TEXT NOT NULL DEFAULT '',
	quote            TEXT NOT NULL DEFAULT '',
	pair_type        TEXT NOT NULL DEFAULT 'spot',
	active           BOOLEAN NOT NULL DEFAULT TRUE,
	min_amount       DOUBLE PRECISION NOT NULL DEFAULT 0,
	max_amount       DOUBLE PRECISION NOT NULL DEFAULT 0,
	min_price        DOUBLE PRECISION NOT NULL DEFAULT 0,
	max_price        DOUBLE PRECISION NOT NULL DEFAULT 0,
	min_cost         DOUBLE PRECISION NOT NULL DEFAULT 0,
	amount_precision INTEGER NOT NULL DEFAULT 0,
	price_precision  INTEGER NOT NULL DEFAULT 0,
	maker_fee        DOUBLE PRECISION NOT NULL DEFAULT 0,
	taker_fee        DOUBLE PRECISION NOT NULL DEFAULT 0,
	listed_at        TIMESTAMPTZ,
	market_cap       DOUBLE PRECISION NOT NULL DEFAULT 0,
	market_cap_rank  INTEGER NOT NULL DEFAULT 0,
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS pair_performance (
	symbol       TEXT PRIMARY KEY,
	profit_ratio DOUBLE PRECISION NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS pairlist_refreshes (
	run_id        TEXT PRIMARY KEY,
	started_at    TIMESTAMPTZ NOT NULL,
	duration_ms   BIGINT NOT NULL,
	initial_pairs INTEGER NOT NULL,
	tickers       INTEGER NOT NULL,
	pair_count    INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS pairlist_pairs (
	run_id   TEXT NOT NULL REFERENCES pairlist_refreshes (run_id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	symbol   TEXT NOT NULL,
	PRIMARY KEY (run_id, position)
);
`

// Store provides Postgres persistence for market data and pairlist history.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate creates the tables when they are missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// UpsertMarkets inserts or updates market metadata.
func (s *Store) UpsertMarkets(ctx context.Context, markets []model.MarketInfo) error {
	if len(markets) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, m := range markets {
		var listedAt *time.Time
		if !m.ListedAt.IsZero() {
			ts := m.ListedAt.UTC()
			listedAt = &ts
		}
		batch.Queue(`
			INSERT INTO markets (
				symbol, base, quote, pair_type, active, min_amount, max_amount, min_price, max_price, min_cost,
				amount_precision, price_precision, maker_fee, taker_fee, listed_at, market_cap, market_cap_rank, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,now())
			ON CONFLICT (symbol)
			DO UPDATE SET
				base = EXCLUDED.base,
				quote = EXCLUDED.quote,
				pair_type = EXCLUDED.pair_type,
				active = EXCLUDED.active,
				min_amount = EXCLUDED.min_amount,
				max_amount = EXCLUDED.max_amount,
				min_price = EXCLUDED.min_price,
				max_price = EXCLUDED.max_price,
				min_cost = EXCLUDED.min_cost,
				amount_precision = EXCLUDED.amount_precision,
				price_precision = EXCLUDED.price_precision,
				maker_fee = EXCLUDED.maker_fee,
				taker_fee = EXCLUDED.taker_fee,
				listed_at = EXCLUDED.listed_at,
				market_cap = EXCLUDED.market_cap,
				market_cap_rank = EXCLUDED.market_cap_rank,
				updated_at = now()
		`,
			m.Symbol,
			m.Base,
			m.Quote,
			string(model.ParsePairType(string(m.Type))),
			m.Active,
			m.MinAmount,
			m.MaxAmount,
			m.MinPrice,
			m.MaxPrice,
			m.MinCost,
			m.AmountPrecision,
			m.PricePrecision,
			m.MakerFee,
			m.TakerFee,
			listedAt,
			m.MarketCap,
			m.MarketCapRank,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range markets {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadMarkets returns every stored market. It satisfies pairlist.MarketProvider.
func (s *Store) LoadMarkets(ctx context.Context) ([]model.MarketInfo, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT symbol, base, quote, pair_type, active, min_amount, max_amount, min_price, max_price, min_cost,
			amount_precision, price_precision, maker_fee, taker_fee, listed_at, market_cap, market_cap_rank
		FROM markets
		ORDER BY symbol
	`)
	if err != nil {
		return nil, fmt.Errorf("query markets: %w", err)
	}
	defer rows.Close()

	var out []model.MarketInfo
	for rows.Next() {
		var (
			m        model.MarketInfo
			pairType string
			listedAt *time.Time
		)
		if err := rows.Scan(
			&m.Symbol, &m.Base, &m.Quote, &pairType, &m.Active,
			&m.MinAmount, &m.MaxAmount, &m.MinPrice, &m.MaxPrice, &m.MinCost,
			&m.AmountPrecision, &m.PricePrecision, &m.MakerFee, &m.TakerFee,
			&listedAt, &m.MarketCap, &m.MarketCapRank,
		); err != nil {
			return nil, fmt.Errorf("scan market: %w", err)
		}
		m.Type = model.ParsePairType(pairType)
		if listedAt != nil {
			m.ListedAt = listedAt.UTC()
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate markets: %w", err)
	}
	return out, nil
}

// UpsertPerformance stores profit ratios keyed by symbol.
func (s *Store) UpsertPerformance(ctx context.Context, scores map[string]float64) error {
	if len(scores) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for symbol, ratio := range scores {
		batch.Queue(`
			INSERT INTO pair_performance (symbol, profit_ratio, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (symbol) DO UPDATE
			SET profit_ratio = EXCLUDED.profit_ratio, updated_at = now()
		`, symbol, ratio)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range scores {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadPerformance returns stored profit ratios. It satisfies pairlist.PerformanceProvider.
func (s *Store) LoadPerformance(ctx context.Context) (map[string]float64, error) {
	rows, err := s.pool.Query(ctx, `SELECT symbol, profit_ratio FROM pair_performance`)
	if err != nil {
		return nil, fmt.Errorf("query performance: %w", err)
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var (
			symbol string
			ratio  float64
		)
		if err := rows.Scan(&symbol, &ratio); err != nil {
			return nil, fmt.Errorf("scan performance: %w", err)
		}
		out[symbol] = ratio
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate performance: %w", err)
	}
	return out, nil
}

// PutReport records a published list and its ordering in one transaction.
func (s *Store) PutReport(ctx context.Context, report pairlist.RefreshReport) error {
	if report.RunID == "" {
		return fmt.Errorf("run id required")
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO pairlist_refreshes (run_id, started_at, duration_ms, initial_pairs, tickers, pair_count)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		report.RunID,
		report.StartedAt.UTC(),
		report.Duration.Milliseconds(),
		report.InitialPairs,
		report.Tickers,
		len(report.Pairs),
	)
	for i, pair := range report.Pairs {
		batch.Queue(`INSERT INTO pairlist_pairs (run_id, position, symbol) VALUES ($1, $2, $3)`, report.RunID, i, pair)
	}

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("insert report: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}
	return tx.Commit(ctx)
}

// LatestPairs returns the most recently recorded list in published order.
func (s *Store) LatestPairs(ctx context.Context) ([]string, bool, error) {
	var runID string
	row := s.pool.QueryRow(ctx, `SELECT run_id FROM pairlist_refreshes ORDER BY started_at DESC LIMIT 1`)
	if err := row.Scan(&runID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	rows, err := s.pool.Query(ctx, `SELECT symbol FROM pairlist_pairs WHERE run_id=$1 ORDER BY position`, runID)
	if err != nil {
		return nil, false, fmt.Errorf("query pairs: %w", err)
	}
	pairs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, false, fmt.Errorf("collect pairs: %w", err)
	}
	if pairs == nil {
		pairs = []string{}
	}
	return pairs, true, nil
}
