package provider

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"pairScope/internal/model"
	"pairScope/internal/pairlist"
)

// JSONLMarkets reads market metadata from a JSONL snapshot on every call.
func JSONLMarkets(path string, logger *zap.Logger) pairlist.MarketProvider {
	return func(ctx context.Context) ([]model.MarketInfo, error) {
		return readJSONL[model.MarketInfo](ctx, path, logger)
	}
}

// JSONLTickers reads tickers from a JSONL snapshot on every call. Records
// without a symbol are skipped; later duplicates win.
func JSONLTickers(path string, logger *zap.Logger) pairlist.TickerProvider {
	return func(ctx context.Context) (map[string]model.TickerInfo, error) {
		records, err := readJSONL[model.TickerInfo](ctx, path, logger)
		if err != nil {
			return nil, err
		}
		out := make(map[string]model.TickerInfo, len(records))
		for _, ticker := range records {
			if ticker.Symbol == "" {
				continue
			}
			out[ticker.Symbol] = ticker
		}
		return out, nil
	}
}

// JSONPerformance reads a {"symbol": profit_ratio} object on every call.
func JSONPerformance(path string) pairlist.PerformanceProvider {
	return func(ctx context.Context) (map[string]float64, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read performance: %w", err)
		}
		scores := make(map[string]float64)
		if err := json.Unmarshal(data, &scores); err != nil {
			return nil, fmt.Errorf("parse performance: %w", err)
		}
		return scores, nil
	}
}

func readJSONL[T any](ctx context.Context, path string, logger *zap.Logger) ([]T, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var records []T
	var line, failed int
	for scanner.Scan() {
		line++
		if line%1024 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var record T
		if err := json.Unmarshal(raw, &record); err != nil {
			failed++
			logger.Warn("decode snapshot line", zap.String("path", path), zap.Int("line", line), zap.Error(err))
			continue
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan snapshot: %w", err)
	}

	logger.Debug("snapshot loaded", zap.String("path", path), zap.Int("records", len(records)), zap.Int("failed", failed))
	return records, nil
}
