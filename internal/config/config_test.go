package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"pairScope/internal/pairlist"
)

const pipelineYAML = `
log-level: debug
markets: ./snap/markets.jsonl
refresh_period: 600
pairlist_filters:
  - method: VolumePairList
    number_assets: 20
    sort_key: quoteVolume
    min_value: 0
  - method: SpreadFilter
    max_spread_ratio: 0.005
  - method: BlacklistFilter
    blacklist: [DOGE/USDT, SHIB/USDT]
`

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadPipelineFromYAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, "pairlist.yaml", pipelineYAML), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Fatalf("log level mismatch: %s", cfg.LogLevel)
	}
	if cfg.Markets != "./snap/markets.jsonl" {
		t.Fatalf("markets mismatch: %s", cfg.Markets)
	}
	if cfg.Pipeline.RefreshPeriod != 600 {
		t.Fatalf("refresh period mismatch: %d", cfg.Pipeline.RefreshPeriod)
	}
	if len(cfg.Pipeline.Filters) != 3 {
		t.Fatalf("filter count mismatch: %d", len(cfg.Pipeline.Filters))
	}

	methods := []string{}
	for _, opts := range cfg.Pipeline.Filters {
		methods = append(methods, opts.Method())
	}
	want := []string{pairlist.MethodVolumePairList, pairlist.MethodSpreadFilter, pairlist.MethodBlacklistFilter}
	for i := range want {
		if methods[i] != want[i] {
			t.Fatalf("method order mismatch: %v", methods)
		}
	}
	if _, err := pairlist.NewRegistry().CreateFromConfig(cfg.Pipeline.Filters[2], nil); err != nil {
		t.Fatalf("blacklist declaration should configure: %v", err)
	}
}

func TestLoadPipelineFromJSON(t *testing.T) {
	body := `{"refresh_period": 30, "pairlist_filters": [{"method": "OffsetFilter", "Offset": 2, "number_assets": 3}]}`
	cfg, err := Load(writeConfig(t, "pairlist.json", body), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Pipeline.Filters) != 1 {
		t.Fatalf("filter count mismatch: %d", len(cfg.Pipeline.Filters))
	}
	if _, ok := cfg.Pipeline.Filters[0]["offset"]; !ok {
		t.Fatalf("option keys should be lower-cased: %v", cfg.Pipeline.Filters[0])
	}
}

func TestLoadDefaultsAndFlags(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("tickers", "", "")
	flags.Duration("provider-timeout", 0, "")
	if err := flags.Parse([]string{"--tickers=/tmp/t.jsonl", "--provider-timeout=5s"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(writeConfig(t, "empty.yaml", "log-level: warn\n"), flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Tickers != "/tmp/t.jsonl" {
		t.Fatalf("tickers flag not applied: %s", cfg.Tickers)
	}
	if cfg.ProviderTimeout != 5*time.Second {
		t.Fatalf("timeout flag not applied: %s", cfg.ProviderTimeout)
	}
	if cfg.MaxRetries != 3 || !cfg.CheckpointEnabled || cfg.RedisPrefix != "pairlist:" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if len(cfg.Pipeline.Filters) != 0 {
		t.Fatalf("expected no filters: %+v", cfg.Pipeline)
	}
}

func TestLoadRejectsMalformedFilterList(t *testing.T) {
	if _, err := Load(writeConfig(t, "bad.yaml", "pairlist_filters: 12\n"), nil); err == nil {
		t.Fatalf("expected error for non-list pairlist_filters")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
