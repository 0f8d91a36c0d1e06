package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"pairScope/internal/model"
	"pairScope/internal/pairlist"
)

// DefaultPrefix namespaces every key written by this package.
const DefaultPrefix = "pairlist:"

// ErrNotPublished is returned when a producer has no live snapshot.
var ErrNotPublished = errors.New("producer has not published a pairlist")

func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func producerKey(prefix, producer string) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return prefix + "producer:" + producer
}

// Publisher writes every published list under the producer key so that
// other instances can consume it through ProducerPairList.
type Publisher struct {
	client   redis.Cmdable
	prefix   string
	producer string
	ttl      time.Duration
	now      func() time.Time
}

func NewPublisher(client redis.Cmdable, prefix, producer string, ttl time.Duration) *Publisher {
	return &Publisher{client: client, prefix: prefix, producer: producer, ttl: ttl, now: time.Now}
}

// ObserveRefresh stores the report's pairs as a PairlistSnapshot.
func (p *Publisher) ObserveRefresh(ctx context.Context, report pairlist.RefreshReport) error {
	pairs := report.Pairs
	if pairs == nil {
		pairs = []string{}
	}
	data, err := json.Marshal(model.PairlistSnapshot{
		RunID:     report.RunID,
		Producer:  p.producer,
		Pairs:     pairs,
		UpdatedAt: p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := p.client.Set(ctx, producerKey(p.prefix, p.producer), data, p.ttl).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", p.producer, err)
	}
	return nil
}

// Source reads snapshots written by Publisher.
type Source struct {
	client redis.Cmdable
	prefix string
}

func NewSource(client redis.Cmdable, prefix string) *Source {
	return &Source{client: client, prefix: prefix}
}

// Snapshot loads the latest snapshot of producer.
func (s *Source) Snapshot(ctx context.Context, producer string) (model.PairlistSnapshot, error) {
	data, err := s.client.Get(ctx, producerKey(s.prefix, producer)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.PairlistSnapshot{}, fmt.Errorf("%s: %w", producer, ErrNotPublished)
		}
		return model.PairlistSnapshot{}, fmt.Errorf("read %s: %w", producer, err)
	}
	var snapshot model.PairlistSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return model.PairlistSnapshot{}, fmt.Errorf("decode %s: %w", producer, err)
	}
	return snapshot, nil
}

// Resolve returns a provider bound to producer. It satisfies pairlist.RemoteSource.
func (s *Source) Resolve(producer string) pairlist.RemotePairProvider {
	return func(ctx context.Context) ([]string, error) {
		snapshot, err := s.Snapshot(ctx, producer)
		if err != nil {
			return nil, err
		}
		return snapshot.Pairs, nil
	}
}
