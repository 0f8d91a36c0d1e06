package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairScope/internal/model"
	"pairScope/internal/pairlist"
)

func TestPublisherSetsSnapshot(t *testing.T) {
	db, mock := redismock.NewClientMock()
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	pub := NewPublisher(db, "", "main", 2*time.Hour)
	pub.now = func() time.Time { return fixed }

	want, err := json.Marshal(model.PairlistSnapshot{
		RunID:     "run-1",
		Producer:  "main",
		Pairs:     []string{"BTC/USDT", "ETH/USDT"},
		UpdatedAt: fixed,
	})
	require.NoError(t, err)
	mock.ExpectSet("pairlist:producer:main", want, 2*time.Hour).SetVal("OK")

	err = pub.ObserveRefresh(context.Background(), pairlist.RefreshReport{
		RunID: "run-1",
		Pairs: []string{"BTC/USDT", "ETH/USDT"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublisherReportsRedisError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	pub := NewPublisher(db, "x:", "side", 0)
	pub.now = func() time.Time { return fixed }

	want, _ := json.Marshal(model.PairlistSnapshot{Producer: "side", Pairs: []string{}, UpdatedAt: fixed})
	mock.ExpectSet("x:producer:side", want, 0).SetErr(redis.TxFailedErr)

	err := pub.ObserveRefresh(context.Background(), pairlist.RefreshReport{})
	assert.ErrorIs(t, err, redis.TxFailedErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSourceResolve(t *testing.T) {
	db, mock := redismock.NewClientMock()
	src := NewSource(db, "")

	data, _ := json.Marshal(model.PairlistSnapshot{Producer: "main", Pairs: []string{"SOL/USDT", "ADA/USDT"}})
	mock.ExpectGet("pairlist:producer:main").SetVal(string(data))

	pairs, err := src.Resolve("main")(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"SOL/USDT", "ADA/USDT"}, pairs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSourceMissingProducer(t *testing.T) {
	db, mock := redismock.NewClientMock()
	src := NewSource(db, "")

	mock.ExpectGet("pairlist:producer:ghost").RedisNil()

	_, err := src.Resolve("ghost")(context.Background())
	assert.ErrorIs(t, err, ErrNotPublished)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSourceCorruptSnapshot(t *testing.T) {
	db, mock := redismock.NewClientMock()
	src := NewSource(db, "")

	mock.ExpectGet("pairlist:producer:main").SetVal("{not json")

	_, err := src.Snapshot(context.Background(), "main")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotPublished)
}
