package sweep

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const lastRunKey = "sweep:last"

// Store は掃除の実行記録を Redis に保存します。
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore は Store を作成します。
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{
		rdb: rdb,
		ttl: ttl,
	}
}

// Last は直近の実行記録を取得します。記録が無い場合は nil を返します。
func (s *Store) Last(ctx context.Context) (*Record, error) {
	data, err := s.rdb.Get(ctx, lastRunKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Put は実行記録を保存します。
func (s *Store) Put(ctx context.Context, record *Record) error {
	if record == nil {
		return fmt.Errorf("record is nil")
	}
	if record.RanAt.IsZero() {
		record.RanAt = time.Now().UTC()
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, lastRunKey, payload, s.ttl).Err()
}
