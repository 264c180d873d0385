package cart

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "cart:"

// カートの保存期間。買い物を放置しても30日は残す。
const defaultTTL = 30 * 24 * time.Hour

// カートトークンごとにシリアライズしたカートを保存する。
// 元のストアはブラウザのlocalStorage相当の「壊れていたら空に戻す」ポリシー。
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb, ttl: defaultTTL}
}

// Load はトークンのカートを読む。
// キーが無い場合は空カート。中身が壊れていてもDecodeが空カートにする。
func (s *Store) Load(ctx context.Context, token string) (*Cart, error) {
	data, err := s.rdb.Get(ctx, keyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return New(), nil
	}
	if err != nil {
		return nil, err
	}
	return Decode(data), nil
}

func (s *Store) Save(ctx context.Context, token string, c *Cart) error {
	return s.rdb.Set(ctx, keyPrefix+token, c.Encode(), s.ttl).Err()
}

func (s *Store) Delete(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, keyPrefix+token).Err()
}
