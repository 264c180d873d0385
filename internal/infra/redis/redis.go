package redis

import (
	"context"

	r "github.com/redis/go-redis/v9"
)

// NewClient はRedisクライアントを作って疎通確認まで行う。
func NewClient(ctx context.Context, addr string, password string, db int) (*r.Client, error) {
	client := r.NewClient(&r.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}
