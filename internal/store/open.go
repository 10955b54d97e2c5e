package store

import (
	"context"
	"fmt"
	"time"

	"github.com/HaiFongPan/reconsole/internal/config"
	"github.com/HaiFongPan/reconsole/internal/engine"
	"github.com/HaiFongPan/reconsole/internal/r2"
	"github.com/HaiFongPan/reconsole/internal/values"
)

// Open 根据 store.backend 构造配置存储
func Open(ctx context.Context, cfg *config.Config) (engine.ConfigStore, error) {
	var s engine.ConfigStore
	switch cfg.Store.Backend {
	case "", "file":
		// 相对路径基于当前工作目录
		s = NewFileStore("")
	case "r2":
		client, err := r2.NewClient(ctx, &cfg.R2)
		if err != nil {
			return nil, fmt.Errorf("failed to create R2 client: %w", err)
		}
		s = NewObjectStore(client.GetS3Client(), client.GetBucketName(), client.GetPrefix())
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	return WithTimeout(s, time.Duration(cfg.Store.Timeout)*time.Second), nil
}

// timed 为每次操作附加超时
type timed struct {
	next    engine.ConfigStore
	timeout time.Duration
}

// WithTimeout 包装存储，使每次 Load/Save 最多运行 d；d <= 0 时原样返回
func WithTimeout(s engine.ConfigStore, d time.Duration) engine.ConfigStore {
	if d <= 0 {
		return s
	}
	return &timed{next: s, timeout: d}
}

func (t *timed) Load(ctx context.Context, path string) (values.ScanConfig, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Load(ctx, path)
}

func (t *timed) Save(ctx context.Context, path string, cfg values.ScanConfig) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Save(ctx, path, cfg)
}
