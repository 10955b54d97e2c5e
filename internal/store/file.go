package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/reconsole/internal/values"
)

// FileStore 将配置记录保存为本地 YAML 文件，相对路径基于 Dir
type FileStore struct {
	Dir string
}

// NewFileStore 创建文件存储
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func (s *FileStore) resolve(path string) string {
	if filepath.IsAbs(path) || s.Dir == "" {
		return path
	}
	return filepath.Join(s.Dir, path)
}

// Load 读取并解析配置记录
func (s *FileStore) Load(ctx context.Context, path string) (values.ScanConfig, error) {
	if err := ctx.Err(); err != nil {
		return values.ScanConfig{}, loadError(path, err)
	}
	full := s.resolve(path)

	data, err := os.ReadFile(full)
	if err != nil {
		return values.ScanConfig{}, loadError(path, fmt.Errorf("error reading config file: %w", err))
	}

	cfg, err := decode(data)
	if err != nil {
		return values.ScanConfig{}, loadError(path, err)
	}

	logrus.Infof("store: loaded %s (%d angles)", full, len(cfg.Angles))
	return cfg, nil
}

// Save 写入配置记录。先写临时文件再改名，避免留下半截文件
func (s *FileStore) Save(ctx context.Context, path string, cfg values.ScanConfig) error {
	if err := ctx.Err(); err != nil {
		return saveError(path, err)
	}
	full := s.resolve(path)

	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return saveError(path, fmt.Errorf("error creating config directory: %w", err))
	}

	data, err := encode(cfg)
	if err != nil {
		return saveError(path, fmt.Errorf("error marshaling config: %w", err))
	}

	tmp, err := os.CreateTemp(dir, ".recon-*.yaml")
	if err != nil {
		return saveError(path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return saveError(path, fmt.Errorf("error writing config file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return saveError(path, err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return saveError(path, err)
	}

	logrus.Infof("store: saved %s", full)
	return nil
}
