// Package store 提供配置记录的持久化后端：本地 YAML 文件与 R2/S3 对象存储
package store

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/HaiFongPan/reconsole/internal/engine"
	"github.com/HaiFongPan/reconsole/internal/values"
)

var (
	// ErrConfigLoadFailed 读取配置记录失败
	ErrConfigLoadFailed = errors.New("config load failed")
	// ErrConfigSaveFailed 写入配置记录失败
	ErrConfigSaveFailed = errors.New("config save failed")
)

// formatVersion 是当前写入的文档版本
const formatVersion = 1

// Op 标识持久化操作
type Op string

const (
	OpLoad Op = "load"
	OpSave Op = "save"
)

// PersistError 包装持久化相关的错误
type PersistError struct {
	Op   Op
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Op, e.Path, e.Err)
}

// Is 让 errors.Is 同时匹配 ErrConfigLoadFailed / ErrConfigSaveFailed
func (e *PersistError) Is(target error) bool {
	switch target {
	case ErrConfigLoadFailed:
		return e.Op == OpLoad
	case ErrConfigSaveFailed:
		return e.Op == OpSave
	}
	return false
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

func loadError(path string, err error) error {
	return &PersistError{Op: OpLoad, Path: path, Err: err}
}

func saveError(path string, err error) error {
	return &PersistError{Op: OpSave, Path: path, Err: err}
}

// document 是配置记录在磁盘或对象存储中的布局
type document struct {
	Version int               `yaml:"version"`
	Scan    values.ScanConfig `yaml:"scan"`
}

// encode 将配置记录编码为 YAML
func encode(cfg values.ScanConfig) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(document{Version: formatVersion, Scan: cfg}); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decode 解析 YAML，拒绝未知字段与更高的版本
func decode(data []byte) (values.ScanConfig, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return values.ScanConfig{}, fmt.Errorf("error parsing config record: %w", err)
	}
	if doc.Version == 0 || doc.Version > formatVersion {
		return values.ScanConfig{}, fmt.Errorf("unsupported config record version %d", doc.Version)
	}
	return doc.Scan, nil
}

// Static 检查两个后端都实现了 ConfigStore
var (
	_ engine.ConfigStore = (*FileStore)(nil)
	_ engine.ConfigStore = (*ObjectStore)(nil)
)
