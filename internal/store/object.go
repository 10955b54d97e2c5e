package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/reconsole/internal/utils"
	"github.com/HaiFongPan/reconsole/internal/values"
)

// S3ClientInterface 定义 S3 客户端接口，便于测试
type S3ClientInterface interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// maxRecordSize 限制单个配置记录的大小
const maxRecordSize = 4 << 20

// ObjectStore 将配置记录保存在 R2/S3 桶中，路径映射为 prefix 下的对象键
type ObjectStore struct {
	client S3ClientInterface
	bucket string
	prefix string
}

// NewObjectStore 创建对象存储
func NewObjectStore(client S3ClientInterface, bucket, prefix string) *ObjectStore {
	return &ObjectStore{client: client, bucket: bucket, prefix: prefix}
}

// Key 返回路径对应的对象键
func (s *ObjectStore) Key(p string) string {
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	if s.prefix == "" {
		return p
	}
	return strings.TrimSuffix(s.prefix, "/") + "/" + p
}

// Load 下载并解析配置记录
func (s *ObjectStore) Load(ctx context.Context, p string) (values.ScanConfig, error) {
	key := s.Key(p)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return values.ScanConfig{}, loadError(p, fmt.Errorf("no object %s in bucket %s", key, s.bucket))
		}
		return values.ScanConfig{}, loadError(p, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, maxRecordSize+1))
	if err != nil {
		return values.ScanConfig{}, loadError(p, err)
	}
	if len(data) > maxRecordSize {
		return values.ScanConfig{}, loadError(p, fmt.Errorf("object %s exceeds %d bytes", key, maxRecordSize))
	}

	cfg, err := decode(data)
	if err != nil {
		return values.ScanConfig{}, loadError(p, err)
	}
	logrus.Infof("store: loaded s3://%s/%s", s.bucket, key)
	return cfg, nil
}

// Save 编码并上传配置记录
func (s *ObjectStore) Save(ctx context.Context, p string, cfg values.ScanConfig) error {
	data, err := encode(cfg)
	if err != nil {
		return saveError(p, fmt.Errorf("error marshaling config: %w", err))
	}

	key := s.Key(p)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(utils.ContentType(key)),
	})
	if err != nil {
		return saveError(p, err)
	}
	logrus.Infof("store: saved s3://%s/%s", s.bucket, key)
	return nil
}
