package storage

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
	"time"

	"SiteFM/config"
	"SiteFM/core/audio"
	"SiteFM/core/bundle"
	"SiteFM/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/samber/lo"
)

// Upload 单个待上传文件
type Upload struct {
	Path        string // 本地路径
	Key         string // 对象名
	ContentType string
	Size        int64
}

// PublishStats 发布结果统计
type PublishStats struct {
	Uploaded int
	Removed  int
	Bytes    int64
}

// BucketStats 存储桶统计信息
type BucketStats struct {
	TotalObjects int64
	TotalSize    int64
	LastModified time.Time
}

// Publisher 把构建产物同步到 MinIO / S3 存储桶
type Publisher struct {
	client *minio.Client
	cfg    config.MinioConfig
}

// NewPublisher 创建 MinIO 客户端
func NewPublisher(cfg config.MinioConfig) (*Publisher, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 MinIO 客户端失败: %w", err)
	}
	return &Publisher{client: client, cfg: cfg}, nil
}

// EnsureBucket 检查存储桶，不存在则创建
func (p *Publisher) EnsureBucket(ctx context.Context) error {
	exists, err := p.client.BucketExists(ctx, p.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("检查存储桶失败: %w", err)
	}
	if exists {
		logger.Debug("存储桶已存在", logger.String("bucket", p.cfg.Bucket))
		return nil
	}
	if err := p.client.MakeBucket(ctx, p.cfg.Bucket, minio.MakeBucketOptions{Region: p.cfg.Region}); err != nil {
		return fmt.Errorf("创建存储桶失败: %w", err)
	}
	logger.Info("成功创建存储桶", logger.String("bucket", p.cfg.Bucket))
	return nil
}

// ObjectKey 本地相对路径对应的对象名
func ObjectKey(prefix, rel string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return rel
	}
	return path.Join(prefix, rel)
}

// CacheControl 清单必须及时刷新，其余文件可以缓存
func CacheControl(key string) string {
	if path.Base(key) == bundle.ManifestName {
		return "no-cache"
	}
	return "public, max-age=3600"
}

// PlanUpload 列出 dir 下所有文件及其对象名
func PlanUpload(dir, prefix string) ([]Upload, error) {
	var uploads []Upload
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		uploads = append(uploads, Upload{
			Path:        p,
			Key:         ObjectKey(prefix, rel),
			ContentType: audio.ContentType(rel),
			Size:        info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uploads, nil
}

// StaleKeys 远端存在但本次构建没有的对象
func StaleKeys(remote []string, uploads []Upload) []string {
	local := lo.Map(uploads, func(u Upload, _ int) string { return u.Key })
	return lo.Without(remote, local...)
}

func (p *Publisher) listKeys(ctx context.Context) ([]string, error) {
	prefix := strings.Trim(p.cfg.Prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	var keys []string
	for obj := range p.client.ListObjects(ctx, p.cfg.Bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("列出对象失败: %w", obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

// Publish 上传 dir，deleteStale 时删除前缀下的过期对象。清单最后上传，
// 避免页面读到引用尚未上传文件的清单。
func (p *Publisher) Publish(ctx context.Context, dir string, deleteStale bool) (PublishStats, error) {
	var stats PublishStats

	uploads, err := PlanUpload(dir, p.cfg.Prefix)
	if err != nil {
		return stats, fmt.Errorf("读取构建目录失败: %w", err)
	}
	manifestKey := ObjectKey(p.cfg.Prefix, bundle.ManifestName)
	isManifest := func(u Upload, _ int) bool { return u.Key == manifestKey }
	rest, manifest := lo.Reject(uploads, isManifest), lo.Filter(uploads, isManifest)

	for _, u := range append(rest, manifest...) {
		_, err := p.client.FPutObject(ctx, p.cfg.Bucket, u.Key, u.Path, minio.PutObjectOptions{
			ContentType:  u.ContentType,
			CacheControl: CacheControl(u.Key),
		})
		if err != nil {
			return stats, fmt.Errorf("上传 %s 失败: %w", u.Key, err)
		}
		stats.Uploaded++
		stats.Bytes += u.Size
		logger.Debug("uploaded", logger.String("key", u.Key), logger.Int64("size", u.Size))
	}

	if deleteStale {
		if err := p.removeStale(ctx, uploads, &stats); err != nil {
			return stats, err
		}
	}

	logger.Info("发布完成",
		logger.String("bucket", p.cfg.Bucket),
		logger.String("prefix", p.cfg.Prefix),
		logger.Int("uploaded", stats.Uploaded),
		logger.Int("removed", stats.Removed),
		logger.Int64("bytes", stats.Bytes))
	return stats, nil
}

func (p *Publisher) removeStale(ctx context.Context, uploads []Upload, stats *PublishStats) error {
	remote, err := p.listKeys(ctx)
	if err != nil {
		return err
	}
	for _, key := range StaleKeys(remote, uploads) {
		if err := p.client.RemoveObject(ctx, p.cfg.Bucket, key, minio.RemoveObjectOptions{}); err != nil {
			logger.Warn("删除过期对象失败", logger.String("key", key), logger.ErrorField(err))
			continue
		}
		stats.Removed++
	}
	return nil
}

// Stats 统计前缀下的对象
func (p *Publisher) Stats(ctx context.Context) (BucketStats, error) {
	var stats BucketStats
	prefix := strings.Trim(p.cfg.Prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	for obj := range p.client.ListObjects(ctx, p.cfg.Bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return stats, fmt.Errorf("列出对象失败: %w", obj.Err)
		}
		stats.TotalObjects++
		stats.TotalSize += obj.Size
		if obj.LastModified.After(stats.LastModified) {
			stats.LastModified = obj.LastModified
		}
	}
	return stats, nil
}
