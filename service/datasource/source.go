/*
 * @module service/datasource/source
 * @description 数据集来源抽象，提供文件与数据库表两类来源的公共类型与错误
 * @architecture 适配器模式 - 不同来源统一输出 models.Dataset
 * @documentReference ai_docs/data_quality_pipeline.md
 * @stateFlow 列出来源 -> 按名称加载 -> 转换为数据集
 * @rules 名称非法或不存在返回 ErrNotFound；格式不支持返回 ErrUnsupportedFormat
 * @dependencies dataquality-service/service/models
 * @refs file_source.go, table_source.go
 */

package datasource

import (
	"context"
	"errors"
	"time"

	"dataquality-service/service/models"
)

var (
	// ErrNotFound 来源不存在或名称非法
	ErrNotFound = errors.New("数据源不存在")
	// ErrUnsupportedFormat 文件格式不受支持
	ErrUnsupportedFormat = errors.New("不支持的文件格式")
	// ErrTooLarge 文件超过大小限制
	ErrTooLarge = errors.New("文件超过大小限制")
)

// SourceEntry 可加载的来源条目
type SourceEntry struct {
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Format     string    `json:"format,omitempty"`
	SizeBytes  int64     `json:"sizeBytes,omitempty"`
	ModifiedAt time.Time `json:"modifiedAt,omitempty"`
}

// DatasetSource 数据集来源
type DatasetSource interface {
	// List 列出可加载的条目
	List(ctx context.Context) ([]SourceEntry, error)
	// Load 按名称加载数据集
	Load(ctx context.Context, name string) (*models.Dataset, error)
}
