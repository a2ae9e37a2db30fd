/*
 * @module service/models/dataset
 * @description 内存数据集模型，承载待评估的表格数据（列名有序、单元格弱类型、允许空值）
 * @architecture 分层架构 - 数据模型层
 * @documentReference ai_docs/data_quality_pipeline.md
 * @stateFlow 创建数据集 -> 质量分析 -> 修复生成新数据集 -> 再次分析
 * @rules rowCount/columnCount 与行列保持一致；缺失键与显式 nil 均视为空值
 * @dependencies github.com/google/uuid
 * @refs service/agents, service/orchestration
 */

package models

import (
	"time"

	"github.com/google/uuid"
)

// Dataset 表格数据集
type Dataset struct {
	ID          string                   `json:"id"`
	Name        string                   `json:"name"`
	Columns     []string                 `json:"columns"`
	Data        []map[string]interface{} `json:"data"`
	Metadata    map[string]interface{}   `json:"metadata,omitempty"`
	CreatedAt   time.Time                `json:"createdAt"`
	RowCount    int                      `json:"rowCount"`
	ColumnCount int                      `json:"columnCount"`
}

// NewDataset 创建数据集，id 为空时自动生成
func NewDataset(id, name string, columns []string, data []map[string]interface{}) *Dataset {
	if id == "" {
		id = uuid.New().String()
	}
	ds := &Dataset{
		ID:        id,
		Name:      name,
		Metadata:  make(map[string]interface{}),
		CreatedAt: time.Now(),
	}
	ds.SetColumns(columns)
	ds.SetData(data)
	return ds
}

// SetData 替换数据行并重新计算行数
func (d *Dataset) SetData(data []map[string]interface{}) {
	if data == nil {
		data = []map[string]interface{}{}
	}
	d.Data = data
	d.RowCount = len(data)
}

// SetColumns 替换列定义并重新计算列数
func (d *Dataset) SetColumns(columns []string) {
	if columns == nil {
		columns = []string{}
	}
	d.Columns = columns
	d.ColumnCount = len(columns)
}

// Normalize 反序列化后修正计数与元数据，请求体中的 rowCount/columnCount 不可信
func (d *Dataset) Normalize() {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	if d.Metadata == nil {
		d.Metadata = make(map[string]interface{})
	}
	d.SetColumns(d.Columns)
	d.SetData(d.Data)
}

// WithData 基于新的数据行派生数据集，保留标识、列与元数据
func (d *Dataset) WithData(data []map[string]interface{}) *Dataset {
	columns := make([]string, len(d.Columns))
	copy(columns, d.Columns)

	metadata := make(map[string]interface{}, len(d.Metadata))
	for k, v := range d.Metadata {
		metadata[k] = v
	}

	derived := &Dataset{
		ID:        d.ID,
		Name:      d.Name,
		Metadata:  metadata,
		CreatedAt: d.CreatedAt,
	}
	derived.SetColumns(columns)
	derived.SetData(data)
	return derived
}

// CopyRows 深拷贝数据行（单元格值为标量，浅拷贝每行映射即可）
func (d *Dataset) CopyRows() []map[string]interface{} {
	rows := make([]map[string]interface{}, len(d.Data))
	for i, row := range d.Data {
		copied := make(map[string]interface{}, len(row))
		for k, v := range row {
			copied[k] = v
		}
		rows[i] = copied
	}
	return rows
}

// IsEmpty 数据集是否没有任何数据行
func (d *Dataset) IsEmpty() bool {
	return len(d.Data) == 0
}
