/*
 * @module service/datasource/table_source
 * @description 数据库表数据源，通过 gorm 读取表数据为数据集
 * @architecture 数据访问层 - 只读查询
 * @documentReference ai_docs/data_quality_pipeline.md
 * @stateFlow 校验表名 -> 检查表存在 -> 限量查询 -> 扫描行 -> 构建数据集
 * @rules 表名仅允许 [schema.]identifier 形式；查询带 LIMIT；字节数组转为字符串
 * @dependencies gorm.io/gorm, gorm.io/driver/postgres
 * @refs service/datasource/source.go
 */

package datasource

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"dataquality-service/service/config"
	"dataquality-service/service/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultTableRowLimit = 10000

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// TableSource 数据库表数据源
type TableSource struct {
	db       *gorm.DB
	rowLimit int
}

// NewTableSource 基于已有连接创建表数据源
func NewTableSource(db *gorm.DB, rowLimit int) *TableSource {
	if rowLimit <= 0 {
		rowLimit = defaultTableRowLimit
	}
	return &TableSource{db: db, rowLimit: rowLimit}
}

// OpenTableSource 按配置连接 PostgreSQL 并创建表数据源
func OpenTableSource(cfg config.SourcesConfig) (*TableSource, error) {
	if cfg.DatabaseDSN == "" {
		return nil, fmt.Errorf("未配置数据库连接串")
	}
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}
	slog.Info("表数据源连接成功")
	return NewTableSource(db, cfg.TableRowLimit), nil
}

// Ping 检查数据库连接
func (s *TableSource) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// List 列出当前库中的表
func (s *TableSource) List(ctx context.Context) ([]SourceEntry, error) {
	tables, err := s.db.WithContext(ctx).Migrator().GetTables()
	if err != nil {
		return nil, fmt.Errorf("获取表列表失败: %w", err)
	}
	entries := make([]SourceEntry, 0, len(tables))
	for _, table := range tables {
		entries = append(entries, SourceEntry{Name: table, Type: "table"})
	}
	return entries, nil
}

// Load 读取表数据，最多 rowLimit 行
func (s *TableSource) Load(ctx context.Context, table string) (*models.Dataset, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("%w: 非法表名 %q", ErrNotFound, table)
	}

	db := s.db.WithContext(ctx)
	if !db.Migrator().HasTable(table) {
		return nil, fmt.Errorf("%w: 表 %s", ErrNotFound, table)
	}

	query := fmt.Sprintf("SELECT * FROM %s LIMIT %d", db.Statement.Quote(table), s.rowLimit)
	rows, err := db.Raw(query).Rows()
	if err != nil {
		return nil, fmt.Errorf("查询数据失败: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("获取列名失败: %w", err)
	}

	data := make([]map[string]interface{}, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("扫描行数据失败: %w", err)
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历数据失败: %w", err)
	}

	dataset := models.NewDataset("", table, columns, data)
	dataset.Metadata["sourceTable"] = table
	dataset.Metadata["rowLimit"] = s.rowLimit

	slog.Info("表数据集加载完成", "table", table, "rows", dataset.RowCount, "columns", dataset.ColumnCount)
	return dataset, nil
}
