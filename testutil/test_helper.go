/*
 * @module testutil/test_helper
 * @description 测试工具和辅助函数
 * @architecture 测试基础设施 - 提供测试通用工具和数据工厂
 * @documentReference ai_docs/data_quality_pipeline.md
 * @stateFlow 测试环境初始化 -> 测试数据创建 -> 测试执行 -> 清理资源
 * @rules 提供可重用的测试工具，确保测试环境的一致性
 * @dependencies gorm, sqlite, testify
 * @refs service/models
 */

package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dataquality-service/service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB 测试数据库
type TestDB struct {
	DB *gorm.DB
}

// NewTestDB 创建内存 sqlite 测试数据库，单连接保证表在同一库中可见
func NewTestDB() *TestDB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect test database: %v", err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		panic(fmt.Sprintf("failed to get sql.DB: %v", err))
	}
	sqlDB.SetMaxOpenConns(1)

	return &TestDB{DB: db}
}

// CreateTable 建表并逐行插入数据
func (tdb *TestDB) CreateTable(t *testing.T, table string, ddl string, rows ...[]interface{}) {
	t.Helper()
	require.NoError(t, tdb.DB.Exec(fmt.Sprintf("CREATE TABLE %s (%s)", table, ddl)).Error)
	for _, row := range rows {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(row)), ",")
		require.NoError(t, tdb.DB.Exec(fmt.Sprintf("INSERT INTO %s VALUES (%s)", table, placeholders), row...).Error)
	}
}

// Close 关闭测试数据库
func (tdb *TestDB) Close() {
	if sqlDB, err := tdb.DB.DB(); err == nil {
		sqlDB.Close()
	}
}

// DatasetFactory 数据集工厂
type DatasetFactory struct {
	counter int
}

// NewDatasetFactory 创建数据集工厂
func NewDatasetFactory() *DatasetFactory {
	return &DatasetFactory{}
}

// DatasetOption 数据集选项
type DatasetOption func(*models.Dataset)

// WithName 设置名称
func WithName(name string) DatasetOption {
	return func(d *models.Dataset) {
		d.Name = name
	}
}

// WithColumns 设置列
func WithColumns(columns ...string) DatasetOption {
	return func(d *models.Dataset) {
		d.SetColumns(columns)
	}
}

// WithRows 替换全部数据行
func WithRows(rows ...map[string]interface{}) DatasetOption {
	return func(d *models.Dataset) {
		d.SetData(rows)
	}
}

// WithMetadata 添加元数据
func WithMetadata(key string, value interface{}) DatasetOption {
	return func(d *models.Dataset) {
		d.Metadata[key] = value
	}
}

// CreateDataset 创建数据集，默认包含三行干净的客户数据
func (f *DatasetFactory) CreateDataset(opts ...DatasetOption) *models.Dataset {
	f.counter++
	dataset := models.NewDataset(
		fmt.Sprintf("test-dataset-%d", f.counter),
		fmt.Sprintf("Test Dataset %d", f.counter),
		[]string{"id", "name", "email", "age"},
		[]map[string]interface{}{
			{"id": 1, "name": "Ann Lee", "email": "ann@example.com", "age": 31},
			{"id": 2, "name": "Ben Ode", "email": "ben@example.com", "age": 42},
			{"id": 3, "name": "Cy Park", "email": "cy@example.com", "age": 27},
		},
	)
	for _, opt := range opts {
		opt(dataset)
	}
	return dataset
}

// HTTPTestHelper HTTP测试辅助工具
type HTTPTestHelper struct{}

// NewHTTPTestHelper 创建HTTP测试辅助工具
func NewHTTPTestHelper() *HTTPTestHelper {
	return &HTTPTestHelper{}
}

// CreateJSONRequest 创建JSON请求
func (h *HTTPTestHelper) CreateJSONRequest(method, url string, body interface{}) (*http.Request, error) {
	var reqBody io.Reader

	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// Serve 执行请求并返回响应记录
func (h *HTTPTestHelper) Serve(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

// DecodeJSON 解析响应体
func (h *HTTPTestHelper) DecodeJSON(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), target), "响应体: %s", w.Body.String())
}

// AssertJSONResponse 断言JSON响应
func (h *HTTPTestHelper) AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedBody interface{}) {
	assert.Equal(t, expectedStatus, w.Code)

	if expectedBody != nil {
		var actualBody interface{}
		err := json.Unmarshal(w.Body.Bytes(), &actualBody)
		assert.NoError(t, err)

		expectedJSON, _ := json.Marshal(expectedBody)
		actualJSON, _ := json.Marshal(actualBody)

		assert.JSONEq(t, string(expectedJSON), string(actualJSON))
	}
}
