package datasource

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dataquality-service/service/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func newTestFileSource(dir string) *FileSource {
	return NewFileSource(config.SourcesConfig{
		BaseDir:          dir,
		Encoding:         "utf-8",
		SupportedFormats: []string{"csv", "json"},
		MaxSizeMB:        1,
	})
}

// TestFileSource_LoadCSV 测试CSV解析与类型转换
func TestFileSource_LoadCSV(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "employees.csv", "\xef\xbb\xbfid,name,phone,salary,active\n1,Alice,0123456789,5000.5,true\n2,,5551234567,,false\n3,Bob\n")

	ds, err := newTestFileSource(dir).Load(context.Background(), "employees.csv")
	require.NoError(t, err)

	assert.Equal(t, "employees.csv", ds.Name)
	assert.Equal(t, []string{"id", "name", "phone", "salary", "active"}, ds.Columns)
	assert.Equal(t, 3, ds.RowCount)
	assert.Equal(t, "employees.csv", ds.Metadata["sourceFile"])

	first := ds.Data[0]
	assert.Equal(t, int64(1), first["id"])
	assert.Equal(t, "0123456789", first["phone"])
	assert.Equal(t, 5000.5, first["salary"])
	assert.Equal(t, true, first["active"])

	second := ds.Data[1]
	assert.Nil(t, second["name"])
	assert.Equal(t, int64(5551234567), second["phone"])
	assert.Nil(t, second["salary"])

	third := ds.Data[2]
	assert.Equal(t, "Bob", third["name"])
	assert.Nil(t, third["salary"])
}

// TestFileSource_LoadGBK 测试GBK编码转换
func TestFileSource_LoadGBK(t *testing.T) {
	dir := t.TempDir()
	encoded, err := simplifiedchinese.GBK.NewEncoder().String("姓名,部门\n张三,研发\n")
	require.NoError(t, err)
	writeFile(t, dir, "staff.csv", encoded)

	source := NewFileSource(config.SourcesConfig{BaseDir: dir, Encoding: "gbk", SupportedFormats: []string{"csv"}})
	ds, err := source.Load(context.Background(), "staff.csv")
	require.NoError(t, err)

	assert.Equal(t, []string{"姓名", "部门"}, ds.Columns)
	assert.Equal(t, "张三", ds.Data[0]["姓名"])
	assert.Equal(t, "gbk", ds.Metadata["encoding"])
}

// TestFileSource_LoadJSON 测试JSON解析保持列顺序
func TestFileSource_LoadJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "orders.json", `[
		{"order_id": 10, "amount": 12.5, "customer": "Ann"},
		{"order_id": 11, "note": null, "customer": "Ben", "tags": ["a"]}
	]`)

	ds, err := newTestFileSource(dir).Load(context.Background(), "orders.json")
	require.NoError(t, err)

	assert.Equal(t, []string{"order_id", "amount", "customer", "note", "tags"}, ds.Columns)
	assert.Equal(t, int64(10), ds.Data[0]["order_id"])
	assert.Equal(t, 12.5, ds.Data[0]["amount"])
	assert.Nil(t, ds.Data[1]["note"])
	_, hasAmount := ds.Data[1]["amount"]
	assert.False(t, hasAmount)
}

// TestFileSource_LoadErrors 测试错误分类
func TestFileSource_LoadErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "hello")
	writeFile(t, dir, "broken.json", `{"not": "an array"}`)
	writeFile(t, dir, "big.csv", "a\n"+strings.Repeat("1234567890\n", 120000))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.csv"), 0o755))

	source := newTestFileSource(dir)
	tests := []struct {
		name    string
		file    string
		wantErr error
	}{
		{name: "文件不存在", file: "missing.csv", wantErr: ErrNotFound},
		{name: "路径穿越", file: "../etc/passwd.csv", wantErr: ErrNotFound},
		{name: "绝对路径", file: "/etc/passwd.csv", wantErr: ErrNotFound},
		{name: "空文件名", file: "", wantErr: ErrNotFound},
		{name: "目录", file: "nested.csv", wantErr: ErrNotFound},
		{name: "不支持的格式", file: "notes.txt", wantErr: ErrUnsupportedFormat},
		{name: "超过大小限制", file: "big.csv", wantErr: ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := source.Load(context.Background(), tt.file)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := source.Load(context.Background(), "broken.json")
	assert.Error(t, err)
}

// TestFileSource_List 测试文件列表
func TestFileSource_List(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", "x\n1\n")
	writeFile(t, dir, "b.JSON", "[]")
	writeFile(t, dir, "c.txt", "ignored")

	entries, err := newTestFileSource(dir).List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a.csv", entries[0].Name)
	assert.Equal(t, "csv", entries[0].Format)
	assert.Equal(t, "json", entries[1].Format)

	entries, err = newTestFileSource(filepath.Join(dir, "absent")).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// TestParseCell 测试单元格类型推断
func TestParseCell(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected interface{}
	}{
		{name: "空白", raw: "  ", expected: nil},
		{name: "整数", raw: "42", expected: int64(42)},
		{name: "负数", raw: "-5", expected: int64(-5)},
		{name: "浮点", raw: "0.75", expected: 0.75},
		{name: "前导零", raw: "007", expected: "007"},
		{name: "布尔", raw: "TRUE", expected: true},
		{name: "非数字字面量", raw: "NaN", expected: "NaN"},
		{name: "文本", raw: " hello ", expected: "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseCell(tt.raw))
		})
	}
}
