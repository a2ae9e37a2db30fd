package datasource

import (
	"context"
	"testing"

	"dataquality-service/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTableDB(t *testing.T) *gorm.DB {
	t.Helper()
	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)

	tdb.CreateTable(t, "customers", "id INTEGER PRIMARY KEY, name TEXT, email TEXT, balance REAL",
		[]interface{}{1, "Ann", "ann@example.com", 10.5},
		[]interface{}{2, nil, "bad-email", 20},
		[]interface{}{3, "Cid", "cid@example.com", nil},
	)
	return tdb.DB
}

// TestTableSource_Load 测试读取表数据
func TestTableSource_Load(t *testing.T) {
	source := NewTableSource(setupTableDB(t), 0)

	ds, err := source.Load(context.Background(), "customers")
	require.NoError(t, err)

	assert.Equal(t, "customers", ds.Name)
	assert.Equal(t, []string{"id", "name", "email", "balance"}, ds.Columns)
	assert.Equal(t, 3, ds.RowCount)
	assert.Equal(t, int64(1), ds.Data[0]["id"])
	assert.Equal(t, "Ann", ds.Data[0]["name"])
	assert.Nil(t, ds.Data[1]["name"])
	assert.Nil(t, ds.Data[2]["balance"])
	assert.Equal(t, "customers", ds.Metadata["sourceTable"])
}

// TestTableSource_RowLimit 测试行数限制
func TestTableSource_RowLimit(t *testing.T) {
	source := NewTableSource(setupTableDB(t), 2)

	ds, err := source.Load(context.Background(), "customers")
	require.NoError(t, err)
	assert.Equal(t, 2, ds.RowCount)
}

// TestTableSource_Errors 测试非法与不存在的表
func TestTableSource_Errors(t *testing.T) {
	source := NewTableSource(setupTableDB(t), 10)

	tests := []struct {
		name  string
		table string
	}{
		{name: "表不存在", table: "orders"},
		{name: "注入尝试", table: "customers; DROP TABLE customers"},
		{name: "空表名", table: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := source.Load(context.Background(), tt.table)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

// TestTableSource_List 测试表列表
func TestTableSource_List(t *testing.T) {
	source := NewTableSource(setupTableDB(t), 10)

	entries, err := source.List(context.Background())
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
		assert.Equal(t, "table", e.Type)
	}
	assert.Contains(t, names, "customers")
}

// TestTableSource_Ping 测试连接检查
func TestTableSource_Ping(t *testing.T) {
	source := NewTableSource(setupTableDB(t), 0)
	assert.NoError(t, source.Ping(context.Background()))
}
