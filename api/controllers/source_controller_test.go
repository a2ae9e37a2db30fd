package controllers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"dataquality-service/service/config"
	"dataquality-service/service/datasource"
	"dataquality-service/service/orchestration"
	"dataquality-service/testutil"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const employeesCSV = `id,name,email,age
1,Ann Lee,ann@example.com,31
2,,ben@example.com,42
2,,ben@example.com,42
3,Cy Park,not-an-email,27
`

func newFileRouter(t *testing.T) *chi.Mux {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "employees.csv"), []byte(employeesCSV), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "legacy.xlsx"), []byte("binary"), 0o644))

	cfg := config.DefaultConfig()
	cfg.Sources.BaseDir = dir
	controller := NewFileSourceController(datasource.NewFileSource(cfg.Sources), orchestration.NewOrchestrator(cfg))

	r := chi.NewRouter()
	r.Get("/files", controller.List)
	r.Post("/files/{name}/analyze", controller.Analyze)
	return r
}

// TestSourceController_List 测试列出文件
func TestSourceController_List(t *testing.T) {
	helper := testutil.NewHTTPTestHelper()
	w := helper.Serve(newFileRouter(t), httptest.NewRequest(http.MethodGet, "/files", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data []datasource.SourceEntry `json:"data"`
	}
	helper.DecodeJSON(t, w, &resp)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "employees.csv", resp.Data[0].Name)
	assert.Equal(t, datasource.FormatCSV, resp.Data[0].Format)
}

// TestSourceController_Analyze 测试分析文件
func TestSourceController_Analyze(t *testing.T) {
	helper := testutil.NewHTTPTestHelper()
	router := newFileRouter(t)

	tests := []struct {
		name         string
		file         string
		expectedCode int
	}{
		{name: "CSV文件", file: "employees.csv", expectedCode: http.StatusOK},
		{name: "文件不存在", file: "missing.csv", expectedCode: http.StatusNotFound},
		{name: "不支持的格式", file: "legacy.xlsx", expectedCode: http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/files/"+tt.file+"/analyze", nil)
			w := helper.Serve(router, req)
			require.Equal(t, tt.expectedCode, w.Code, w.Body.String())

			if tt.expectedCode != http.StatusOK {
				var resp APIResponse
				helper.DecodeJSON(t, w, &resp)
				assert.Equal(t, tt.expectedCode, resp.Status)
				return
			}

			var resp reportEnvelope
			helper.DecodeJSON(t, w, &resp)
			assert.Equal(t, tt.file, resp.Data.Metadata["sourceFile"])
			assert.EqualValues(t, 4, resp.Data.Metadata["rowsBefore"])
			assert.Less(t, resp.Data.PreProcessingScore.OverallScore, 1.0)
		})
	}
}
