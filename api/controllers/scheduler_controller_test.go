package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dataquality-service/service/scheduler"
	"dataquality-service/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) RunOnce(ctx context.Context) []scheduler.RunRecord {
	return m.Called(ctx).Get(0).([]scheduler.RunRecord)
}

func (m *MockRunner) LastRuns() map[string]scheduler.RunRecord {
	return m.Called().Get(0).(map[string]scheduler.RunRecord)
}

func (m *MockRunner) NextRun() time.Time {
	return m.Called().Get(0).(time.Time)
}

// TestSchedulerController_Disabled 调度器未启用
func TestSchedulerController_Disabled(t *testing.T) {
	controller := NewSchedulerController(nil)

	w := httptest.NewRecorder()
	controller.Status(w, httptest.NewRequest(http.MethodGet, "/scheduler/runs", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	controller.Run(w, httptest.NewRequest(http.MethodPost, "/scheduler/run", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestSchedulerController_Status 查询调度状态
func TestSchedulerController_Status(t *testing.T) {
	next := time.Date(2025, 1, 2, 2, 0, 0, 0, time.UTC)
	runner := new(MockRunner)
	runner.On("LastRuns").Return(map[string]scheduler.RunRecord{
		"a.csv": {File: "a.csv", Status: scheduler.RunStatusSuccess, PostScore: 0.9},
	})
	runner.On("NextRun").Return(next)

	w := httptest.NewRecorder()
	NewSchedulerController(runner).Status(w, httptest.NewRequest(http.MethodGet, "/scheduler/runs", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data SchedulerStatusResponse `json:"data"`
	}
	testutil.NewHTTPTestHelper().DecodeJSON(t, w, &resp)
	require.NotNil(t, resp.Data.NextRun)
	assert.True(t, next.Equal(*resp.Data.NextRun))
	assert.Equal(t, scheduler.RunStatusSuccess, resp.Data.Runs["a.csv"].Status)
	runner.AssertExpectations(t)
}

// TestSchedulerController_Run 手动触发
func TestSchedulerController_Run(t *testing.T) {
	runner := new(MockRunner)
	runner.On("RunOnce", mock.Anything).Return([]scheduler.RunRecord{
		{File: "a.csv", Status: scheduler.RunStatusSuccess},
		{File: "b.csv", Status: scheduler.RunStatusFailed, Error: "boom"},
	})

	w := httptest.NewRecorder()
	NewSchedulerController(runner).Run(w, httptest.NewRequest(http.MethodPost, "/scheduler/run", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []scheduler.RunRecord `json:"data"`
	}
	testutil.NewHTTPTestHelper().DecodeJSON(t, w, &resp)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "boom", resp.Data[1].Error)
	runner.AssertNotCalled(t, "LastRuns")
}
