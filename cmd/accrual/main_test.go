package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEmployees(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "employees.json")
	body := `[{"id": "e1", "full_name": "Ada", "hire_date": "2020-01-10",
	          "leave_taken": [{"date": "2024-02-01", "days": 3, "type": "annual"}]}]`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRun(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(writeEmployees(t), "2024-06-01", "0.83", 6, &out))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 1)
	assert.InDelta(t, 1.15, got[0]["available_leave_to_use"], 1e-9)
	assert.Equal(t, float64(2024), got[0]["accrual_year"])
}

func TestRun_CustomRate(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(writeEmployees(t), "2024-06-01", "1", 6, &out))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.InDelta(t, 2, got[0]["available_leave_to_use"], 1e-9) // 5 months × 1 - 3
}

func TestRun_BadFlags(t *testing.T) {
	path := writeEmployees(t)
	var out bytes.Buffer

	assert.Error(t, run(path, "June 1st", "0.83", 6, &out))
	assert.Error(t, run(path, "2024-06-01", "-1", 6, &out))
	assert.Error(t, run(path, "2024-06-01", "0.83", 0, &out))
	assert.Error(t, run(filepath.Join(t.TempDir(), "missing.json"), "2024-06-01", "0.83", 6, &out))
}
