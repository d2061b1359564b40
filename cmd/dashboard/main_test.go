package main

import (
	"encoding/json"
	"errors"
	"library_stats/pkg/export"
	"library_stats/pkg/loader"
	"library_stats/pkg/table"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCSV = `book_title,genre,borrower_id,borrower_type,student_batch,borrower_age_group,issue_date,due_date,return_date,overdue_status,days_on_loan
A,Fiction,u1,Student,2022,18-25,2024-01-05,2024-01-19,,Overdue,40
B,Fiction,u2,Teacher,,36+,2024-02-10,2024-02-24,2024-02-20,On Time,10
C,Nonfiction,u1,Student,2023,18-25,2024-01-20,2024-02-03,,On Time,30
`

func setupTestData(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tbl, err := loader.ParseCSV(strings.NewReader(testCSV))
	require.NoError(t, err)

	db = nil
	source = "test.csv"
	cache = loader.NewCache(func(string) (*table.Table, error) {
		return tbl, nil
	})
}

func newContext(target string) (*httptest.ResponseRecorder, *gin.Context) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", target, nil)
	return w, c
}

func TestGetStats(t *testing.T) {
	setupTestData(t)

	w, c := newContext("/api/v1/stats?from=2024-01-01&to=2024-01-31&genre=Fiction")
	getStats(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, float64(1), response["totalLoans"])
	assert.Equal(t, float64(1), response["distinctBorrowers"])
	assert.Equal(t, float64(1), response["notReturned"])
	assert.Equal(t, float64(1), response["late"])
}

func TestGetStatsUnfiltered(t *testing.T) {
	setupTestData(t)

	w, c := newContext("/api/v1/stats")
	getStats(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, float64(3), response["totalLoans"])
	assert.Equal(t, float64(2), response["distinctBorrowers"])
	assert.Equal(t, float64(2), response["notReturned"])
	assert.Equal(t, float64(1), response["late"])
}

func TestGetStatsMultiSelect(t *testing.T) {
	setupTestData(t)

	w, c := newContext("/api/v1/stats?borrower_type=Student&borrower_type=Teacher&student_batch=2023")
	getStats(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, float64(1), response["totalLoans"])
}

func TestGetStatsBadDate(t *testing.T) {
	setupTestData(t)

	w, c := newContext("/api/v1/stats?from=05/01/2024")
	getStats(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetStatsInvertedRange(t *testing.T) {
	setupTestData(t)

	w, c := newContext("/api/v1/stats?from=2024-02-01&to=2024-01-01")
	getStats(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetStatsLoadFailure(t *testing.T) {
	setupTestData(t)
	cache = loader.NewCache(func(string) (*table.Table, error) {
		return nil, errors.New("missing required column: genre")
	})

	w, c := newContext("/api/v1/stats")
	getStats(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "genre")
}

func TestGetLoans(t *testing.T) {
	setupTestData(t)

	w, c := newContext("/api/v1/loans?page=2&size=1&genre=Fiction&genre=Nonfiction")
	getLoans(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, float64(3), response["totalElements"])
	assert.Equal(t, float64(2), response["page"])
	items := response["items"].([]interface{})
	require.Equal(t, 1, len(items))
	item := items[0].(map[string]interface{})
	assert.Equal(t, "B", item["book_title"])
	assert.Equal(t, "2024-02-20", item["return_date"])
	assert.Len(t, response["columns"], 11)
}

func TestGetLoansPastLastPage(t *testing.T) {
	setupTestData(t)

	w, c := newContext("/api/v1/loans?page=9&size=10")
	getLoans(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Empty(t, response["items"])
}

func TestGetLoansHugePage(t *testing.T) {
	setupTestData(t)

	w, c := newContext("/api/v1/loans?page=4611686018427387905&size=2")
	assert.NotPanics(t, func() { getLoans(c) })

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Empty(t, response["items"])
	assert.Equal(t, float64(3), response["totalElements"])
}

func TestGetCharts(t *testing.T) {
	setupTestData(t)

	w, c := newContext("/api/v1/charts")
	getCharts(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)

	monthly := response["monthly"].([]interface{})
	require.Equal(t, 2, len(monthly))
	assert.Equal(t, "2024-01", monthly[0].(map[string]interface{})["month"])
	assert.Equal(t, float64(2), monthly[0].(map[string]interface{})["count"])

	ageGroups := response["ageGroups"].([]interface{})
	assert.Equal(t, "18-25", ageGroups[0].(map[string]interface{})["value"])

	means := response["meanDaysByGenre"].([]interface{})
	assert.Equal(t, "Nonfiction", means[0].(map[string]interface{})["group"])
}

func TestGetOptions(t *testing.T) {
	setupTestData(t)

	w, c := newContext("/api/v1/options")
	getOptions(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "2024-01-05", response["earliestIssueDate"])
	assert.Equal(t, "2024-02-10", response["latestIssueDate"])

	dimensions := response["dimensions"].([]interface{})
	columns := make([]string, len(dimensions))
	for i, d := range dimensions {
		columns[i] = d.(map[string]interface{})["column"].(string)
	}
	assert.Equal(t, []string{"genre", "borrower_type", "student_batch", "borrower_age_group", "overdue_status"}, columns)
}

func TestExportLoans(t *testing.T) {
	setupTestData(t)

	w, c := newContext("/api/v1/loans/export?genre=Fiction")
	exportLoans(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.ContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), export.FileName)
	assert.NotEmpty(t, w.Body.Bytes())
}

func TestHealthCheck(t *testing.T) {
	setupTestData(t)

	w, c := newContext("/manage/health")
	healthCheck(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "UP")
}
