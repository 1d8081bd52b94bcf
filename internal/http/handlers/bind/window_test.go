package bind

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayWindow(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?date=2025-03-15", nil)
	rec := httptest.NewRecorder()

	start, end, ok := DayWindow(rec, req)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, time.March, 15, 0, 0, 0, 0, time.Local), start)
	assert.True(t, end.After(start))
	assert.True(t, end.Before(start.AddDate(0, 0, 1)))
}

func TestDayWindowRejectsBadFormat(t *testing.T) {
	for _, raw := range []string{"", "15/03/2025", "2025-3-15"} {
		req := httptest.NewRequest(http.MethodGet, "/?date="+raw, nil)
		rec := httptest.NewRecorder()

		_, _, ok := DayWindow(rec, req)
		assert.False(t, ok, raw)
		assert.Equal(t, http.StatusBadRequest, rec.Code, raw)
	}
}

func TestMonthWindow(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?month=2025-02", nil)
	rec := httptest.NewRecorder()

	start, end, ok := MonthWindow(rec, req)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, time.February, 1, 0, 0, 0, 0, time.Local), start)
	assert.True(t, end.Before(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.Local)))
	assert.True(t, end.After(time.Date(2025, time.February, 28, 0, 0, 0, 0, time.Local)))
}

func TestRangeWindowInclusiveEnd(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?start=2025-01-01&end=2025-01-31", nil)
	rec := httptest.NewRecorder()

	start, end, ok := RangeWindow(rec, req)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.Local), start)
	// The end day itself is part of the range.
	assert.True(t, end.After(time.Date(2025, time.January, 31, 23, 0, 0, 0, time.Local)))
}

func TestRangeWindowSingleDay(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?start=2025-01-15&end=2025-01-15", nil)
	rec := httptest.NewRecorder()

	_, _, ok := RangeWindow(rec, req)
	assert.True(t, ok)
}

func TestRangeWindowEndBeforeStart(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?start=2025-02-01&end=2025-01-01", nil)
	rec := httptest.NewRecorder()

	_, _, ok := RangeWindow(rec, req)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
