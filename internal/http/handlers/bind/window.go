package bind

import (
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/saabal/saabal-api/internal/http/response"
)

func badWindow(w http.ResponseWriter, r *http.Request, message string) (time.Time, time.Time, bool) {
	w.WriteHeader(http.StatusBadRequest)
	render.JSON(w, r, response.Error(message))
	return time.Time{}, time.Time{}, false
}

// DayWindow parses ?date=YYYY-MM-DD into the covered day, local time.
func DayWindow(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	day, err := time.ParseInLocation("2006-01-02", r.URL.Query().Get("date"), time.Local)
	if err != nil {
		return badWindow(w, r, "date must be formatted YYYY-MM-DD")
	}
	return day, day.AddDate(0, 0, 1).Add(-time.Nanosecond), true
}

// MonthWindow parses ?month=YYYY-MM into the covered calendar month,
// local time.
func MonthWindow(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	first, err := time.ParseInLocation("2006-01", r.URL.Query().Get("month"), time.Local)
	if err != nil {
		return badWindow(w, r, "month must be formatted YYYY-MM")
	}
	return first, first.AddDate(0, 1, 0).Add(-time.Nanosecond), true
}

// RangeWindow parses ?start=YYYY-MM-DD&end=YYYY-MM-DD into an inclusive
// date range, local time.
func RangeWindow(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	start, err := time.ParseInLocation("2006-01-02", r.URL.Query().Get("start"), time.Local)
	if err != nil {
		return badWindow(w, r, "start must be formatted YYYY-MM-DD")
	}
	end, err := time.ParseInLocation("2006-01-02", r.URL.Query().Get("end"), time.Local)
	if err != nil {
		return badWindow(w, r, "end must be formatted YYYY-MM-DD")
	}
	if end.Before(start) {
		return badWindow(w, r, "end must not be before start")
	}
	return start, end.AddDate(0, 0, 1).Add(-time.Nanosecond), true
}
