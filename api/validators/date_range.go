package validators

import (
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/refundlens/internal/analytics"
	pkgerrors "github.com/angelmondragon/refundlens/pkg/errors"
)

// DateRangeQuery is the window selection shared by the dashboard endpoints.
type DateRangeQuery struct {
	StartDate string `query:"startDate" validate:"required,isodate"`
	EndDate   string `query:"endDate" validate:"required,isodate"`
	Timezone  string `query:"tz" validate:"omitempty,timezone"`
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// ParseDateRange validates startDate/endDate (and optional tz) and returns the
// inclusive day window. Dates without an offset are read in tz, else in fallback.
func ParseDateRange(r *http.Request, fallback *time.Location) (DateRangeQuery, analytics.Window, error) {
	query := r.URL.Query()
	q := DateRangeQuery{
		StartDate: strings.TrimSpace(query.Get("startDate")),
		EndDate:   strings.TrimSpace(query.Get("endDate")),
		Timezone:  strings.TrimSpace(query.Get("tz")),
	}
	if err := validate.Struct(q); err != nil {
		return q, analytics.Window{}, formatValidationErrors(err)
	}

	loc := fallback
	if q.Timezone != "" {
		parsed, err := time.LoadLocation(q.Timezone)
		if err != nil {
			return q, analytics.Window{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "tz must be an IANA timezone")
		}
		loc = parsed
	}

	start, _ := parseDate(q.StartDate, loc)
	end, _ := parseDate(q.EndDate, loc)
	window, err := analytics.NewWindow(start, end, loc)
	if err != nil {
		return q, analytics.Window{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "endDate must not be before startDate")
	}
	return q, window, nil
}

func parseDate(raw string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, strings.TrimSpace(raw), loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
