package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/comedor-pos/api/internal/events"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

func numericToString(n pgtype.Numeric) string {
	return numericToDecimal(n).StringFixed(2)
}

// quantityToString formats stock counts, which keep three decimals.
func quantityToString(n pgtype.Numeric) string {
	return numericToDecimal(n).StringFixed(3)
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Money carries two decimals and stock counts three, matching the columns.
const (
	moneyPlaces    = 2
	quantityPlaces = 3
)

// fitsPlaces reports whether d is stored exactly with the given decimals.
func fitsPlaces(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}

func quantityToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(3))
	return n
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func optionalText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}

func datePtr(d pgtype.Date) *string {
	if !d.Valid {
		return nil
	}
	s := d.Time.Format(dateLayout)
	return &s
}

func timePtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}

func uuidPtr(u pgtype.UUID) *string {
	if !u.Valid {
		return nil
	}
	s := uuid.UUID(u.Bytes).String()
	return &s
}

// urlUUID parses a chi URL parameter as a UUID.
func urlUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}

// parseDate parses YYYY-MM-DD as midnight in loc.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, loc)
}

// parseDateRange reads start_date and end_date, both defaulting to today in
// loc. The range is inclusive of end_date.
func parseDateRange(r *http.Request, loc *time.Location, now time.Time) (start, end time.Time, err error) {
	now = now.In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	start, end = today, today

	if s := r.URL.Query().Get("start_date"); s != "" {
		if start, err = parseDate(s, loc); err != nil {
			return start, end, errors.New("invalid start_date format, use YYYY-MM-DD")
		}
		if r.URL.Query().Get("end_date") == "" {
			end = start
		}
	}
	if s := r.URL.Query().Get("end_date"); s != "" {
		if end, err = parseDate(s, loc); err != nil {
			return start, end, errors.New("invalid end_date format, use YYYY-MM-DD")
		}
	}
	if end.Before(start) {
		return start, end, errors.New("end_date must not be before start_date")
	}
	return start, end, nil
}

// parsePagination reads limit (default 20, max 100) and offset.
func parsePagination(r *http.Request) (limit, offset int) {
	limit = 20
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > 100 {
		limit = 100
	}

	if s := r.URL.Query().Get("offset"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			offset = v
		}
	}
	return limit, offset
}

// publishTimeout bounds broker confirms once the request is done with.
const publishTimeout = 5 * time.Second

// publish emits a domain event. Delivery failures are logged, never returned:
// the write that produced the event has already committed, so a client
// hanging up must not cancel delivery.
func publish(ctx context.Context, pub events.Publisher, topic, eventType string, payload interface{}) {
	if pub == nil {
		return
	}
	e, err := events.New(topic, eventType, payload)
	if err != nil {
		log.Printf("ERROR: build event %s: %v", eventType, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := pub.Publish(ctx, e); err != nil {
		log.Printf("ERROR: publish %s: %v", eventType, err)
	}
}
