package model

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
)

const dayLayout = "2006-01-02"

// Date is a due date as the backend sends it: either a calendar day
// ("2025-03-14") or a full RFC 3339 instant.
type Date struct {
	t       time.Time
	dayOnly bool
}

// DayOf returns a day-precision Date in UTC.
func DayOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), dayOnly: true}
}

// ParseDate accepts either layout.
func ParseDate(raw string) (Date, error) {
	if t, err := time.Parse(dayLayout, raw); err == nil {
		return Date{t: t, dayOnly: true}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return Date{}, errors.Newf("invalid date %q", raw)
	}
	return Date{t: t}, nil
}

func (d Date) Time() time.Time { return d.t }
func (d Date) IsZero() bool    { return d.t.IsZero() }

func (d Date) Equal(o Date) bool {
	return d.dayOnly == o.dayOnly && d.t.Equal(o.t)
}

func (d Date) String() string {
	if d.dayOnly {
		return d.t.Format(dayLayout)
	}
	return d.t.Format(time.RFC3339Nano)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*d = Date{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return errors.Wrap(err, "date must be a string")
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
