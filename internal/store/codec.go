package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
)

// PutValue stores v as the body of a new record.
func PutValue(ctx context.Context, s *SQLite, kind Kind, id, status, parentID string, at time.Time, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode %s %s", kind, id)
	}
	return s.Put(ctx, Record{Kind: kind, ID: id, CreatedAt: at, Status: status, ParentID: parentID, Body: body})
}

// GetValue loads one record and decodes its body.
func GetValue[T any](ctx context.Context, s *SQLite, kind Kind, id string) (T, error) {
	var v T
	rec, err := s.Get(ctx, kind, id)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(rec.Body, &v); err != nil {
		return v, errors.Wrapf(err, "decode %s %s", kind, id)
	}
	return v, nil
}

// ListValues lists records and decodes their bodies, preserving order.
func ListValues[T any](ctx context.Context, s *SQLite, kind Kind, f Filter) ([]T, error) {
	recs, err := s.List(ctx, kind, f)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		var v T
		if err := json.Unmarshal(rec.Body, &v); err != nil {
			return nil, errors.Wrapf(err, "decode %s %s", kind, rec.ID)
		}
		out = append(out, v)
	}
	return out, nil
}

// UpdateValue replaces a record's body and status.
func UpdateValue(ctx context.Context, s *SQLite, kind Kind, id, status string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode %s %s", kind, id)
	}
	return s.Update(ctx, kind, id, Patch{Status: &status, Body: body})
}
