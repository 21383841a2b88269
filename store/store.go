// Package store keeps labelled measurement records. A record is stored as its
// binary envelope encoding, so every backend holds the same bytes.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/chandan-cmd-dev/quant-go/quant"
)

var (
	ErrNotFound  = errors.New("store: record not found")
	ErrExists    = errors.New("store: record already exists")
	ErrBadRecord = errors.New("store: malformed record")
)

// RecordType is the envelope type of an encoded record.
const RecordType = "record"

// Record is a labelled value with an id and a creation time.
type Record struct {
	ID      uuid.UUID
	Label   string
	Value   quant.Value
	Created time.Time
}

// NewRecord stamps v with a fresh id and the current time.
func NewRecord(label string, v quant.Value) Record {
	return Record{ID: uuid.New(), Label: label, Value: v, Created: time.Now().UTC()}
}

// Store is implemented by every backend. Put refuses an id that is already stored;
// Get and Delete report ErrNotFound for an unknown id. List returns records oldest
// first.
type Store interface {
	Put(ctx context.Context, rec Record) error
	Get(ctx context.Context, id uuid.UUID) (Record, error)
	List(ctx context.Context) ([]Record, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Close() error
}

func kindOf(v quant.Value) string {
	switch v.(type) {
	case quant.Temperature:
		return quant.DocTemperature
	case quant.LogQuantity:
		return quant.DocLog
	}
	return quant.DocQuantity
}

// Envelope wraps rec for the binary codec.
func (rec Record) Envelope() quant.Envelope {
	created := rec.Created.UTC()
	return quant.Envelope{
		Meta: quant.Meta{ID: rec.ID, Type: RecordType, Schema: kindOf(rec.Value), Created: &created},
		Body: map[string]any{"label": rec.Label, "value": rec.Value},
	}
}

// Encode returns the binary encoding of rec.
func Encode(rec Record) ([]byte, error) {
	if rec.Value == nil {
		return nil, fmt.Errorf("%w: no value", ErrBadRecord)
	}
	return quant.EncodeBinary(rec.Envelope())
}

// Decode reads a record written by Encode.
func Decode(b []byte) (Record, error) {
	v, err := quant.DecodeBinary(b)
	if err != nil {
		return Record{}, err
	}
	env, ok := v.(quant.Envelope)
	if !ok {
		return Record{}, fmt.Errorf("%w: %T is not an envelope", ErrBadRecord, v)
	}
	return FromEnvelope(env)
}

// FromEnvelope unpacks a record envelope.
func FromEnvelope(env quant.Envelope) (Record, error) {
	if env.Meta.Type != RecordType {
		return Record{}, fmt.Errorf("%w: envelope type %q", ErrBadRecord, env.Meta.Type)
	}
	body, ok := env.Body.(map[string]any)
	if !ok {
		return Record{}, fmt.Errorf("%w: body is %T", ErrBadRecord, env.Body)
	}
	val, ok := body["value"].(quant.Value)
	if !ok {
		return Record{}, fmt.Errorf("%w: value is %T", ErrBadRecord, body["value"])
	}
	rec := Record{ID: env.Meta.ID, Value: val}
	rec.Label, _ = body["label"].(string)
	if env.Meta.Created != nil {
		rec.Created = *env.Meta.Created
	}
	return rec, nil
}

// SortRecords orders records oldest first, breaking ties by id.
func SortRecords(recs []Record) {
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].Created.Equal(recs[j].Created) {
			return recs[i].Created.Before(recs[j].Created)
		}
		return recs[i].ID.String() < recs[j].ID.String()
	})
}
