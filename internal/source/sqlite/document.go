package sqlite

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"symexport/pkg/contracts/domain"
)

// cell is the JSON form of one dataset value. Exactly one field is set; a
// missing value (nil or NaN) is encoded as JSON null.
type cell struct {
	F *float64   `json:"f,omitempty"`
	I *int64     `json:"i,omitempty"`
	S *string    `json:"s,omitempty"`
	B *bool      `json:"b,omitempty"`
	T *time.Time `json:"t,omitempty"`
}

type columnDocument struct {
	Name   string  `json:"name"`
	Values []*cell `json:"values"`
}

type document struct {
	IndexName string           `json:"index_name"`
	Index     []*cell          `json:"index"`
	Columns   []columnDocument `json:"columns"`
}

func encodeDataset(ds *domain.Dataset) ([]byte, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	doc := document{IndexName: ds.IndexName}
	var err error
	if doc.Index, err = encodeValues(ds.Index); err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}
	for _, c := range ds.Columns {
		values, err := encodeValues(c.Values)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c.Name, err)
		}
		doc.Columns = append(doc.Columns, columnDocument{Name: c.Name, Values: values})
	}
	return json.Marshal(doc)
}

func decodeDataset(data []byte) (*domain.Dataset, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	ds := &domain.Dataset{
		IndexName: doc.IndexName,
		Index:     decodeValues(doc.Index),
		Columns:   make([]domain.Column, 0, len(doc.Columns)),
	}
	for _, c := range doc.Columns {
		ds.Columns = append(ds.Columns, domain.Column{Name: c.Name, Values: decodeValues(c.Values)})
	}
	return ds, nil
}

func encodeValues(values []any) ([]*cell, error) {
	out := make([]*cell, len(values))
	for i, v := range values {
		c, err := encodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		out[i] = c
	}
	return out, nil
}

func encodeValue(v any) (*cell, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, nil
		}
		return &cell{F: &x}, nil
	case float32:
		f := float64(x)
		return encodeValue(f)
	case int:
		i := int64(x)
		return &cell{I: &i}, nil
	case int32:
		i := int64(x)
		return &cell{I: &i}, nil
	case int64:
		return &cell{I: &x}, nil
	case string:
		return &cell{S: &x}, nil
	case bool:
		return &cell{B: &x}, nil
	case time.Time:
		t := x.UTC()
		return &cell{T: &t}, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

func decodeValues(cells []*cell) []any {
	out := make([]any, len(cells))
	for i, c := range cells {
		out[i] = decodeValue(c)
	}
	return out
}

func decodeValue(c *cell) any {
	switch {
	case c == nil:
		return nil
	case c.F != nil:
		return *c.F
	case c.I != nil:
		return *c.I
	case c.S != nil:
		return *c.S
	case c.B != nil:
		return *c.B
	case c.T != nil:
		return c.T.UTC()
	default:
		return nil
	}
}
