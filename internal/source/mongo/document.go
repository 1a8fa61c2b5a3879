package mongo

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"symexport/pkg/contracts/domain"
)

// symbolDocument is the stored layout of one symbol
//
//	{symbol: "AAPL US Equity", index_name: "date", index: [...],
//	 columns: [{name: "PX_LAST", values: [...]}, ...]}
type symbolDocument struct {
	Symbol    string           `bson:"symbol"`
	IndexName string           `bson:"index_name"`
	Index     bson.A           `bson:"index"`
	Columns   []columnDocument `bson:"columns"`
}

type columnDocument struct {
	Name   string `bson:"name"`
	Values bson.A `bson:"values"`
}

func (d *symbolDocument) dataset() (*domain.Dataset, error) {
	index, err := fromBSONValues(d.Index)
	if err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}
	ds := &domain.Dataset{
		IndexName: d.IndexName,
		Index:     index,
		Columns:   make([]domain.Column, 0, len(d.Columns)),
	}
	for _, c := range d.Columns {
		values, err := fromBSONValues(c.Values)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c.Name, err)
		}
		ds.Columns = append(ds.Columns, domain.Column{Name: c.Name, Values: values})
	}
	return ds, nil
}

func newSymbolDocument(symbol string, ds *domain.Dataset) symbolDocument {
	doc := symbolDocument{
		Symbol:    symbol,
		IndexName: ds.IndexName,
		Index:     toBSONValues(ds.Index),
	}
	for _, c := range ds.Columns {
		doc.Columns = append(doc.Columns, columnDocument{Name: c.Name, Values: toBSONValues(c.Values)})
	}
	return doc
}

func fromBSONValues(values bson.A) ([]any, error) {
	out := make([]any, len(values))
	for i, v := range values {
		converted, err := fromBSON(v)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		out[i] = converted
	}
	return out, nil
}

func fromBSON(v any) (any, error) {
	switch x := v.(type) {
	case nil, bson.Null, bson.Undefined:
		return nil, nil
	case float64, int64, string, bool:
		return x, nil
	case int32:
		return int64(x), nil
	case bson.DateTime:
		return x.Time().UTC(), nil
	case time.Time:
		return x.UTC(), nil
	case bson.Decimal128:
		return x.String(), nil
	default:
		return nil, fmt.Errorf("unsupported bson type %T", v)
	}
}

func toBSONValues(values []any) bson.A {
	out := make(bson.A, len(values))
	for i, v := range values {
		if t, ok := v.(time.Time); ok {
			out[i] = bson.NewDateTimeFromTime(t)
			continue
		}
		out[i] = v
	}
	return out
}
