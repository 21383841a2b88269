package units

import (
	"encoding/json"
	"fmt"

	"github.com/chandan-cmd-dev/quant-go/quant"
)

// FromDoc rebuilds the value a quant.Doc describes, looking its units up here.
func (r *Registry) FromDoc(d quant.Doc) (quant.Value, error) {
	switch d.Type {
	case quant.DocQuantity, "":
		u, err := r.ParseUnit(d.Unit)
		if err != nil {
			return nil, err
		}
		return quant.MakeQuantity(d.Number, u, uncertaintyOf(d)), nil
	case quant.DocTemperature:
		u, err := r.ParseUnit(d.Unit)
		if err != nil {
			return nil, err
		}
		t, err := quant.NewTemperature(d.Number, u)
		if err != nil {
			return nil, err
		}
		return t.WithUncertainty(uncertaintyOf(d)), nil
	case quant.DocLog:
		u, err := r.LogUnit(d.Unit)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", quant.ErrParse, err)
		}
		l := quant.NewLogQuantity(d.Number, u)
		if d.Uncertainty == nil {
			return l, nil
		}
		uu, err := r.ParseUnit(d.UncertaintyUnit)
		if err != nil {
			return nil, err
		}
		return l.WithUncertainty(quant.MakeQuantity(*d.Uncertainty, uu, quant.Decimal{}))
	}
	return nil, fmt.Errorf("%w: unknown value type %q", quant.ErrParse, d.Type)
}

func uncertaintyOf(d quant.Doc) quant.Decimal {
	if d.Uncertainty == nil {
		return quant.Decimal{}
	}
	return *d.Uncertainty
}

// DecodeValue reads one JSON value document. Comments are allowed.
func (r *Registry) DecodeValue(b []byte) (quant.Value, error) {
	var d quant.Doc
	if err := quant.UnmarshalJSONWithComments(b, &d); err != nil {
		return nil, err
	}
	return r.FromDoc(d)
}

// Resolve walks a document decoded into generic maps and slices and replaces every
// object whose "@type" names a value with that value, so that it can be written in
// the binary format. Other objects are left as they are.
func (r *Registry) Resolve(v any) (any, error) {
	switch v := v.(type) {
	case map[string]any:
		if t, ok := v["@type"].(string); ok && isValueType(t) {
			b, err := json.Marshal(v)
			if err != nil {
				return nil, err
			}
			return r.DecodeValue(b)
		}
		out := make(map[string]any, len(v))
		for k, e := range v {
			x, err := r.Resolve(e)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = x
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			x, err := r.Resolve(e)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = x
		}
		return out, nil
	}
	return v, nil
}

func isValueType(t string) bool {
	return t == quant.DocQuantity || t == quant.DocTemperature || t == quant.DocLog
}
