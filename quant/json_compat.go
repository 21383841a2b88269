package quant

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalJSONCompat encodes v with encoding/json, indented with two spaces when
// indent is set.
func MarshalJSONCompat(v any, indent bool) ([]byte, error) {
	if indent {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

// UnmarshalJSONWithComments parses JSONC: JSON with comments and trailing commas.
func UnmarshalJSONWithComments(data []byte, v any) error {
	return json.Unmarshal(StripJSONComments(data), v)
}

// MarshalJSON writes the decimal as a string so no digit is lost to float64.
func (x Decimal) MarshalJSON() ([]byte, error) { return json.Marshal(x.String()) }

// UnmarshalJSON accepts "1.50", 1.50 and {"@type":"decimal","value":"1.50"}.
func (x *Decimal) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	var s string
	switch {
	case len(b) == 0:
		return fmt.Errorf("%w: empty decimal", ErrParse)
	case b[0] == '"':
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	case b[0] == '{':
		var w struct {
			Type  string `json:"@type"`
			Value string `json:"value"`
		}
		if err := json.Unmarshal(b, &w); err != nil {
			return err
		}
		if w.Type != "decimal" {
			return fmt.Errorf("%w: @type %q is not a decimal", ErrParse, w.Type)
		}
		s = w.Value
	default:
		s = string(b)
	}
	d, err := DecFromString(s)
	if err != nil {
		return err
	}
	*x = d
	return nil
}

func (r Ratio) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// MarshalText writes the unit symbol; units are read back through a registry.
func (u Unit) MarshalText() ([]byte, error) { return []byte(u.Symbol()), nil }

func (u LogUnit) MarshalText() ([]byte, error) { return []byte(u.String()), nil }

// Doc is the JSON form of a Value. Units are written as symbols, so decoding a Doc
// needs the unit registry that produced them.
type Doc struct {
	Type            string   `json:"@type"`
	Number          Decimal  `json:"number"`
	Unit            string   `json:"unit,omitempty"`
	Uncertainty     *Decimal `json:"uncertainty,omitempty"`
	UncertaintyUnit string   `json:"uncertaintyUnit,omitempty"`
}

const (
	DocQuantity    = "quantity"
	DocTemperature = "temperature"
	DocLog         = "log"
)

func uncertaintyPtr(u Decimal) *Decimal {
	if u.IsZero() {
		return nil
	}
	return &u
}

func (q Quantity) Doc() Doc {
	return Doc{Type: DocQuantity, Number: q.number, Unit: q.unit.Symbol(), Uncertainty: uncertaintyPtr(q.uncertainty)}
}

func (t Temperature) Doc() Doc {
	return Doc{Type: DocTemperature, Number: t.number, Unit: t.scale.Symbol(), Uncertainty: uncertaintyPtr(t.uncertainty)}
}

func (l LogQuantity) Doc() Doc {
	d := Doc{Type: DocLog, Number: l.number, Unit: l.unit.String()}
	if l.HasUncertainty() {
		d.Uncertainty = uncertaintyPtr(l.uncertainty.number)
		d.UncertaintyUnit = l.uncertainty.unit.Symbol()
	}
	return d
}

func (q Quantity) MarshalJSON() ([]byte, error)    { return json.Marshal(q.Doc()) }
func (t Temperature) MarshalJSON() ([]byte, error) { return json.Marshal(t.Doc()) }
func (l LogQuantity) MarshalJSON() ([]byte, error) { return json.Marshal(l.Doc()) }
