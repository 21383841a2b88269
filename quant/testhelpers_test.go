package quant_test

import (
	"os"
	"path/filepath"
)

const measurementJSONFallback = `{
  "$meta": { "type": "measurement", "version": "1.0.0", "createdAt": "2025-08-08T07:42:01.344243Z" },
  "$body": {
    "label": "bench run 12",
    "runs": 3,
    "length": { "@type": "quantity", "number": "4.52", "unit": "m", "uncertainty": "0.02" },
    "mass": { "@type": "quantity", "number": "1.30", "unit": "kg" },
    "ambient": { "@type": "temperature", "number": "21.4", "unit": "°C" },
    "gain": 1.25,
    "tags": ["calibrated", "lab-2"]
  }
}`

func measurementJSON() []byte {
	path := filepath.Join("testdata", "measurement.json")
	if b, err := os.ReadFile(path); err == nil && len(b) > 0 {
		return b
	}
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	_ = os.WriteFile(path, []byte(measurementJSONFallback), 0o644)
	return []byte(measurementJSONFallback)
}
