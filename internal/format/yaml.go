package format

import (
	"io"
	"math"

	"gopkg.in/yaml.v3"
)

// WriteYAML writes v as a YAML document with two-space indentation.
func WriteYAML(w io.Writer, v any) error {
	x, err := generic(v)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(integral(x)); err != nil {
		return err
	}
	return enc.Close()
}

// integral rewrites whole float64s as int64 so millisecond timestamps don't
// come out in exponent form.
func integral(v any) any {
	switch t := v.(type) {
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			return int64(t)
		}
	case []any:
		for i := range t {
			t[i] = integral(t[i])
		}
	case map[string]any:
		for k := range t {
			t[k] = integral(t[k])
		}
	}
	return v
}
