// Package filters rewrites list-view query parameters before they reach a
// filter parser: GOV.UK day/month/year date inputs are folded back into a
// single ISO date and blank filter values are dropped.
package filters

import (
	"net/url"
	"sort"
	"strings"
)

// Value is a request parameter as a filter parser sees it: a scalar for a
// key given once, a list for a repeated key.
type Value struct {
	vals []string
}

// Scalar returns a single-valued Value.
func Scalar(s string) Value { return Value{vals: []string{s}} }

// List returns a Value holding every given value in order.
func List(vals ...string) Value {
	return Value{vals: append([]string(nil), vals...)}
}

// IsList reports whether the key was repeated.
func (v Value) IsList() bool { return len(v.vals) > 1 }

// String returns the scalar value, or the first value of a list.
func (v Value) String() string {
	if len(v.vals) == 0 {
		return ""
	}
	return v.vals[0]
}

// Values returns a copy of every value.
func (v Value) Values() []string { return append([]string(nil), v.vals...) }

// blank reports whether every value is empty or whitespace.
func (v Value) blank() bool {
	for _, s := range v.vals {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}

// Args is a flattened parameter set keyed by parameter name.
type Args map[string]Value

// FromValues flattens raw query values.
func FromValues(raw url.Values) Args {
	args := make(Args, len(raw))
	for k, vs := range raw {
		if len(vs) == 1 {
			args[k] = Scalar(vs[0])
			continue
		}
		args[k] = List(vs...)
	}
	return args
}

// Get returns the scalar value for key, or "" when absent.
func (a Args) Get(key string) string {
	return a[key].String()
}

// Has reports whether key is present.
func (a Args) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// Keys returns the parameter names in sorted order.
func (a Args) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of a.
func (a Args) Clone() Args {
	out := make(Args, len(a))
	for k, v := range a {
		out[k] = Value{vals: v.Values()}
	}
	return out
}

// Values converts the set back to url.Values.
func (a Args) Values() url.Values {
	out := make(url.Values, len(a))
	for k, v := range a {
		out[k] = v.Values()
	}
	return out
}
