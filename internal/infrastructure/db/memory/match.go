package memory

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fpa-intel/fpa-api/internal/core/ports"
)

type matcher struct {
	equals   map[string]any
	in       map[string][]string
	notEqual map[string]any
	search   *ports.Search
}

func normalizeFilter(f ports.Filter) (*matcher, error) {
	m := &matcher{in: f.In, search: f.Search}
	var err error
	if m.equals, err = normalizeMap(f.Equals); err != nil {
		return nil, err
	}
	if m.notEqual, err = normalizeMap(f.NotEqual); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *matcher) matches(d bson.M) bool {
	for k, want := range m.equals {
		if !valueMatches(d[k], want) {
			return false
		}
	}
	for k, want := range m.notEqual {
		if valueMatches(d[k], want) {
			return false
		}
	}
	for k, set := range m.in {
		found := false
		for _, want := range set {
			if valueMatches(d[k], want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if m.search != nil && m.search.Term != "" {
		term := foldString(m.search.Term)
		found := false
		for _, field := range m.search.Fields {
			if s, ok := d[field].(string); ok && strings.Contains(foldString(s), term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// valueMatches follows MongoDB equality: an array field matches when any
// element equals want.
func valueMatches(have, want any) bool {
	if compareValues(have, want) == 0 {
		return true
	}
	if arr, ok := have.(primitive.A); ok {
		for _, el := range arr {
			if compareValues(el, want) == 0 {
				return true
			}
		}
	}
	return false
}

type patcher struct {
	set  map[string]any
	push map[string]any
	pull map[string]any
}

func normalizePatch(p ports.Patch) (*patcher, error) {
	out := &patcher{}
	var err error
	if out.set, err = normalizeMap(p.Set); err != nil {
		return nil, err
	}
	if out.push, err = normalizeMap(p.Push); err != nil {
		return nil, err
	}
	if out.pull, err = normalizeMap(p.Pull); err != nil {
		return nil, err
	}
	return out, nil
}

// apply returns a patched shallow copy of d.
func (p *patcher) apply(d bson.M) bson.M {
	next := make(bson.M, len(d)+len(p.set))
	for k, v := range d {
		next[k] = v
	}
	for k, v := range p.set {
		next[k] = v
	}
	for k, v := range p.push {
		arr, _ := next[k].(primitive.A)
		grown := make(primitive.A, 0, len(arr)+1)
		grown = append(grown, arr...)
		next[k] = append(grown, v)
	}
	for k, v := range p.pull {
		arr, ok := next[k].(primitive.A)
		if !ok {
			continue
		}
		kept := make(primitive.A, 0, len(arr))
		for _, el := range arr {
			if compareValues(el, v) != 0 {
				kept = append(kept, el)
			}
		}
		next[k] = kept
	}
	return next
}

func normalizeMap(in map[string]any) (map[string]any, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		nv, err := normalizeValue(v)
		if err != nil {
			return nil, err
		}
		out[k] = nv
	}
	return out, nil
}

// typeOrder ranks BSON types the way MongoDB compares across types.
func typeOrder(v any) int {
	switch v.(type) {
	case nil, primitive.Null, primitive.Undefined:
		return 0
	case int32, int64, float64, int:
		return 1
	case string:
		return 2
	case bson.M, bson.D:
		return 3
	case primitive.A:
		return 4
	case bool:
		return 6
	case primitive.DateTime:
		return 7
	default:
		return 5
	}
}

// compareValues returns -1, 0 or 1.
func compareValues(a, b any) int {
	ta, tb := typeOrder(a), typeOrder(b)
	if ta != tb {
		return sign(float64(ta - tb))
	}
	switch ta {
	case 1:
		return sign(toFloat(a) - toFloat(b))
	case 2:
		return strings.Compare(a.(string), b.(string))
	case 4:
		x, y := a.(primitive.A), b.(primitive.A)
		for i := 0; i < len(x) && i < len(y); i++ {
			if c := compareValues(x[i], y[i]); c != 0 {
				return c
			}
		}
		return sign(float64(len(x) - len(y)))
	case 6:
		x, y := a.(bool), b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		}
		return 1
	case 7:
		return sign(float64(a.(primitive.DateTime) - b.(primitive.DateTime)))
	}
	return 0
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case int:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

func sign(f float64) int {
	switch {
	case f < 0:
		return -1
	case f > 0:
		return 1
	}
	return 0
}

// foldString lowers s for substring search, matching a case-insensitive
// regex.
func foldString(s string) string {
	return strings.ToLower(s)
}

// foldASCII lowers only A-Z, the same as the $toLower sort key Mongo builds.
// Other bytes keep their value and order by their UTF-8 encoding.
func foldASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}
