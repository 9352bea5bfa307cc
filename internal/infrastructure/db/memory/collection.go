package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fpa-intel/fpa-api/internal/core/ports"
)

// collection stores documents of one type in insertion order.
type collection[T any] struct {
	mu     sync.RWMutex
	name   string
	unique []string
	docs   []bson.M
}

var _ ports.Collection[struct{}] = (*collection[struct{}])(nil)

func newCollection[T any](name string, unique ...string) *collection[T] {
	return &collection[T]{name: name, unique: unique}
}

func (c *collection[T]) Insert(_ context.Context, doc *T) (string, error) {
	m, err := toDoc(doc)
	if err != nil {
		return "", fmt.Errorf("%s: encode: %w", c.name, err)
	}
	id, _ := m["_id"].(string)
	if id == "" {
		id = primitive.NewObjectID().Hex()
		m["_id"] = id
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, existing := range c.docs {
		if existing["_id"] == id {
			return "", ports.ErrDuplicate
		}
	}
	if c.violatesUnique(m, -1) {
		return "", ports.ErrDuplicate
	}
	c.docs = append(c.docs, m)
	return id, nil
}

func (c *collection[T]) FindOne(_ context.Context, filter ports.Filter) (*T, error) {
	f, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, d := range c.docs {
		if f.matches(d) {
			return fromDoc[T](d)
		}
	}
	return nil, ports.ErrNoDocument
}

func (c *collection[T]) FindMany(_ context.Context, filter ports.Filter, order *ports.Sort, page ports.Page) ([]*T, error) {
	f, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	matched := make([]bson.M, 0, len(c.docs))
	for _, d := range c.docs {
		if f.matches(d) {
			matched = append(matched, d)
		}
	}
	c.mu.RUnlock()

	if order != nil {
		sortDocs(matched, *order)
	}

	if page.Skip > 0 {
		if page.Skip >= int64(len(matched)) {
			matched = nil
		} else {
			matched = matched[page.Skip:]
		}
	}
	if page.Limit > 0 && int64(len(matched)) > page.Limit {
		matched = matched[:page.Limit]
	}

	out := make([]*T, 0, len(matched))
	for _, d := range matched {
		v, err := fromDoc[T](d)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (c *collection[T]) Count(_ context.Context, filter ports.Filter) (int64, error) {
	f, err := normalizeFilter(filter)
	if err != nil {
		return 0, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var n int64
	for _, d := range c.docs {
		if f.matches(d) {
			n++
		}
	}
	return n, nil
}

func (c *collection[T]) UpdateOne(_ context.Context, filter ports.Filter, patch ports.Patch) error {
	n, err := c.update(filter, patch, 1)
	if err != nil {
		return err
	}
	if n == 0 {
		return ports.ErrNoDocument
	}
	return nil
}

func (c *collection[T]) UpdateMany(_ context.Context, filter ports.Filter, patch ports.Patch) (int64, error) {
	return c.update(filter, patch, 0)
}

func (c *collection[T]) DeleteOne(_ context.Context, filter ports.Filter) error {
	n, err := c.delete(filter, 1)
	if err != nil {
		return err
	}
	if n == 0 {
		return ports.ErrNoDocument
	}
	return nil
}

func (c *collection[T]) DeleteMany(_ context.Context, filter ports.Filter) (int64, error) {
	return c.delete(filter, 0)
}

// update applies patch to at most limit matching documents (0 = all). Each
// document is patched on a copy and committed only if it keeps unique fields
// unique.
func (c *collection[T]) update(filter ports.Filter, patch ports.Patch, limit int) (int64, error) {
	f, err := normalizeFilter(filter)
	if err != nil {
		return 0, err
	}
	p, err := normalizePatch(patch)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var n int64
	for i, d := range c.docs {
		if limit > 0 && n >= int64(limit) {
			break
		}
		if !f.matches(d) {
			continue
		}
		next := p.apply(d)
		if c.violatesUnique(next, i) {
			return n, ports.ErrDuplicate
		}
		c.docs[i] = next
		n++
	}
	return n, nil
}

func (c *collection[T]) delete(filter ports.Filter, limit int) (int64, error) {
	f, err := normalizeFilter(filter)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var n int64
	kept := c.docs[:0]
	for _, d := range c.docs {
		if (limit == 0 || n < int64(limit)) && f.matches(d) {
			n++
			continue
		}
		kept = append(kept, d)
	}
	for i := len(kept); i < len(c.docs); i++ {
		c.docs[i] = nil
	}
	c.docs = kept
	return n, nil
}

// violatesUnique reports whether m shares a unique field value with any
// document other than the one at index self.
func (c *collection[T]) violatesUnique(m bson.M, self int) bool {
	for _, field := range c.unique {
		v, ok := m[field]
		if !ok || v == nil {
			continue
		}
		for i, d := range c.docs {
			if i == self {
				continue
			}
			if compareValues(d[field], v) == 0 {
				return true
			}
		}
	}
	return false
}

// sortDocs orders docs by s, breaking ties on _id ascending.
func sortDocs(docs []bson.M, s ports.Sort) {
	rank := make(map[string]int, len(s.Rank))
	for i, v := range s.Rank {
		rank[v] = i
	}
	key := func(d bson.M) any {
		v := d[s.Field]
		switch {
		case len(s.Rank) > 0:
			str, _ := v.(string)
			if r, ok := rank[str]; ok {
				return int64(r)
			}
			return int64(len(s.Rank))
		case s.Fold:
			str, _ := v.(string)
			return foldASCII(str)
		}
		return v
	}

	sort.SliceStable(docs, func(i, j int) bool {
		cmp := compareValues(key(docs[i]), key(docs[j]))
		if s.Desc {
			cmp = -cmp
		}
		if cmp != 0 {
			return cmp < 0
		}
		return compareValues(docs[i]["_id"], docs[j]["_id"]) < 0
	})
}

// toDoc encodes v into a BSON map. Nested documents decode as bson.M and
// arrays as primitive.A.
func toDoc(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := decode(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func fromDoc[T any](m bson.M) (*T, error) {
	raw, err := bson.Marshal(m)
	if err != nil {
		return nil, err
	}
	out := new(T)
	if err := decode(raw, out); err != nil {
		return nil, err
	}
	return out, nil
}

func decode(raw []byte, out any) error {
	dec, err := bson.NewDecoder(bsonrw.NewBSONDocumentReader(raw))
	if err != nil {
		return err
	}
	dec.DefaultDocumentM()
	return dec.Decode(out)
}

// normalizeValue converts v to the representation it has inside a stored
// document, e.g. time.Time to primitive.DateTime.
func normalizeValue(v any) (any, error) {
	m, err := toDoc(bson.M{"v": v})
	if err != nil {
		return nil, err
	}
	return m["v"], nil
}
