package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fpa-intel/fpa-api/internal/core/ports"
)

// Collection implements ports.Collection[T] on one MongoDB collection.
type Collection[T any] struct {
	col *mongo.Collection
}

func NewCollection[T any](db *mongo.Database, name string) *Collection[T] {
	return &Collection[T]{col: db.Collection(name)}
}

func (c *Collection[T]) Insert(ctx context.Context, doc *T) (string, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("%s: encode: %w", c.col.Name(), err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return "", fmt.Errorf("%s: encode: %w", c.col.Name(), err)
	}
	id, _ := m["_id"].(string)
	if id == "" {
		id = primitive.NewObjectID().Hex()
		m["_id"] = id
	}

	if _, err := c.col.InsertOne(ctx, m); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", ports.ErrDuplicate
		}
		return "", fmt.Errorf("%s: insert: %w", c.col.Name(), err)
	}
	return id, nil
}

func (c *Collection[T]) FindOne(ctx context.Context, filter ports.Filter) (*T, error) {
	out := new(T)
	if err := c.col.FindOne(ctx, buildFilter(filter)).Decode(out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ports.ErrNoDocument
		}
		return nil, fmt.Errorf("%s: find one: %w", c.col.Name(), err)
	}
	return out, nil
}

// FindMany runs a plain find, or an aggregation when the sort is ranked or
// case-folded.
func (c *Collection[T]) FindMany(ctx context.Context, filter ports.Filter, order *ports.Sort, page ports.Page) ([]*T, error) {
	var (
		cur *mongo.Cursor
		err error
	)
	if needsPipeline(order) {
		cur, err = c.col.Aggregate(ctx, buildPipeline(filter, *order, page))
	} else {
		opts := options.Find()
		if order != nil {
			opts.SetSort(sortDoc(*order))
		}
		if page.Skip > 0 {
			opts.SetSkip(page.Skip)
		}
		if page.Limit > 0 {
			opts.SetLimit(page.Limit)
		}
		cur, err = c.col.Find(ctx, buildFilter(filter), opts)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", c.col.Name(), err)
	}

	out := []*T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", c.col.Name(), err)
	}
	return out, nil
}

func (c *Collection[T]) Count(ctx context.Context, filter ports.Filter) (int64, error) {
	n, err := c.col.CountDocuments(ctx, buildFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("%s: count: %w", c.col.Name(), err)
	}
	return n, nil
}

func (c *Collection[T]) UpdateOne(ctx context.Context, filter ports.Filter, patch ports.Patch) error {
	res, err := c.col.UpdateOne(ctx, buildFilter(filter), buildUpdate(patch))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ports.ErrDuplicate
		}
		return fmt.Errorf("%s: update: %w", c.col.Name(), err)
	}
	if res.MatchedCount == 0 {
		return ports.ErrNoDocument
	}
	return nil
}

func (c *Collection[T]) UpdateMany(ctx context.Context, filter ports.Filter, patch ports.Patch) (int64, error) {
	res, err := c.col.UpdateMany(ctx, buildFilter(filter), buildUpdate(patch))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return 0, ports.ErrDuplicate
		}
		return 0, fmt.Errorf("%s: update many: %w", c.col.Name(), err)
	}
	return res.MatchedCount, nil
}

func (c *Collection[T]) DeleteOne(ctx context.Context, filter ports.Filter) error {
	res, err := c.col.DeleteOne(ctx, buildFilter(filter))
	if err != nil {
		return fmt.Errorf("%s: delete: %w", c.col.Name(), err)
	}
	if res.DeletedCount == 0 {
		return ports.ErrNoDocument
	}
	return nil
}

func (c *Collection[T]) DeleteMany(ctx context.Context, filter ports.Filter) (int64, error) {
	res, err := c.col.DeleteMany(ctx, buildFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("%s: delete many: %w", c.col.Name(), err)
	}
	return res.DeletedCount, nil
}
