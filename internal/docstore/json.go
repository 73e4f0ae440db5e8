package docstore

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
)

// GetJSON loads the document stored under key and decodes it into a new T.
func GetJSON[T any](ctx context.Context, c Collection, key string) (*T, error) {
	raw, err := c.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	out := new(T)
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("decoding document %q: %w", key, err)
	}

	return out, nil
}

// ListJSON decodes every document of the collection.
func ListJSON[T any](ctx context.Context, c Collection) ([]T, error) {
	raws, err := c.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(raws))

	for _, raw := range raws {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decoding document: %w", err)
		}

		out = append(out, v)
	}

	return out, nil
}

// InsertJSON encodes v and inserts it under key.
func InsertJSON(ctx context.Context, c Collection, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding document %q: %w", key, err)
	}

	return c.Insert(ctx, key, raw)
}

// UpdateJSON decodes the stored document, lets fn mutate it and writes it back atomically.
func UpdateJSON[T any](ctx context.Context, c Collection, key string, fn func(*T) error) (*T, error) {
	var result *T

	_, err := c.Update(ctx, key, func(current []byte) ([]byte, error) {
		v := new(T)
		if err := json.Unmarshal(current, v); err != nil {
			return nil, fmt.Errorf("decoding document %q: %w", key, err)
		}

		if err := fn(v); err != nil {
			return nil, err
		}

		result = v

		return json.Marshal(v)
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
