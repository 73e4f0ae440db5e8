package docstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inventory-api/inventory-api/internal/docstore"
	"github.com/inventory-api/inventory-api/internal/docstore/docstoretest"
)

func TestInstrumentedTracksConnections(t *testing.T) {
	d := docstoretest.Memory(t)
	ctx := context.Background()

	assert.Same(t, d, docstore.Instrument(d))

	first, err := d.Connect(ctx)
	require.NoError(t, err)

	second, err := d.Connect(ctx)
	require.NoError(t, err)

	assert.EqualValues(t, 2, d.OpenConns())

	require.NoError(t, first.Close())
	require.NoError(t, first.Close())
	assert.EqualValues(t, 1, d.OpenConns())

	require.NoError(t, second.Close())
	assert.EqualValues(t, 0, d.OpenConns())
	assert.EqualValues(t, 2, d.AcquiredConns())
}

func TestJSONHelpers(t *testing.T) {
	type doc struct {
		Name  string   `json:"name"`
		Perms []string `json:"perms"`
	}

	d := docstoretest.Memory(t)
	ctx := context.Background()

	conn, err := d.Connect(ctx)
	require.NoError(t, err)

	defer conn.Close()

	c := conn.Collection("docs")

	require.NoError(t, docstore.InsertJSON(ctx, c, "b", doc{Name: "b", Perms: []string{"x"}}))
	require.NoError(t, docstore.InsertJSON(ctx, c, "a", doc{Name: "a"}))

	got, err := docstore.GetJSON[doc](ctx, c, "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, got.Perms)

	all, err := docstore.ListJSON[doc](ctx, c)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].Name)

	updated, err := docstore.UpdateJSON(ctx, c, "a", func(v *doc) error {
		v.Perms = append(v.Perms, "y")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"y"}, updated.Perms)

	_, err = docstore.GetJSON[doc](ctx, c, "missing")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}
