package docstore

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	openConnections = promauto.NewGaugeVec( //nolint:gochecknoglobals
		prometheus.GaugeOpts{
			Name: "docstore_open_connections",
			Help: "Number of document store connections currently acquired.",
		},
		[]string{"backend"},
	)

	operations = promauto.NewCounterVec( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Name: "docstore_operations_total",
			Help: "Number of document store operations, differentiated by collection, operation and result.",
		},
		[]string{"backend", "collection", "op", "result"},
	)
)

// Instrumented wraps a Driver, exports Prometheus metrics and keeps track of
// connections that were acquired but not yet released.
type Instrumented struct {
	Driver

	open     atomic.Int64
	acquired atomic.Int64
}

// Instrument wraps d. Wrapping an already instrumented driver returns it unchanged.
func Instrument(d Driver) *Instrumented {
	if i, ok := d.(*Instrumented); ok {
		return i
	}

	return &Instrumented{Driver: d}
}

// Connect acquires a connection from the wrapped driver.
func (i *Instrumented) Connect(ctx context.Context) (Conn, error) {
	c, err := i.Driver.Connect(ctx)
	if err != nil {
		operations.WithLabelValues(i.Name(), "", "connect", "error").Inc()
		return nil, err
	}

	i.open.Add(1)
	i.acquired.Add(1)
	openConnections.WithLabelValues(i.Name()).Inc()

	return &instrumentedConn{Conn: c, parent: i}, nil
}

// OpenConns returns the number of connections acquired and not yet closed.
func (i *Instrumented) OpenConns() int64 {
	return i.open.Load()
}

// AcquiredConns returns the number of connections acquired since creation.
func (i *Instrumented) AcquiredConns() int64 {
	return i.acquired.Load()
}

type instrumentedConn struct {
	Conn

	parent *Instrumented
	once   sync.Once
}

func (c *instrumentedConn) Collection(name string) Collection {
	return &instrumentedCollection{
		Collection: c.Conn.Collection(name),
		backend:    c.parent.Name(),
		name:       name,
	}
}

func (c *instrumentedConn) Close() error {
	var err error

	c.once.Do(func() {
		c.parent.open.Add(-1)
		openConnections.WithLabelValues(c.parent.Name()).Dec()

		err = c.Conn.Close()
	})

	return err
}

type instrumentedCollection struct {
	Collection

	backend string
	name    string
}

func (c *instrumentedCollection) observe(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}

	operations.WithLabelValues(c.backend, c.name, op, result).Inc()
}

func (c *instrumentedCollection) Get(ctx context.Context, key string) ([]byte, error) {
	doc, err := c.Collection.Get(ctx, key)
	c.observe("get", err)

	return doc, err
}

func (c *instrumentedCollection) List(ctx context.Context) ([][]byte, error) {
	docs, err := c.Collection.List(ctx)
	c.observe("list", err)

	return docs, err
}

func (c *instrumentedCollection) Insert(ctx context.Context, key string, doc []byte) error {
	err := c.Collection.Insert(ctx, key, doc)
	c.observe("insert", err)

	return err
}

func (c *instrumentedCollection) Update(ctx context.Context, key string, fn UpdateFunc) ([]byte, error) {
	doc, err := c.Collection.Update(ctx, key, fn)
	c.observe("update", err)

	return doc, err
}

func (c *instrumentedCollection) Delete(ctx context.Context, key string) error {
	err := c.Collection.Delete(ctx, key)
	c.observe("delete", err)

	return err
}
