package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/gymcoach/internal/telemetry/metrics"
	"github.com/2beens/gymcoach/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// Backend stores the raw user database document.
type Backend interface {
	Name() string
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, doc []byte) error
}

// Store loads and writes back the whole user database.
type Store interface {
	Load(ctx context.Context) Database
	Save(ctx context.Context, db Database) error
}

var _ Store = (*Gateway)(nil)

// Gateway round-trips the whole user database through a Backend.
// There is no locking or versioning: the last Save wins.
type Gateway struct {
	backend Backend
	metrics *metrics.Manager
}

func NewGateway(backend Backend, metricsManager *metrics.Manager) *Gateway {
	return &Gateway{
		backend: backend,
		metrics: metricsManager,
	}
}

func (g *Gateway) BackendName() string {
	return g.backend.Name()
}

// Load never fails: fetch and parse errors are logged and an empty
// database is returned instead.
func (g *Gateway) Load(ctx context.Context) Database {
	ctx, span := tracing.GlobalTracer.Start(ctx, "storage.gateway.load")
	defer span.End()
	span.SetAttributes(attribute.String("backend", g.backend.Name()))

	defer g.observe("load", time.Now())

	raw, err := g.backend.Load(ctx)
	if err != nil {
		log.Errorf("load user db from %s: %s", g.backend.Name(), err)
		g.countError("load")
		span.RecordError(err)
		return Database{}
	}

	db, err := Decode(raw)
	if err != nil {
		log.Errorf("decode user db from %s: %s", g.backend.Name(), err)
		g.countError("decode")
		span.RecordError(err)
		return Database{}
	}

	span.SetAttributes(attribute.Int("users", len(db)))
	return db
}

func (g *Gateway) Save(ctx context.Context, db Database) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "storage.gateway.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("backend", g.backend.Name()))

	defer g.observe("save", time.Now())

	raw, err := Encode(db)
	if err != nil {
		g.countError("encode")
		return fmt.Errorf("encode user db: %w", err)
	}

	if err := g.backend.Save(ctx, raw); err != nil {
		g.countError("save")
		return fmt.Errorf("save user db to %s: %w", g.backend.Name(), err)
	}

	return nil
}

// Raw returns the stored document as is, used by backups.
func (g *Gateway) Raw(ctx context.Context) ([]byte, error) {
	return g.backend.Load(ctx)
}

func (g *Gateway) observe(op string, begin time.Time) {
	if g.metrics == nil {
		return
	}
	g.metrics.HistogramStoreDuration.
		WithLabelValues(g.backend.Name(), op).
		Observe(time.Since(begin).Seconds())
}

func (g *Gateway) countError(op string) {
	if g.metrics == nil {
		return
	}
	g.metrics.CounterStoreErrors.WithLabelValues(g.backend.Name(), op).Inc()
}
