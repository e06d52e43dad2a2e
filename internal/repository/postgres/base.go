package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/commexhq/comms-api/pkg/metrics"
)

// BaseRepository provides the shared database handle and the transaction
// helper every repository builds on.
type BaseRepository struct {
	db      *sqlx.DB
	metrics *metrics.Metrics
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *sqlx.DB) BaseRepository {
	return BaseRepository{db: db}
}

// WithMetrics returns a copy that records per-operation counts and latency
// for transactional writes. A nil-metrics base stays silent, which the repo
// tests rely on.
func (r BaseRepository) WithMetrics(m *metrics.Metrics) BaseRepository {
	r.metrics = m
	return r
}

// WithTx executes fn within a transaction, recorded under op.
func (r *BaseRepository) WithTx(ctx context.Context, op string, fn func(*sqlx.Tx) error) error {
	start := time.Now()
	err := r.runTx(ctx, fn)
	r.observe(op, start, err)
	return err
}

func (r *BaseRepository) runTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (r *BaseRepository) observe(op string, start time.Time, err error) {
	if r.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	r.metrics.DatabaseOperations.WithLabelValues(op, outcome).Inc()
	r.metrics.DatabaseLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
