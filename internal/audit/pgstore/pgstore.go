// Package pgstore provides a PostgreSQL implementation of audit.Store.
package pgstore

import (
	"context"
	_ "embed"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linnemanlabs/cityline/internal/audit"
	"github.com/linnemanlabs/cityline/internal/complaint"
)

var tracer = otel.Tracer("github.com/linnemanlabs/cityline/internal/audit/pgstore")

//go:embed schema.sql
var schema string

// Store persists the command audit trail in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New applies the schema on the given pool and returns a ready Store.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Append inserts one audit entry. Entries are immutable once written.
func (s *Store) Append(ctx context.Context, e *audit.Entry) error {
	ctx, span := tracer.Start(ctx, "pgstore.Append", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "INSERT"),
	))
	defer span.End()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO command_audit (id, complaint_id, actor, from_status, to_status, reason, outcome, error, at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.ComplaintID, e.Actor, string(e.FromStatus), string(e.ToStatus),
		e.Reason, string(e.Outcome), e.Error, e.At,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]audit.Entry, error) {
	ctx, span := tracer.Start(ctx, "pgstore.Recent", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	rows, err := s.pool.Query(ctx,
		`SELECT id, complaint_id, actor, from_status, to_status, reason, outcome, error, at
		 FROM command_audit ORDER BY at DESC LIMIT $1`, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	var out []audit.Entry
	for rows.Next() {
		var (
			e          audit.Entry
			fromStatus string
			toStatus   string
			outcome    string
		)
		if err := rows.Scan(&e.ID, &e.ComplaintID, &e.Actor, &fromStatus, &toStatus,
			&e.Reason, &outcome, &e.Error, &e.At); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.FromStatus = complaint.Status(fromStatus)
		e.ToStatus = complaint.Status(toStatus)
		e.Outcome = audit.Outcome(outcome)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return out, nil
}
