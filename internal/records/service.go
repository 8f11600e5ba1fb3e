package records

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/callshield/backend/internal/cache"
	"github.com/callshield/backend/internal/models"
)

// HistoryLimit caps the history query to the most recent records.
const HistoryLimit = 100

const historyCacheKey = "call-history:latest"

// Service persists call records and serves the history query. Records are
// append-only; nothing here updates or deletes them.
type Service struct {
	db       *pgxpool.Pool
	cache    *cache.Cache
	cacheTTL time.Duration
}

// NewService wires the record store. The cache is optional; pass nil to
// serve history straight from Postgres.
func NewService(db *pgxpool.Pool, c *cache.Cache, cacheTTL time.Duration) *Service {
	return &Service{db: db, cache: c, cacheTTL: cacheTTL}
}

// Create appends the record. A write failure is fatal for the request: the
// client must never see a verdict that was not durably saved.
func (s *Service) Create(ctx context.Context, rec *models.CallRecord) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO call_records (id, phone_number, timestamp, risk_category, fraud_score, reason, transcript)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.PhoneNumber, rec.Timestamp, rec.RiskCategory, rec.FraudScore, rec.Reason, rec.Transcript,
	)
	if err != nil {
		return fmt.Errorf("insert call record: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, historyCacheKey); err != nil {
			slog.Warn("failed to invalidate history cache", "error", err)
		}
	}

	return nil
}

// History returns the most recent records, newest first, capped at
// HistoryLimit. Read-only.
func (s *Service) History(ctx context.Context) ([]models.CallRecord, error) {
	if s.cache != nil {
		var cached []models.CallRecord
		if err := s.cache.Get(ctx, historyCacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, phone_number, timestamp, risk_category, fraud_score, reason, transcript
		 FROM call_records
		 ORDER BY timestamp DESC
		 LIMIT $1`,
		HistoryLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("query call history: %w", err)
	}
	defer rows.Close()

	var recs []models.CallRecord
	for rows.Next() {
		var rec models.CallRecord
		if err := rows.Scan(&rec.ID, &rec.PhoneNumber, &rec.Timestamp, &rec.RiskCategory, &rec.FraudScore, &rec.Reason, &rec.Transcript); err != nil {
			return nil, fmt.Errorf("scan call record: %w", err)
		}
		rec.Timestamp = rec.Timestamp.UTC()
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate call history: %w", err)
	}

	if s.cache != nil && len(recs) > 0 {
		if err := s.cache.Set(ctx, historyCacheKey, recs, s.cacheTTL); err != nil {
			slog.Warn("failed to cache history", "error", err)
		}
	}

	return recs, nil
}
