package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"mentorbook/internal/domain"
)

func (r *Repo) PendingEvents(ctx context.Context, limit int) ([]domain.ReservationEvent, error) {
	var rows []reservationEventModel
	q := r.db.NewSelect().
		Model(&rows).
		Where("published_at IS NULL").
		OrderExpr("occurred_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	out := make([]domain.ReservationEvent, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainEvent(m))
	}
	return out, nil
}

func (r *Repo) MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.NewUpdate().
		Model((*reservationEventModel)(nil)).
		Set("published_at = ?", at.UTC()).
		Where("id IN (?)", bun.In(ids)).
		Where("published_at IS NULL").
		Exec(ctx)
	return err
}
