package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"mentorbook/internal/domain"
	"mentorbook/internal/store"
)

const (
	pgUniqueViolation    = "23505"
	pgExclusionViolation = "23P01"
)

// Repo implements the rule, reservation and outbox stores on one database.
type Repo struct {
	db *bun.DB
}

func NewRepo(db *bun.DB) *Repo {
	return &Repo{db: db}
}

type reservationTx struct {
	tx bun.Tx
}

func (r *Repo) GetRule(ctx context.Context, ownerID string) (domain.RecurrenceRule, error) {
	var m recurrenceRuleModel
	err := r.db.NewSelect().
		Model(&m).
		Where("owner_id = ?", ownerID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.RecurrenceRule{}, store.ErrNotFound
		}
		return domain.RecurrenceRule{}, err
	}
	return toDomainRule(m)
}

func (r *Repo) PutRule(ctx context.Context, rule domain.RecurrenceRule) (domain.RecurrenceRule, error) {
	m := toRuleModel(rule)
	if _, err := r.db.NewInsert().Model(&m).Exec(ctx); err != nil {
		return domain.RecurrenceRule{}, mapWriteError(err)
	}
	rule.ID = m.ID
	rule.CreatedAt = m.CreatedAt
	return rule, nil
}

func (r *Repo) ReplaceRule(ctx context.Context, rule domain.RecurrenceRule) (domain.RecurrenceRule, error) {
	m := toRuleModel(rule)
	m.ID = uuid.Nil
	m.CreatedAt = time.Time{}

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockOwner(ctx, tx, rule.OwnerID); err != nil {
			return err
		}
		res, err := tx.NewDelete().
			Model((*recurrenceRuleModel)(nil)).
			Where("owner_id = ?", rule.OwnerID).
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return store.ErrNotFound
		}
		if _, err := tx.NewInsert().Model(&m).Exec(ctx); err != nil {
			return mapWriteError(err)
		}
		return nil
	})
	if err != nil {
		return domain.RecurrenceRule{}, err
	}

	rule.ID = m.ID
	rule.CreatedAt = m.CreatedAt
	return rule, nil
}

func (r *Repo) CountOverlapping(ctx context.Context, ownerID string, window domain.TimeWindow) (int, error) {
	return countOverlapping(ctx, r.db, ownerID, window)
}

func (r *Repo) ListReservations(ctx context.Context, ownerID string, window domain.TimeWindow) ([]domain.Reservation, error) {
	w := window.Truncate()
	var rows []reservationModel
	err := r.db.NewSelect().
		Model(&rows).
		Where("owner_id = ?", ownerID).
		Where("state = ?", string(domain.ReservationAllocated)).
		Where("start_time < ?", w.End).
		Where("end_time > ?", w.Start).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Reservation, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainReservation(m))
	}
	return out, nil
}

func (r *Repo) InOwnerTransaction(ctx context.Context, ownerID string, fn func(ctx context.Context, tx store.ReservationTx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockOwner(ctx, tx, ownerID); err != nil {
			return err
		}
		return fn(ctx, reservationTx{tx: tx})
	})
}

// lockOwner serializes transactions per owner until commit or rollback.
func lockOwner(ctx context.Context, tx bun.Tx, ownerID string) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", ownerID).Exec(ctx)
	return err
}

func (t reservationTx) CountOverlapping(ctx context.Context, ownerID string, window domain.TimeWindow) (int, error) {
	return countOverlapping(ctx, t.tx, ownerID, window)
}

func (t reservationTx) InsertReservation(ctx context.Context, res domain.Reservation) (domain.Reservation, error) {
	m := toReservationModel(res)
	if _, err := t.tx.NewInsert().Model(&m).Exec(ctx); err != nil {
		return domain.Reservation{}, mapWriteError(err)
	}
	res.ID = m.ID
	res.Window = domain.TimeWindow{Start: m.StartTime, End: m.EndTime}
	res.CreatedAt = m.CreatedAt
	return res, nil
}

func (t reservationTx) EnqueueEvent(ctx context.Context, ev domain.ReservationEvent) error {
	m := toEventModel(ev)
	_, err := t.tx.NewInsert().Model(&m).Exec(ctx)
	return err
}

func countOverlapping(ctx context.Context, db bun.IDB, ownerID string, window domain.TimeWindow) (int, error) {
	w := window.Truncate()
	return db.NewSelect().
		Model((*reservationModel)(nil)).
		Where("owner_id = ?", ownerID).
		Where("state = ?", string(domain.ReservationAllocated)).
		Where("start_time < ?", w.End).
		Where("end_time > ?", w.Start).
		Count(ctx)
}

// mapWriteError turns unique and exclusion violations into store.ErrConflict.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgExclusionViolation:
			return store.ErrConflict
		}
	}
	return err
}
