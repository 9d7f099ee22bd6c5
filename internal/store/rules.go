package store

import (
	"context"

	"mentorbook/internal/domain"
)

// RecurrenceRuleStore keeps at most one rule per owner.
type RecurrenceRuleStore interface {
	// GetRule returns ErrNotFound when the owner has no rule.
	GetRule(ctx context.Context, ownerID string) (domain.RecurrenceRule, error)
	// PutRule returns ErrConflict when the owner already has a rule.
	PutRule(ctx context.Context, rule domain.RecurrenceRule) (domain.RecurrenceRule, error)
	// ReplaceRule swaps the owner's rule as a whole; ErrNotFound when absent.
	ReplaceRule(ctx context.Context, rule domain.RecurrenceRule) (domain.RecurrenceRule, error)
}
