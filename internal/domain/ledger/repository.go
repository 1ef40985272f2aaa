package ledger

import (
	"context"
	"time"
)

// Repository is the slice of the general-ledger subsystem payroll consumes.
type Repository interface {
	FindAccountByCode(ctx context.Context, code string, companyID string) (Account, error)

	// CreateJournalEntry persists the entry with its lines and returns it
	// with identifiers assigned. The entry is created in draft status.
	CreateJournalEntry(ctx context.Context, entry JournalEntry) (JournalEntry, error)
	GetJournalEntry(ctx context.Context, id string, companyID string) (JournalEntry, error)

	// Post transitions a draft entry to posted.
	Post(ctx context.Context, id string) error

	// Reverse creates and posts a mirrored entry dated at the given date
	// and returns the reversal's id.
	Reverse(ctx context.Context, id string, date time.Time) (string, error)
}
