package ledger

import "errors"

var (
	ErrAccountNotFound = errors.New("ledger account not found")
	ErrEntryNotFound   = errors.New("journal entry not found")

	// ErrUnbalancedEntry means sum(debits) != sum(credits). The entry must
	// be aborted, never adjusted.
	ErrUnbalancedEntry = errors.New("journal entry debits and credits do not balance")

	ErrEntryNotPosted       = errors.New("journal entry is not posted")
	ErrEntryAlreadyReversed = errors.New("journal entry already reversed")
)
