package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

type Account struct {
	ID        string
	CompanyID string
	Code      string
	Name      string
	Type      AccountType
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type EntryStatus string

const (
	EntryStatusDraft    EntryStatus = "draft"
	EntryStatusPosted   EntryStatus = "posted"
	EntryStatusReversed EntryStatus = "reversed"
)

// JournalLine is one side of a double-entry posting. Exactly one of Debit
// and Credit is non-zero.
type JournalLine struct {
	ID          string
	EntryID     string
	AccountID   string
	AccountCode string
	Description string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// JournalEntry is a double-entry transaction. The debit/credit balance
// invariant is checked before persistence and must never be silently
// corrected.
type JournalEntry struct {
	ID         string
	CompanyID  string
	Date       time.Time
	Reference  string
	Memo       string
	Status     EntryStatus
	Lines      []JournalLine
	ReversedBy *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (e JournalEntry) TotalDebits() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		total = total.Add(l.Debit)
	}
	return total
}

func (e JournalEntry) TotalCredits() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		total = total.Add(l.Credit)
	}
	return total
}

func (e JournalEntry) Balanced() bool {
	return e.TotalDebits().Equal(e.TotalCredits())
}
