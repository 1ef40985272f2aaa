package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/gajiflow/payroll-backend-go/internal/domain/ledger"
	"github.com/gajiflow/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type ledgerRepositoryImpl struct {
	db *database.DB
}

func NewLedgerRepository(db *database.DB) ledger.Repository {
	return &ledgerRepositoryImpl{db: db}
}

// FindAccountByCode implements ledger.Repository.
func (r *ledgerRepositoryImpl) FindAccountByCode(ctx context.Context, code string, companyID string) (ledger.Account, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, code, name, type, is_active, created_at, updated_at
		FROM ledger_accounts
		WHERE code = $1 AND company_id = $2 AND is_active = TRUE
	`

	var a ledger.Account
	err := q.QueryRow(ctx, query, code, companyID).Scan(
		&a.ID, &a.CompanyID, &a.Code, &a.Name, &a.Type, &a.IsActive, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ledger.Account{}, ledger.ErrAccountNotFound
		}
		return ledger.Account{}, fmt.Errorf("failed to get ledger account: %w", err)
	}

	return a, nil
}

// CreateJournalEntry implements ledger.Repository. The entry and its lines
// are inserted together; callers run this inside a transaction.
func (r *ledgerRepositoryImpl) CreateJournalEntry(ctx context.Context, entry ledger.JournalEntry) (ledger.JournalEntry, error) {
	q := GetQuerier(ctx, r.db)

	entryQuery := `
		INSERT INTO journal_entries (company_id, entry_date, reference, memo, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, company_id, entry_date, reference, memo, status, created_at, updated_at
	`

	var created ledger.JournalEntry
	err := q.QueryRow(ctx, entryQuery,
		entry.CompanyID, entry.Date, entry.Reference, entry.Memo, ledger.EntryStatusDraft,
	).Scan(
		&created.ID, &created.CompanyID, &created.Date, &created.Reference,
		&created.Memo, &created.Status, &created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		return ledger.JournalEntry{}, fmt.Errorf("failed to create journal entry: %w", err)
	}

	lineQuery := `
		INSERT INTO journal_lines (entry_id, account_id, description, debit, credit)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	for _, line := range entry.Lines {
		line.EntryID = created.ID
		if err := q.QueryRow(ctx, lineQuery,
			line.EntryID, line.AccountID, line.Description, line.Debit, line.Credit,
		).Scan(&line.ID); err != nil {
			return ledger.JournalEntry{}, fmt.Errorf("failed to create journal line: %w", err)
		}
		created.Lines = append(created.Lines, line)
	}

	return created, nil
}

// GetJournalEntry implements ledger.Repository.
func (r *ledgerRepositoryImpl) GetJournalEntry(ctx context.Context, id string, companyID string) (ledger.JournalEntry, error) {
	q := GetQuerier(ctx, r.db)

	entryQuery := `
		SELECT id, company_id, entry_date, reference, memo, status, reversed_by, created_at, updated_at
		FROM journal_entries
		WHERE id = $1 AND company_id = $2
	`

	var entry ledger.JournalEntry
	err := q.QueryRow(ctx, entryQuery, id, companyID).Scan(
		&entry.ID, &entry.CompanyID, &entry.Date, &entry.Reference,
		&entry.Memo, &entry.Status, &entry.ReversedBy, &entry.CreatedAt, &entry.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ledger.JournalEntry{}, ledger.ErrEntryNotFound
		}
		return ledger.JournalEntry{}, fmt.Errorf("failed to get journal entry: %w", err)
	}

	linesQuery := `
		SELECT l.id, l.entry_id, l.account_id, a.code, l.description, l.debit, l.credit
		FROM journal_lines l
		JOIN ledger_accounts a ON a.id = l.account_id
		WHERE l.entry_id = $1
		ORDER BY l.id
	`

	rows, err := q.Query(ctx, linesQuery, id)
	if err != nil {
		return ledger.JournalEntry{}, fmt.Errorf("failed to list journal lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line ledger.JournalLine
		if err := rows.Scan(
			&line.ID, &line.EntryID, &line.AccountID, &line.AccountCode,
			&line.Description, &line.Debit, &line.Credit,
		); err != nil {
			return ledger.JournalEntry{}, fmt.Errorf("failed to scan journal line: %w", err)
		}
		entry.Lines = append(entry.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return ledger.JournalEntry{}, fmt.Errorf("failed to iterate journal lines: %w", err)
	}

	return entry, nil
}

// Post implements ledger.Repository.
func (r *ledgerRepositoryImpl) Post(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE journal_entries
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	tag, err := q.Exec(ctx, query, ledger.EntryStatusPosted, id, ledger.EntryStatusDraft)
	if err != nil {
		return fmt.Errorf("failed to post journal entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("journal entry %s not found or not in draft", id)
	}

	return nil
}

// Reverse implements ledger.Repository. The reversal mirrors every line with
// debit and credit swapped, is posted immediately and linked back to the
// original entry.
func (r *ledgerRepositoryImpl) Reverse(ctx context.Context, id string, date time.Time) (string, error) {
	var reversalID string

	err := r.db.InTx(ctx, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		var companyID, reference string
		var status ledger.EntryStatus
		err := q.QueryRow(ctx, `
			SELECT company_id, reference, status
			FROM journal_entries
			WHERE id = $1
		`, id).Scan(&companyID, &reference, &status)
		if err != nil {
			if err == pgx.ErrNoRows {
				return ledger.ErrEntryNotFound
			}
			return fmt.Errorf("failed to get journal entry: %w", err)
		}
		if status == ledger.EntryStatusReversed {
			return fmt.Errorf("%w: entry %s", ledger.ErrEntryAlreadyReversed, id)
		}
		if status != ledger.EntryStatusPosted {
			return fmt.Errorf("%w: entry %s has status %s", ledger.ErrEntryNotPosted, id, status)
		}

		err = q.QueryRow(ctx, `
			INSERT INTO journal_entries (company_id, entry_date, reference, memo, status)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, companyID, date, reference+"-REV", "Reversal of "+reference, ledger.EntryStatusPosted).Scan(&reversalID)
		if err != nil {
			return fmt.Errorf("failed to create reversal entry: %w", err)
		}

		tag, err := q.Exec(ctx, `
			INSERT INTO journal_lines (entry_id, account_id, description, debit, credit)
			SELECT $1, account_id, description, credit, debit
			FROM journal_lines
			WHERE entry_id = $2
		`, reversalID, id)
		if err != nil {
			return fmt.Errorf("failed to create reversal lines: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("journal entry %s has no lines to reverse", id)
		}

		_, err = q.Exec(ctx, `
			UPDATE journal_entries
			SET status = $1, reversed_by = $2, updated_at = NOW()
			WHERE id = $3
		`, ledger.EntryStatusReversed, reversalID, id)
		if err != nil {
			return fmt.Errorf("failed to mark journal entry reversed: %w", err)
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	return reversalID, nil
}
