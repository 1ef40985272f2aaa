package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/gajiflow/payroll-backend-go/internal/config"
	"github.com/gajiflow/payroll-backend-go/internal/domain/ledger"
	"github.com/gajiflow/payroll-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// TxRunner executes a function atomically. Line insertion and the posted
// transition of a journal entry must commit together or not at all.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Poster turns payroll-run totals into balanced double-entry ledger
// transactions. It never mutates run status; it returns journal ids for the
// run service to record.
type Poster struct {
	accounts   config.PayrollAccounts
	ledgerRepo ledger.Repository
	tx         TxRunner
}

func NewPoster(accounts config.PayrollAccounts, ledgerRepo ledger.Repository, tx TxRunner) *Poster {
	return &Poster{accounts: accounts, ledgerRepo: ledgerRepo, tx: tx}
}

// PostAccrual builds and posts the salary accrual entry for a calculated
// run: debit gross salaries and per-kind employer contributions, credit net
// accrued salaries and per-kind statutory payables (employer and employee
// shares combined). Zero-amount lines are skipped.
func (p *Poster) PostAccrual(ctx context.Context, run payroll.PayrollRun) (string, error) {
	t := run.Totals

	lines, err := p.buildLines(ctx, run.CompanyID, []lineSpec{
		{code: p.accounts.SalariesExpense, debit: t.Gross, desc: "Gross salaries " + run.Period.String()},
		{code: p.accounts.EPFExpense, debit: t.EPFEmployer, desc: "Employer EPF contribution"},
		{code: p.accounts.SocsoExpense, debit: t.SocsoEmployer, desc: "Employer SOCSO contribution"},
		{code: p.accounts.EISExpense, debit: t.EISEmployer, desc: "Employer EIS contribution"},
		{code: p.accounts.AccruedSalaries, credit: t.Net, desc: "Net salaries payable"},
		{code: p.accounts.EPFPayable, credit: t.EPFEmployee.Add(t.EPFEmployer), desc: "EPF payable"},
		{code: p.accounts.SocsoPayable, credit: t.SocsoEmployee.Add(t.SocsoEmployer), desc: "SOCSO payable"},
		{code: p.accounts.EISPayable, credit: t.EISEmployee.Add(t.EISEmployer), desc: "EIS payable"},
		{code: p.accounts.PCBPayable, credit: t.PCB, desc: "PCB payable"},
	})
	if err != nil {
		return "", err
	}

	entry := ledger.JournalEntry{
		CompanyID: run.CompanyID,
		Date:      run.Period.End(),
		Reference: fmt.Sprintf("PAYROLL-%s-%d", run.Period, run.RunNumber),
		Memo:      "Payroll accrual " + run.Period.String(),
		Lines:     lines,
	}
	return p.createAndPost(ctx, entry)
}

// PostPayment builds and posts the two-line payment entry for a finalized
// run: debit accrued salaries, credit bank, for the net amount.
func (p *Poster) PostPayment(ctx context.Context, run payroll.PayrollRun, paymentDate time.Time, bankAccountCode *string) (string, error) {
	bank := p.accounts.Bank
	if bankAccountCode != nil {
		bank = *bankAccountCode
	}

	lines, err := p.buildLines(ctx, run.CompanyID, []lineSpec{
		{code: p.accounts.AccruedSalaries, debit: run.Totals.Net, desc: "Salary payment " + run.Period.String()},
		{code: bank, credit: run.Totals.Net, desc: "Salary payment " + run.Period.String()},
	})
	if err != nil {
		return "", err
	}

	entry := ledger.JournalEntry{
		CompanyID: run.CompanyID,
		Date:      paymentDate,
		Reference: fmt.Sprintf("PAYROLL-PAY-%s-%d", run.Period, run.RunNumber),
		Memo:      "Payroll payment " + run.Period.String(),
		Lines:     lines,
	}
	return p.createAndPost(ctx, entry)
}

// Reverse delegates to the ledger's reversal primitive, dated as given.
func (p *Poster) Reverse(ctx context.Context, journalEntryID string, date time.Time) (string, error) {
	reversalID, err := p.ledgerRepo.Reverse(ctx, journalEntryID, date)
	if err != nil {
		return "", fmt.Errorf("reverse journal entry %s: %w", journalEntryID, err)
	}
	return reversalID, nil
}

type lineSpec struct {
	code   string
	desc   string
	debit  decimal.Decimal
	credit decimal.Decimal
}

func (p *Poster) buildLines(ctx context.Context, companyID string, specs []lineSpec) ([]ledger.JournalLine, error) {
	var lines []ledger.JournalLine
	for _, s := range specs {
		if s.debit.IsZero() && s.credit.IsZero() {
			continue
		}
		account, err := p.ledgerRepo.FindAccountByCode(ctx, s.code, companyID)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", s.code, err)
		}
		lines = append(lines, ledger.JournalLine{
			AccountID:   account.ID,
			AccountCode: account.Code,
			Description: s.desc,
			Debit:       s.debit,
			Credit:      s.credit,
		})
	}
	return lines, nil
}

func (p *Poster) createAndPost(ctx context.Context, entry ledger.JournalEntry) (string, error) {
	debits, credits := entry.TotalDebits(), entry.TotalCredits()
	if !debits.Equal(credits) {
		return "", fmt.Errorf("%w: ref=%s debits=%s credits=%s",
			ledger.ErrUnbalancedEntry, entry.Reference, debits.StringFixed(2), credits.StringFixed(2))
	}

	var id string
	err := p.tx.InTx(ctx, func(ctx context.Context) error {
		created, err := p.ledgerRepo.CreateJournalEntry(ctx, entry)
		if err != nil {
			return fmt.Errorf("create journal entry %s: %w", entry.Reference, err)
		}
		if err := p.ledgerRepo.Post(ctx, created.ID); err != nil {
			return fmt.Errorf("post journal entry %s: %w", created.ID, err)
		}
		id = created.ID
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}
