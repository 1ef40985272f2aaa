package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/gajiflow/payroll-backend-go/internal/domain/payroll"
	"github.com/gajiflow/payroll-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type componentRepositoryImpl struct {
	db *database.DB
}

func NewComponentRepository(db *database.DB) payroll.ComponentRepository {
	return &componentRepositoryImpl{db: db}
}

const componentColumns = `
	id, company_id, code, name, type, method, amount,
	epf_applicable, socso_applicable, eis_applicable, pcb_applicable,
	is_active, created_at, updated_at
`

func scanComponent(row pgx.Row) (payroll.SalaryComponent, error) {
	var c payroll.SalaryComponent
	err := row.Scan(
		&c.ID, &c.CompanyID, &c.Code, &c.Name, &c.Type, &c.Method, &c.Amount,
		&c.EPFApplicable, &c.SocsoApplicable, &c.EISApplicable, &c.PCBApplicable,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

// Create implements payroll.ComponentRepository.
func (r *componentRepositoryImpl) Create(ctx context.Context, component payroll.SalaryComponent) (payroll.SalaryComponent, error) {
	q := GetQuerier(ctx, r.db)

	if component.ID == "" {
		component.ID = uuid.New().String()
	}

	query := `
		INSERT INTO salary_components (
			id, company_id, code, name, type, method, amount,
			epf_applicable, socso_applicable, eis_applicable, pcb_applicable, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + componentColumns + `
	`

	created, err := scanComponent(q.QueryRow(ctx, query,
		component.ID, component.CompanyID, component.Code, component.Name, component.Type, component.Method, component.Amount,
		component.EPFApplicable, component.SocsoApplicable, component.EISApplicable, component.PCBApplicable,
		component.IsActive,
	))
	if err != nil {
		if strings.Contains(err.Error(), "uk_salary_component_code") {
			return payroll.SalaryComponent{}, payroll.ErrComponentExists
		}
		return payroll.SalaryComponent{}, fmt.Errorf("failed to create salary component: %w", err)
	}

	return created, nil
}

// GetByID implements payroll.ComponentRepository.
func (r *componentRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (payroll.SalaryComponent, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + componentColumns + `
		FROM salary_components
		WHERE id = $1 AND company_id = $2
	`

	component, err := scanComponent(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.SalaryComponent{}, payroll.ErrComponentNotFound
		}
		return payroll.SalaryComponent{}, fmt.Errorf("failed to get salary component: %w", err)
	}

	return component, nil
}

// FindActive implements payroll.ComponentRepository.
func (r *componentRepositoryImpl) FindActive(ctx context.Context, companyID string, componentType payroll.ComponentType) ([]payroll.SalaryComponent, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + componentColumns + `
		FROM salary_components
		WHERE company_id = $1 AND type = $2 AND is_active = TRUE
		ORDER BY code
	`

	return r.queryComponents(ctx, q, query, companyID, componentType)
}

// List implements payroll.ComponentRepository.
func (r *componentRepositoryImpl) List(ctx context.Context, companyID string) ([]payroll.SalaryComponent, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + componentColumns + `
		FROM salary_components
		WHERE company_id = $1
		ORDER BY type, code
	`

	return r.queryComponents(ctx, q, query, companyID)
}

func (r *componentRepositoryImpl) queryComponents(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]payroll.SalaryComponent, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list salary components: %w", err)
	}
	defer rows.Close()

	var components []payroll.SalaryComponent
	for rows.Next() {
		component, err := scanComponent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan salary component: %w", err)
		}
		components = append(components, component)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate salary components: %w", err)
	}

	return components, nil
}
