package payroll

import (
	"context"
	"errors"

	"github.com/gajiflow/payroll-backend-go/internal/domain/payroll"
	"github.com/gajiflow/payroll-backend-go/internal/fixtures"
	"github.com/shopspring/decimal"
)

// ComponentService manages the salary-component catalog.
type ComponentService struct {
	componentRepo payroll.ComponentRepository
}

func NewComponentService(componentRepo payroll.ComponentRepository) *ComponentService {
	return &ComponentService{componentRepo: componentRepo}
}

func (s *ComponentService) Create(ctx context.Context, companyID string, req payroll.CreateComponentRequest) (payroll.SalaryComponent, error) {
	if err := req.Validate(); err != nil {
		return payroll.SalaryComponent{}, err
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return payroll.SalaryComponent{}, err
	}

	component := payroll.SalaryComponent{
		CompanyID:       companyID,
		Code:            req.Code,
		Name:            req.Name,
		Type:            payroll.ComponentType(req.Type),
		Method:          payroll.CalculationMethod(req.Method),
		Amount:          amount,
		EPFApplicable:   boolOrDefault(req.EPFApplicable, true),
		SocsoApplicable: boolOrDefault(req.SocsoApplicable, true),
		EISApplicable:   boolOrDefault(req.EISApplicable, true),
		PCBApplicable:   boolOrDefault(req.PCBApplicable, true),
		IsActive:        true,
	}

	return s.componentRepo.Create(ctx, component)
}

func (s *ComponentService) Get(ctx context.Context, id string, companyID string) (payroll.SalaryComponent, error) {
	return s.componentRepo.GetByID(ctx, id, companyID)
}

func (s *ComponentService) List(ctx context.Context, companyID string) ([]payroll.SalaryComponent, error) {
	return s.componentRepo.List(ctx, companyID)
}

// SeedDefaults inserts the starter component catalog for a company. Codes
// that already exist are left untouched, so seeding is safe to repeat.
func (s *ComponentService) SeedDefaults(ctx context.Context, companyID string) ([]payroll.SalaryComponent, error) {
	var created []payroll.SalaryComponent
	for _, component := range fixtures.GetDefaultSalaryComponents(companyID) {
		saved, err := s.componentRepo.Create(ctx, component)
		if err != nil {
			if errors.Is(err, payroll.ErrComponentExists) {
				continue
			}
			return nil, err
		}
		created = append(created, saved)
	}
	return created, nil
}

// Unset applicability flags default to true: a new earning is statutory
// unless the caller opts it out.
func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
