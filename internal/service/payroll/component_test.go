package payroll

import (
	"context"
	"testing"

	"github.com/gajiflow/payroll-backend-go/internal/domain/payroll"
	"github.com/gajiflow/payroll-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolp(b bool) *bool { return &b }

func TestComponentService_Create_FlagsDefaultToApplicable(t *testing.T) {
	t.Parallel()

	svc := NewComponentService(&fakeComponentRepo{})

	component, err := svc.Create(context.Background(), testCompanyID, payroll.CreateComponentRequest{
		Code:   "MEAL",
		Name:   "Meal Allowance",
		Type:   "earning",
		Method: "fixed",
		Amount: "200.00",
	})
	require.NoError(t, err)

	assert.True(t, component.EPFApplicable)
	assert.True(t, component.SocsoApplicable)
	assert.True(t, component.EISApplicable)
	assert.True(t, component.PCBApplicable)
	assert.True(t, component.IsActive)
	assert.Equal(t, "200", component.Amount.String())
}

func TestComponentService_Create_ExplicitFlagsWin(t *testing.T) {
	t.Parallel()

	svc := NewComponentService(&fakeComponentRepo{})

	component, err := svc.Create(context.Background(), testCompanyID, payroll.CreateComponentRequest{
		Code:            "REIMB",
		Name:            "Expense Reimbursement",
		Type:            "earning",
		Method:          "fixed",
		Amount:          "150.00",
		EPFApplicable:   boolp(false),
		SocsoApplicable: boolp(false),
		EISApplicable:   boolp(false),
		PCBApplicable:   boolp(false),
	})
	require.NoError(t, err)

	assert.False(t, component.EPFApplicable)
	assert.False(t, component.SocsoApplicable)
	assert.False(t, component.EISApplicable)
	assert.False(t, component.PCBApplicable)
}

func TestComponentService_Create_InvalidRequest(t *testing.T) {
	t.Parallel()

	svc := NewComponentService(&fakeComponentRepo{})

	_, err := svc.Create(context.Background(), testCompanyID, payroll.CreateComponentRequest{
		Code:   "",
		Name:   "Nameless",
		Type:   "earning",
		Method: "fixed",
		Amount: "100.00",
	})

	var errs validator.ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Contains(t, errs.ToMap(), "code")
}

func TestComponentService_SeedDefaults_PopulatesCatalog(t *testing.T) {
	t.Parallel()

	repo := &fakeComponentRepo{}
	svc := NewComponentService(repo)

	created, err := svc.SeedDefaults(context.Background(), testCompanyID)
	require.NoError(t, err)
	require.NotEmpty(t, created)

	codes := make(map[string]payroll.SalaryComponent, len(created))
	for _, c := range created {
		assert.Equal(t, testCompanyID, c.CompanyID)
		assert.True(t, c.IsActive)
		codes[c.Code] = c
	}

	require.Contains(t, codes, "OVERTIME")
	overtime := codes["OVERTIME"]
	assert.False(t, overtime.EPFApplicable)
	assert.True(t, overtime.SocsoApplicable)
	assert.True(t, overtime.EISApplicable)
	assert.True(t, overtime.PCBApplicable)

	require.Contains(t, codes, "TRAVEL")
	travel := codes["TRAVEL"]
	assert.False(t, travel.EPFApplicable)
	assert.False(t, travel.SocsoApplicable)
	assert.False(t, travel.EISApplicable)
	assert.False(t, travel.PCBApplicable)
}

func TestComponentService_SeedDefaults_IsIdempotent(t *testing.T) {
	t.Parallel()

	repo := &fakeComponentRepo{}
	svc := NewComponentService(repo)

	first, err := svc.SeedDefaults(context.Background(), testCompanyID)
	require.NoError(t, err)

	second, err := svc.SeedDefaults(context.Background(), testCompanyID)
	require.NoError(t, err)

	assert.Empty(t, second, "existing codes must be skipped on re-seed")
	components, err := svc.List(context.Background(), testCompanyID)
	require.NoError(t, err)
	assert.Len(t, components, len(first))
}
