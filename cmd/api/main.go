package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/gajiflow/payroll-backend-go/internal/config"
	appHTTP "github.com/gajiflow/payroll-backend-go/internal/handler/http"
	"github.com/gajiflow/payroll-backend-go/internal/pkg/database"
	"github.com/gajiflow/payroll-backend-go/internal/pkg/jwt"
	"github.com/gajiflow/payroll-backend-go/internal/repository/postgresql"
	ledgerService "github.com/gajiflow/payroll-backend-go/internal/service/ledger"
	payrollService "github.com/gajiflow/payroll-backend-go/internal/service/payroll"
	statutoryService "github.com/gajiflow/payroll-backend-go/internal/service/statutory"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.App.LogLevel),
	}))

	employeeRepo := postgresql.NewEmployeeRepository(db)
	runRepo := postgresql.NewRunRepository(db)
	paySlipRepo := postgresql.NewPaySlipRepository(db)
	componentRepo := postgresql.NewComponentRepository(db)
	ledgerRepo := postgresql.NewLedgerRepository(db)

	rateTable, err := statutoryService.NewRateTable()
	if err != nil {
		log.Fatal("Failed to load statutory rate tables:", err)
	}
	statutoryCalc := statutoryService.NewCalculator(rateTable)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	poster := ledgerService.NewPoster(cfg.Payroll.Accounts, ledgerRepo, db)
	slipCalc := payrollService.NewPayslipCalculator(paySlipRepo, employeeRepo, componentRepo, statutoryCalc)
	runService := payrollService.NewRunService(
		runRepo,
		paySlipRepo,
		componentRepo,
		employeeRepo,
		slipCalc,
		poster,
		db,
		logger,
	)
	componentService := payrollService.NewComponentService(componentRepo)

	payrollHandler := appHTTP.NewPayrollHandler(runService, componentService)
	statutoryHandler := appHTTP.NewStatutoryHandler(statutoryCalc)

	router := appHTTP.NewRouter(JWTService, payrollHandler, statutoryHandler)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
