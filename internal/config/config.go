package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Payroll  PayrollConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

// PayrollConfig carries the ledger wiring for payroll postings. Account
// codes are injected into the journal poster at construction time rather
// than read as ambient globals.
type PayrollConfig struct {
	Accounts PayrollAccounts
}

// PayrollAccounts maps every posting the payroll journal needs to a
// chart-of-accounts code.
type PayrollAccounts struct {
	SalariesExpense string
	EPFExpense      string
	SocsoExpense    string
	EISExpense      string

	AccruedSalaries string
	EPFPayable      string
	SocsoPayable    string
	EISPayable      string
	PCBPayable      string

	Bank string
}

func Load() (*Config, error) {
	// Missing .env is fine in production; the environment is already set.
	_ = godotenv.Load()

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "gajiflow"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Payroll ledger accounts
	config.Payroll = PayrollConfig{
		Accounts: PayrollAccounts{
			SalariesExpense: getEnv("ACCOUNT_SALARIES_EXPENSE", "6100"),
			EPFExpense:      getEnv("ACCOUNT_EPF_EXPENSE", "6110"),
			SocsoExpense:    getEnv("ACCOUNT_SOCSO_EXPENSE", "6120"),
			EISExpense:      getEnv("ACCOUNT_EIS_EXPENSE", "6130"),
			AccruedSalaries: getEnv("ACCOUNT_ACCRUED_SALARIES", "2100"),
			EPFPayable:      getEnv("ACCOUNT_EPF_PAYABLE", "2110"),
			SocsoPayable:    getEnv("ACCOUNT_SOCSO_PAYABLE", "2120"),
			EISPayable:      getEnv("ACCOUNT_EIS_PAYABLE", "2130"),
			PCBPayable:      getEnv("ACCOUNT_PCB_PAYABLE", "2140"),
			Bank:            getEnv("ACCOUNT_BANK", "1100"),
		},
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
