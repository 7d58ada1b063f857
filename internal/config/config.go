package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppPort string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	// RatesBaseURL is the benchmark-rate API root (central bank's SGS).
	RatesBaseURL string
	// RatesTTL is how long a fetched benchmark observation stays fresh.
	RatesTTL time.Duration

	// SimulatorBin is the external photovoltaic simulator executable; empty
	// means the regional fallback model is always used.
	SimulatorBin string

	// PartnerAPIURL serves distributor tariffs and equipment compatibility.
	PartnerAPIURL string
	// BackofficeAPIURL serves spending limits and manual-approval workflows.
	BackofficeAPIURL string
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func Load() *Config {
	c := &Config{
		AppPort:   getenv("APP_PORT", "8080"),
		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "solarfin"),
		MySQLUser: getenv("MYSQL_USER", "solarfin"),
		MySQLPass: getenv("MYSQL_PASS", "solarfin"),

		RedisAddr:    getenv("REDIS_ADDR", "redis:6379"),
		IdempTTLSecs: 300,

		RatesBaseURL: getenv("RATES_BASE_URL", "https://api.bcb.gov.br/dados/serie"),
		RatesTTL:     24 * time.Hour,

		SimulatorBin: os.Getenv("PV_SIMULATOR_BIN"),

		PartnerAPIURL:    getenv("PARTNER_API_URL", "http://partner-api:8080"),
		BackofficeAPIURL: getenv("BACKOFFICE_API_URL", "http://backoffice-api:8080"),
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RedisDB = n
		}
	}
	if v := os.Getenv("IDEMPOTENCY_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.IdempTTLSecs = n
		}
	}
	if v := os.Getenv("RATES_TTL_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.RatesTTL = time.Duration(n) * time.Hour
		}
	}
	return c
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	// ensure port is valid
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.RatesBaseURL == "" {
		return errors.New("missing RATES_BASE_URL")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
