package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.AppPort != "8080" || c.DBDriver != DriverMySQL || c.IdempTTLSecs != 300 {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.ConnMaxLifetime != 30*time.Minute {
		t.Fatalf("ConnMaxLifetime = %v", c.ConnMaxLifetime)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("CIRCULATION_APP_PORT", "9090")
	t.Setenv("CIRCULATION_DB_DRIVER", " Postgres ")
	t.Setenv("CIRCULATION_POSTGRES_DSN", "postgres://u:p@localhost:5432/lib?sslmode=disable")
	t.Setenv("CIRCULATION_REDIS_DB", "3")
	t.Setenv("CIRCULATION_IDEMPOTENCY_TTL_SECONDS", "60")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.AppPort != "9090" || c.DBDriver != DriverPostgres || c.RedisDB != 3 {
		t.Fatalf("unexpected config: %+v", c)
	}
	if c.IdempotencyTTL() != time.Minute {
		t.Fatalf("IdempotencyTTL = %v", c.IdempotencyTTL())
	}
	if c.DSN() != c.PostgresDSN {
		t.Fatalf("DSN = %q", c.DSN())
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoad_BadInt(t *testing.T) {
	t.Setenv("CIRCULATION_REDIS_DB", "x")
	if _, err := Load(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			AppPort: "8080", DBDriver: DriverMySQL, IdempTTLSecs: 300,
			MySQLHost: "db", MySQLPort: "3306", MySQLDB: "lib", MySQLUser: "u",
		}
	}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ok", func(*Config) {}, ""},
		{"missing port", func(c *Config) { c.AppPort = "" }, "APP_PORT"},
		{"bad mysql port", func(c *Config) { c.MySQLPort = "nope" }, "MYSQL_PORT"},
		{"missing mysql host", func(c *Config) { c.MySQLHost = "" }, "MySQL"},
		{"postgres without dsn", func(c *Config) { c.DBDriver = DriverPostgres }, "POSTGRES_DSN"},
		{"sqlite without path", func(c *Config) { c.DBDriver = DriverSQLite }, "SQLITE_PATH"},
		{"unknown driver", func(c *Config) { c.DBDriver = "oracle" }, "unsupported"},
		{"zero ttl", func(c *Config) { c.IdempTTLSecs = 0 }, "IDEMPOTENCY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected err: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestMySQLDSN(t *testing.T) {
	c := &Config{MySQLHost: "db", MySQLPort: "3306", MySQLDB: "lib", MySQLUser: "u", MySQLPass: "p"}
	want := "u:p@tcp(db:3306)/lib?multiStatements=true&parseTime=true&loc=UTC&charset=utf8mb4,utf8"
	if got := c.MySQLDSN(); got != want {
		t.Fatalf("MySQLDSN = %q, want %q", got, want)
	}
	if c.DSN() != want {
		t.Fatal("mysql is the default driver")
	}
}
