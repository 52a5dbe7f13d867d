package logger

import (
	"testing"

	gormlogger "gorm.io/gorm/logger"
)

func TestOperationFromSQL(t *testing.T) {
	cases := map[string]string{
		"SELECT id FROM invoices":                   "SELECT",
		"  insert into invoice_items (id) values (?)": "INSERT",
		"":                                          "UNKNOWN",
		"PRAGMA foreign_keys = ON":                  "UNKNOWN",
	}
	for sql, want := range cases {
		if got := operationFromSQL(sql); got != want {
			t.Fatalf("operationFromSQL(%q) = %q, want %q", sql, got, want)
		}
	}
}

func TestTableFromSQL(t *testing.T) {
	cases := map[string]string{
		"SELECT invoice_number FROM invoices WHERE invoice_number LIKE ?": "invoices",
		"INSERT INTO invoice_taxes (id) VALUES (?)":                       "invoice_taxes",
		`UPDATE "organizations" SET company_name = ?`:                     "organizations",
		"PRAGMA foreign_keys = ON":                                        "",
	}
	for sql, want := range cases {
		if got := tableFromSQL(sql); got != want {
			t.Fatalf("tableFromSQL(%q) = %q, want %q", sql, got, want)
		}
	}
}

func TestParseGormLevel(t *testing.T) {
	if ParseGormLevel("info") != gormlogger.Info {
		t.Fatalf("expected info level")
	}
	if ParseGormLevel("silent") != gormlogger.Silent {
		t.Fatalf("expected silent level")
	}
	if ParseGormLevel("bogus") != gormlogger.Warn {
		t.Fatalf("expected warn fallback")
	}
}

func TestLogModeReturnsCopy(t *testing.T) {
	base := NewGormLogger(DefaultGormLoggerConfig())
	changed := base.LogMode(gormlogger.Info).(*GormLogger)
	if base.level != gormlogger.Warn {
		t.Fatalf("base level mutated")
	}
	if changed.level != gormlogger.Info {
		t.Fatalf("expected info level on copy")
	}
}
