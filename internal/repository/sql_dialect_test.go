package repository

import (
	"testing"
)

func TestBuildContainsConditionByDialectSQLite(t *testing.T) {
	condition, argCount := buildContainsConditionByDialect("sqlite", "name", " ", "description")
	if argCount != 2 {
		t.Fatalf("arg count want 2 got %d", argCount)
	}
	want := "LOWER(name) LIKE ? OR LOWER(description) LIKE ?"
	if condition != want {
		t.Fatalf("sqlite condition mismatch, want %s got %s", want, condition)
	}
}

func TestBuildContainsConditionByDialectPostgres(t *testing.T) {
	condition, argCount := buildContainsConditionByDialect("postgres", "name")
	if argCount != 1 || condition != "name ILIKE ?" {
		t.Fatalf("postgres condition mismatch: %s (%d)", condition, argCount)
	}
}

func TestContainsPattern(t *testing.T) {
	if got := containsPattern("  Taco "); got != "%taco%" {
		t.Fatalf("unexpected pattern: %s", got)
	}
}

func TestRepeatLikeArgs(t *testing.T) {
	args := repeatLikeArgs("%test%", 3)
	if len(args) != 3 {
		t.Fatalf("args len want 3 got %d", len(args))
	}
	for idx, arg := range args {
		if arg != "%test%" {
			t.Fatalf("args[%d] want %%test%% got %v", idx, arg)
		}
	}
}
