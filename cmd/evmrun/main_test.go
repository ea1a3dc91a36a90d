package main

import "testing"

func TestRunRawAddScenario(t *testing.T) {
	if code := run([]string{"testdata/add.json"}); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
}

func TestRunMissingFile(t *testing.T) {
	if code := run([]string{"testdata/does-not-exist.json"}); code != 1 {
		t.Fatalf("expected exit code 1 for missing scenario, got %d", code)
	}
}

func TestRunRequiresExactlyOneArg(t *testing.T) {
	if code := run(nil); code != 2 {
		t.Fatalf("expected exit code 2 for missing argument, got %d", code)
	}
	if code := run([]string{"a", "b"}); code != 2 {
		t.Fatalf("expected exit code 2 for too many arguments, got %d", code)
	}
}
