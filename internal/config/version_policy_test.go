package config

import "testing"

func TestIsSupportedConfigVersion(t *testing.T) {
	if !IsSupportedConfigVersion(CurrentConfigVersion) {
		t.Fatal("current version must be supported")
	}
	if IsSupportedConfigVersion("0") || IsSupportedConfigVersion("") {
		t.Fatal("unknown versions must be rejected")
	}
}

func TestSupportedConfigVersionsCSV(t *testing.T) {
	if got := SupportedConfigVersionsCSV(); got != "1" {
		t.Fatalf("unexpected csv: %q", got)
	}
}
