package batch

import (
	"strings"
	"testing"
	"time"
)

func TestNewFilterEmptyInlineKeepsEverything(t *testing.T) {
	f, err := NewFilter("", 0)
	if err != nil {
		t.Fatalf("NewFilter: %v", err)
	}
	if f != nil {
		t.Fatal("expected nil filter for empty inline")
	}
	keep, err := f.Keep(SourceFile{Name: "a.vsdx", Ext: ".vsdx"})
	if err != nil || !keep {
		t.Fatalf("nil filter should keep: keep=%v err=%v", keep, err)
	}
}

func TestNewFilterRejectsBadSyntax(t *testing.T) {
	if _, err := NewFilter("this is not lua ((", 0); err == nil {
		t.Fatal("expected syntax error")
	}
}

func TestFilterKeepExpression(t *testing.T) {
	f, err := NewFilter(`ext ~= "vdw" and size < 1000000`, 0)
	if err != nil {
		t.Fatalf("NewFilter: %v", err)
	}

	keep, err := f.Keep(SourceFile{Name: "a.vsdx", Ext: ".vsdx", Size: 512})
	if err != nil {
		t.Fatalf("Keep: %v", err)
	}
	if !keep {
		t.Fatal("expected a.vsdx to pass")
	}

	keep, err = f.Keep(SourceFile{Name: "old.vdw", Ext: ".vdw", Size: 512})
	if err != nil {
		t.Fatalf("Keep: %v", err)
	}
	if keep {
		t.Fatal("expected old.vdw to be excluded")
	}
}

func TestFilterKeepExplicitReturn(t *testing.T) {
	f, err := NewFilter(`if string.find(name, "draft") then return false end return true`, 0)
	if err != nil {
		t.Fatalf("NewFilter: %v", err)
	}
	keep, err := f.Keep(SourceFile{Name: "draft-copy.vsdx", Ext: ".vsdx"})
	if err != nil {
		t.Fatalf("Keep: %v", err)
	}
	if keep {
		t.Fatal("expected draft file to be excluded")
	}
}

func TestFilterRuntimeErrorSurfaces(t *testing.T) {
	f, err := NewFilter(`nosuchfunction()`, 0)
	if err != nil {
		t.Fatalf("NewFilter: %v", err)
	}
	if _, err := f.Keep(SourceFile{Name: "a.vsdx", Ext: ".vsdx"}); err == nil {
		t.Fatal("expected runtime error")
	}
}

func TestFilterTimeoutBoundsEvaluation(t *testing.T) {
	f, err := NewFilter(`while true do end return true`, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("NewFilter: %v", err)
	}
	start := time.Now()
	_, err = f.Keep(SourceFile{Name: "a.vsdx", Ext: ".vsdx"})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !strings.Contains(err.Error(), "context") && !strings.Contains(err.Error(), "deadline") {
		t.Logf("timeout error detail: %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatal("filter evaluation was not bounded")
	}
}
