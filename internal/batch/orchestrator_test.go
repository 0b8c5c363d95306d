package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samlyndon/vdxconvert/internal/convert"
	"github.com/samlyndon/vdxconvert/internal/testutil"
)

// stubConverter returns fixed bytes, or fails for paths matching failSubstr.
type stubConverter struct {
	data       []byte
	failSubstr string
	failErr    error
	panicMsg   string
}

func (s *stubConverter) Convert(_ context.Context, sourcePath string) ([]byte, error) {
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	if s.failSubstr != "" && strings.Contains(sourcePath, s.failSubstr) {
		return nil, s.failErr
	}
	return s.data, nil
}

func newTestDirs(t *testing.T) (input, output, archive string) {
	t.Helper()
	root := t.TempDir()
	input = filepath.Join(root, "input")
	output = filepath.Join(root, "output")
	archive = filepath.Join(root, "archive")
	for _, d := range []string{input, output, archive} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", d, err)
		}
	}
	return input, output, archive
}

func countByStatus(outcomes []Outcome) map[Status]int {
	counts := map[Status]int{}
	for _, o := range outcomes {
		counts[o.Status]++
	}
	return counts
}

func TestRunMixedBatch(t *testing.T) {
	input, output, archive := newTestDirs(t)
	if err := testutil.WriteTree(input, map[string]string{
		"a.vsdx": "native",
		"b.vsd":  "binary",
		"c.jpg":  "image",
	}); err != nil {
		t.Fatalf("seed input: %v", err)
	}

	orch := &Orchestrator{
		Converters: map[Capability]convert.Converter{
			CapabilityXMLNative: &stubConverter{data: []byte("<VisioDocument/>")},
			CapabilityOffice: &stubConverter{
				failSubstr: "b.vsd",
				failErr:    &convert.Error{Kind: convert.KindEngineUnavailable, Message: "no office engine found"},
			},
		},
		OutputDir:  output,
		ArchiveDir: archive,
	}

	outcomes, err := orch.Run(context.Background(), input)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(outcomes) != 3 {
		t.Fatalf("expected one outcome per enumerated file, got %d", len(outcomes))
	}
	counts := countByStatus(outcomes)
	if counts[StatusSucceeded] != 1 || counts[StatusFailed] != 1 || counts[StatusSkipped] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}

	for _, o := range outcomes {
		switch o.Name {
		case "a.vsdx":
			if o.Status != StatusSucceeded {
				t.Fatalf("a.vsdx: %+v", o)
			}
			if o.Target != filepath.Join(output, "a.vdx") {
				t.Fatalf("a.vsdx target: %s", o.Target)
			}
			if o.Archive != filepath.Join(archive, "a.vsdx") {
				t.Fatalf("a.vsdx archive: %s", o.Archive)
			}
		case "b.vsd":
			if o.Status != StatusFailed || o.Kind != KindEngineUnavailable {
				t.Fatalf("b.vsd: %+v", o)
			}
		case "c.jpg":
			if o.Status != StatusSkipped || o.Kind != KindUnsupported {
				t.Fatalf("c.jpg: %+v", o)
			}
		}
	}

	// The successful original moved to archive; the others stay put.
	if _, err := os.Stat(filepath.Join(input, "a.vsdx")); !os.IsNotExist(err) {
		t.Fatal("a.vsdx should have been moved out of input")
	}
	for _, name := range []string{"b.vsd", "c.jpg"} {
		if _, err := os.Stat(filepath.Join(input, name)); err != nil {
			t.Fatalf("%s should remain in input: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(archive, "a.vsdx")); err != nil {
		t.Fatalf("archived original missing: %v", err)
	}
}

func TestRunFailureDoesNotStopBatch(t *testing.T) {
	input, output, archive := newTestDirs(t)
	if err := testutil.WriteTree(input, map[string]string{
		"bad.vsdx":  "x",
		"good.vsdx": "y",
	}); err != nil {
		t.Fatalf("seed input: %v", err)
	}

	orch := &Orchestrator{
		Converters: map[Capability]convert.Converter{
			CapabilityXMLNative: &stubConverter{
				data:       []byte("ok"),
				failSubstr: "bad.vsdx",
				failErr:    &convert.Error{Kind: convert.KindConversionError, Message: "unreadable"},
			},
		},
		OutputDir:  output,
		ArchiveDir: archive,
	}

	outcomes, err := orch.Run(context.Background(), input)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	counts := countByStatus(outcomes)
	if counts[StatusFailed] != 1 || counts[StatusSucceeded] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}

func TestRunPanicIsContained(t *testing.T) {
	input, output, archive := newTestDirs(t)
	if err := testutil.WriteTree(input, map[string]string{"boom.vsdx": "x"}); err != nil {
		t.Fatalf("seed input: %v", err)
	}

	orch := &Orchestrator{
		Converters: map[Capability]convert.Converter{
			CapabilityXMLNative: &stubConverter{panicMsg: "index out of range"},
		},
		OutputDir:  output,
		ArchiveDir: archive,
	}

	outcomes, err := orch.Run(context.Background(), input)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(outcomes) != 1 || outcomes[0].Status != StatusFailed {
		t.Fatalf("unexpected outcomes: %+v", outcomes)
	}
	if outcomes[0].Kind != KindConversionError || !strings.Contains(outcomes[0].Detail, "panic") {
		t.Fatalf("panic not surfaced: %+v", outcomes[0])
	}
}

func TestRunArchiveFailureKeepsOutput(t *testing.T) {
	input, output, _ := newTestDirs(t)
	if err := testutil.WriteTree(input, map[string]string{"a.vsdx": "x"}); err != nil {
		t.Fatalf("seed input: %v", err)
	}
	// Point the archive directory at a regular file so the move fails.
	notADir := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(notADir, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	orch := &Orchestrator{
		Converters: map[Capability]convert.Converter{
			CapabilityXMLNative: &stubConverter{data: []byte("out")},
		},
		OutputDir:  output,
		ArchiveDir: notADir,
	}

	outcomes, err := orch.Run(context.Background(), input)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	o := outcomes[0]
	if o.Status != StatusFailed || o.Kind != KindArchiveFailed {
		t.Fatalf("expected archive-failed, got %+v", o)
	}
	// The converted output is not rolled back.
	if _, err := os.Stat(o.Target); err != nil {
		t.Fatalf("converted output missing after archive failure: %v", err)
	}
	if _, err := os.Stat(filepath.Join(input, "a.vsdx")); err != nil {
		t.Fatalf("original should remain in input: %v", err)
	}
}

func TestRunWriteFailure(t *testing.T) {
	input, _, archive := newTestDirs(t)
	if err := testutil.WriteTree(input, map[string]string{"a.vsdx": "x"}); err != nil {
		t.Fatalf("seed input: %v", err)
	}

	orch := &Orchestrator{
		Converters: map[Capability]convert.Converter{
			CapabilityXMLNative: &stubConverter{data: []byte("out")},
		},
		OutputDir:  filepath.Join(t.TempDir(), "missing", "deeper"),
		ArchiveDir: archive,
	}

	outcomes, err := orch.Run(context.Background(), input)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if outcomes[0].Kind != KindWriteFailed {
		t.Fatalf("expected write-failed, got %+v", outcomes[0])
	}
	if _, err := os.Stat(filepath.Join(input, "a.vsdx")); err != nil {
		t.Fatalf("original should remain in input after write failure: %v", err)
	}
}

func TestRunOutputVersioningOnRerun(t *testing.T) {
	input, output, archive := newTestDirs(t)
	if err := testutil.WriteTree(input, map[string]string{"a.vsdx": "x"}); err != nil {
		t.Fatalf("seed input: %v", err)
	}
	// A previous run already produced a.vdx.
	if err := os.WriteFile(filepath.Join(output, "a.vdx"), []byte("old"), 0o644); err != nil {
		t.Fatalf("seed output: %v", err)
	}

	orch := &Orchestrator{
		Converters: map[Capability]convert.Converter{
			CapabilityXMLNative: &stubConverter{data: []byte("new")},
		},
		OutputDir:  output,
		ArchiveDir: archive,
	}

	outcomes, err := orch.Run(context.Background(), input)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	o := outcomes[0]
	if o.Target != filepath.Join(output, "a (1).vdx") {
		t.Fatalf("expected versioned target, got %s", o.Target)
	}
	old, err := os.ReadFile(filepath.Join(output, "a.vdx"))
	if err != nil || string(old) != "old" {
		t.Fatalf("prior output was overwritten: %q %v", old, err)
	}
}

func TestRunFilterSkipsAndErrors(t *testing.T) {
	input, output, archive := newTestDirs(t)
	if err := testutil.WriteTree(input, map[string]string{
		"keep.vsdx": "x",
		"drop.vsdx": "y",
	}); err != nil {
		t.Fatalf("seed input: %v", err)
	}
	filter, err := NewFilter(`not string.find(name, "drop")`, 0)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}

	orch := &Orchestrator{
		Converters: map[Capability]convert.Converter{
			CapabilityXMLNative: &stubConverter{data: []byte("out")},
		},
		OutputDir:  output,
		ArchiveDir: archive,
		Filter:     filter,
	}

	outcomes, err := orch.Run(context.Background(), input)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	counts := countByStatus(outcomes)
	if counts[StatusSucceeded] != 1 || counts[StatusSkipped] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
	for _, o := range outcomes {
		if o.Name == "drop.vsdx" && o.Kind != KindFilteredOut {
			t.Fatalf("drop.vsdx: %+v", o)
		}
	}
}

func TestRunEnumerationFailureIsFatal(t *testing.T) {
	orch := &Orchestrator{OutputDir: t.TempDir(), ArchiveDir: t.TempDir()}
	_, err := orch.Run(context.Background(), filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Fatal("expected enumeration error")
	}
	var ee *EnumerationError
	if !errors.As(err, &ee) {
		t.Fatalf("expected *EnumerationError, got %T: %v", err, err)
	}
}

func TestRunEmptyInputDirectory(t *testing.T) {
	input, output, archive := newTestDirs(t)
	orch := &Orchestrator{OutputDir: output, ArchiveDir: archive}
	outcomes, err := orch.Run(context.Background(), input)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(outcomes) != 0 {
		t.Fatalf("expected no outcomes, got %d", len(outcomes))
	}
}

func TestRunProgressHookSeesEveryFile(t *testing.T) {
	input, output, archive := newTestDirs(t)
	if err := testutil.WriteTree(input, map[string]string{
		"a.vsdx": "x",
		"b.jpg":  "y",
	}); err != nil {
		t.Fatalf("seed input: %v", err)
	}

	var seen []string
	orch := &Orchestrator{
		Converters: map[Capability]convert.Converter{
			CapabilityXMLNative: &stubConverter{data: []byte("out")},
		},
		OutputDir:  output,
		ArchiveDir: archive,
		OnOutcome: func(done, total int, o Outcome) {
			if total != 2 {
				t.Errorf("total = %d, want 2", total)
			}
			seen = append(seen, o.Name)
		},
	}
	if _, err := orch.Run(context.Background(), input); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(seen) != 2 {
		t.Fatalf("progress hook saw %d files, want 2", len(seen))
	}
}
