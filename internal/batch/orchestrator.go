package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/samlyndon/vdxconvert/internal/convert"
)

// Orchestrator drives one batch run: it enumerates the input directory,
// routes each file to its converter inside a per-file failure boundary,
// places outputs and archives through the versioned namer, and accumulates
// one outcome per file. Files are processed sequentially in enumeration
// order.
type Orchestrator struct {
	Converters map[Capability]convert.Converter
	OutputDir  string
	ArchiveDir string
	Filter     *Filter
	Log        hclog.Logger

	// OnOutcome, when set, is called after each file with the running
	// position. Used for progress emission.
	OnOutcome func(done, total int, o Outcome)
}

// Run processes every file directly in inputDir and returns one outcome
// per enumerated file. The only error it returns is a fatal
// *EnumerationError; every per-file failure is contained in its outcome.
func (b *Orchestrator) Run(ctx context.Context, inputDir string) ([]Outcome, error) {
	log := b.logger()
	sources, err := Enumerate(inputDir)
	if err != nil {
		return nil, err
	}
	log.Info("starting batch", "input", inputDir, "files", len(sources))

	outcomes := make([]Outcome, 0, len(sources))
	for i, src := range sources {
		o := b.processOne(ctx, src)
		outcomes = append(outcomes, o)
		if b.OnOutcome != nil {
			b.OnOutcome(i+1, len(sources), o)
		}
	}
	return outcomes, nil
}

// processOne walks a single file through the per-file state machine:
// Discovered -> Classified -> {Skipped | Converting -> {Succeeded ->
// Archived | Failed}}. Whatever happens, it returns exactly one outcome.
func (b *Orchestrator) processOne(ctx context.Context, src SourceFile) (o Outcome) {
	log := b.logger()
	start := time.Now()
	o = Outcome{Source: src.Path, Name: src.Name}
	defer func() { o.Duration = time.Since(start) }()

	capability := Classify(src.Ext)
	if capability == CapabilityUnsupported {
		log.Debug("skipping unsupported extension", "file", src.Name, "ext", src.Ext)
		o.Status = StatusSkipped
		o.Kind = KindUnsupported
		o.Detail = fmt.Sprintf("unsupported extension %s", src.Ext)
		return o
	}

	keep, err := b.Filter.Keep(src)
	if err != nil {
		log.Error("filter predicate failed", "file", src.Name, "error", err)
		o.Status = StatusFailed
		o.Kind = KindFilterError
		o.Detail = err.Error()
		return o
	}
	if !keep {
		log.Debug("file excluded by filter", "file", src.Name)
		o.Status = StatusSkipped
		o.Kind = KindFilteredOut
		o.Detail = "excluded by filter predicate"
		return o
	}

	converter, ok := b.Converters[capability]
	if !ok {
		log.Error("no converter registered for capability", "file", src.Name, "capability", capability)
		o.Status = StatusFailed
		o.Kind = KindEngineUnavailable
		o.Detail = fmt.Sprintf("no converter registered for %s files", src.Ext)
		return o
	}

	log.Info("converting", "file", src.Name, "capability", capability)
	data, err := convertGuarded(ctx, converter, src.Path)
	if err != nil {
		kind := KindConversionError
		if k, ok := convert.KindOf(err); ok {
			kind = string(k)
		}
		log.Error("conversion failed", "file", src.Name, "kind", kind, "error", err)
		o.Status = StatusFailed
		o.Kind = kind
		o.Detail = err.Error()
		return o
	}

	base := strings.TrimSuffix(src.Name, filepath.Ext(src.Name))
	target := Reserve(b.OutputDir, base, convert.CanonicalExt)
	if err := os.WriteFile(target, data, 0o644); err != nil {
		log.Error("writing converted output failed", "file", src.Name, "target", target, "error", err)
		o.Status = StatusFailed
		o.Kind = KindWriteFailed
		o.Detail = err.Error()
		return o
	}
	o.Target = target

	archive := Reserve(b.ArchiveDir, base, strings.TrimPrefix(src.Ext, "."))
	if err := moveFile(src.Path, archive); err != nil {
		// The converted output stays in place; only the archive move failed.
		log.Error("archiving original failed", "file", src.Name, "archive", archive, "error", err)
		o.Status = StatusFailed
		o.Kind = KindArchiveFailed
		o.Detail = err.Error()
		return o
	}
	o.Archive = archive

	o.Status = StatusSucceeded
	log.Info("conversion succeeded", "file", src.Name, "target", filepath.Base(target))
	return o
}

func (b *Orchestrator) logger() hclog.Logger {
	if b.Log != nil {
		return b.Log
	}
	return hclog.NewNullLogger()
}

// convertGuarded is the per-file failure boundary: converter errors and
// panics alike surface as ordinary failures so one bad file cannot stop
// the batch.
func convertGuarded(ctx context.Context, c convert.Converter, path string) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &convert.Error{
				Kind:    convert.KindConversionError,
				Message: fmt.Sprintf("converter panic: %v", r),
			}
		}
	}()
	return c.Convert(ctx, path)
}

// moveFile renames src to dst, falling back to copy-and-remove when the
// two live on different filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return err
	}
	return os.Remove(src)
}
