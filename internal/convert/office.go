package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
)

const stderrCaptureMaxBytes = 4096

// Office converts the legacy binary Visio formats (.vsd, .vdw) by driving
// a local office engine out of process. unoconv is preferred when present;
// a headless soffice invocation is the fallback. Each conversion spawns its
// own process with a bounded wait, so a hung engine costs at most one
// timeout and never leaks into the next file.
type Office struct {
	// Program overrides the soffice binary name or path.
	Program string
	// UseUnoconv enables the unoconv front-end when it is on PATH.
	UseUnoconv bool
	// Timeout bounds one engine invocation.
	Timeout time.Duration
	// TermGrace is how long the engine gets to exit after SIGTERM before
	// the whole process group is killed.
	TermGrace time.Duration
	Log       hclog.Logger

	// lookPath is a seam for tests; defaults to exec.LookPath.
	lookPath func(string) (string, error)
}

func NewOffice(program string, useUnoconv bool, timeout, termGrace time.Duration, log hclog.Logger) *Office {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Office{
		Program:    program,
		UseUnoconv: useUnoconv,
		Timeout:    timeout,
		TermGrace:  termGrace,
		Log:        log,
	}
}

type engineInvocation struct {
	name string
	path string
	args func(src, outDir string) []string
}

func unoconvArgs(src, outDir string) []string {
	return []string{"-f", CanonicalExt, "-o", outDir, src}
}

func sofficeArgs(src, outDir string) []string {
	return []string{"--headless", "--convert-to", CanonicalExt, "--outdir", outDir, src}
}

// engines returns the available engine invocations in preference order.
func (o *Office) engines() []engineInvocation {
	lp := o.lookPath
	if lp == nil {
		lp = exec.LookPath
	}
	var list []engineInvocation
	if o.UseUnoconv {
		if p, err := lp("unoconv"); err == nil {
			list = append(list, engineInvocation{name: "unoconv", path: p, args: unoconvArgs})
		}
	}
	prog := o.Program
	if prog == "" {
		prog = "soffice"
	}
	if p, err := lp(prog); err == nil {
		list = append(list, engineInvocation{name: prog, path: p, args: sofficeArgs})
	}
	return list
}

func (o *Office) Convert(ctx context.Context, sourcePath string) ([]byte, error) {
	engines := o.engines()
	if len(engines) == 0 {
		return nil, &Error{
			Kind:    KindEngineUnavailable,
			Message: "no office engine found (install unoconv or LibreOffice)",
		}
	}

	tmpDir, err := os.MkdirTemp("", "vdxconvert-")
	if err != nil {
		return nil, &Error{Kind: KindConversionError, Message: fmt.Sprintf("temp dir: %v", err)}
	}
	defer os.RemoveAll(tmpDir)

	base := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	produced := filepath.Join(tmpDir, base+"."+CanonicalExt)

	var lastDetail string
	for _, eng := range engines {
		res := o.runEngine(ctx, eng.path, eng.args(sourcePath, tmpDir))
		if res.timedOut {
			return nil, &Error{
				Kind:    KindTimeout,
				Message: fmt.Sprintf("%s exceeded %s converting %s", eng.name, o.Timeout, filepath.Base(sourcePath)),
			}
		}
		if res.errorMsg != "" {
			lastDetail = res.errorMsg
			o.Log.Debug("engine invocation failed", "engine", eng.name, "detail", res.errorMsg)
			continue
		}
		if res.exitCode != 0 {
			lastDetail = fmt.Sprintf("%s exited with status %d: %s", eng.name, res.exitCode, strings.TrimSpace(res.stderr))
			o.Log.Debug("engine invocation failed", "engine", eng.name, "detail", lastDetail)
			continue
		}
		data, err := os.ReadFile(produced)
		if err != nil {
			lastDetail = fmt.Sprintf("%s exited cleanly but produced no %s output", eng.name, CanonicalExt)
			o.Log.Debug("engine invocation failed", "engine", eng.name, "detail", lastDetail)
			continue
		}
		return data, nil
	}
	return nil, &Error{Kind: KindConversionError, Message: lastDetail}
}

type engineRunResult struct {
	exitCode int
	stderr   string
	timedOut bool
	errorMsg string
}

// limitedBuffer caps captured engine output without blocking the writer.
type limitedBuffer struct {
	max       int
	buf       bytes.Buffer
	truncated bool
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if b.max <= 0 {
		return n, nil
	}
	remain := b.max - b.buf.Len()
	if remain > 0 {
		if remain > len(p) {
			remain = len(p)
		}
		_, _ = b.buf.Write(p[:remain])
	}
	if len(p) > remain {
		b.truncated = true
	}
	return n, nil
}

// runEngine spawns one engine process in its own process group, waits up to
// Timeout, and escalates SIGTERM then SIGKILL so a hung engine cannot
// outlive its invocation.
func (o *Office) runEngine(ctx context.Context, program string, args []string) engineRunResult {
	cmd := exec.Command(program, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	errBuf := &limitedBuffer{max: stderrCaptureMaxBytes}
	cmd.Stderr = errBuf

	if err := cmd.Start(); err != nil {
		var ee *exec.Error
		if errors.As(err, &ee) {
			return engineRunResult{exitCode: -1, errorMsg: fmt.Sprintf("program %s not found", program)}
		}
		return engineRunResult{exitCode: -1, errorMsg: fmt.Sprintf("program %s start failed: %v", program, err)}
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	timeout := o.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	grace := o.TermGrace
	if grace <= 0 {
		grace = 500 * time.Millisecond
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var runErr error
	timedOut := false
	select {
	case runErr = <-done:
	case <-ctx.Done():
		timedOut = true
		o.terminate(cmd, grace, done)
	case <-timer.C:
		timedOut = true
		o.terminate(cmd, grace, done)
	}

	res := engineRunResult{stderr: errBuf.buf.String(), timedOut: timedOut}
	if timedOut {
		res.exitCode = -2
		return res
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			res.exitCode = exitErr.ExitCode()
			return res
		}
		res.exitCode = -1
		res.errorMsg = fmt.Sprintf("program %s execution failed: %v", program, runErr)
		return res
	}
	return res
}

func (o *Office) terminate(cmd *exec.Cmd, grace time.Duration, done <-chan error) {
	signalProcess(cmd, syscall.SIGTERM)
	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		signalProcess(cmd, syscall.SIGKILL)
		<-done
	}
}

func signalProcess(cmd *exec.Cmd, sig syscall.Signal) {
	if cmd == nil || cmd.Process == nil {
		return
	}
	pid := cmd.Process.Pid
	if pid > 0 {
		if err := syscall.Kill(-pid, sig); err == nil {
			return
		}
	}
	_ = cmd.Process.Signal(sig)
}
