package run

// Exit codes for the run command. A batch where individual files failed
// still exits zero; only an aborted run (bad config, unreadable input
// directory) is a process-level failure.
const (
	exitCodeSuccess = 0
	exitCodeFatal   = 1
)

// runExitError carries the process exit code alongside the message printed
// to stderr.
type runExitError struct {
	code int
	msg  string
}

func (e *runExitError) Error() string { return e.msg }

func (e *runExitError) ExitCode() int { return e.code }

func fatalRunError(err error) error {
	return &runExitError{code: exitCodeFatal, msg: err.Error()}
}
