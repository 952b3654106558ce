package execshell

// CommandEventObserver is notified as the executor walks a git invocation
// through its lifecycle. The console surface renders these events as
// human-readable lines; structured logging happens regardless of the
// observer.
type CommandEventObserver interface {
	// CommandStarted fires immediately before the runner is invoked.
	CommandStarted(command ShellCommand)
	// CommandCompleted fires once the runner resolved, whatever the exit code.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed fires when the command could not run at all.
	CommandExecutionFailed(command ShellCommand, failure error)
}

// noopCommandEventObserver keeps the executor's observer non-nil when no
// surface has registered an interest in command events.
type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}
