package domain

import (
	"fmt"
	"strings"
	"time"
)

const OutputTruncatedMarker = "…[output truncated]"

type CommandResult struct {
	ExitCode  int
	Stdout    string
	Stderr    string
	TimedOut  bool
	Truncated bool
	Timeout   time.Duration
	// Error describes a spawn failure; ExitCode is -1 when set.
	Error string
}

// Summary renders the result as text for the model to read.
func (r CommandResult) Summary() string {
	if r.TimedOut {
		return fmt.Sprintf("Command timed out after %s.", r.Timeout)
	}
	if r.Error != "" {
		return fmt.Sprintf("Error executing command: %s", r.Error)
	}

	stdout := strings.TrimSpace(r.Stdout)
	stderr := strings.TrimSpace(r.Stderr)

	var b strings.Builder
	if r.ExitCode == 0 {
		if stdout == "" {
			b.WriteString("(Command executed successfully with no output)")
		} else {
			b.WriteString(stdout)
		}
		if stderr != "" {
			fmt.Fprintf(&b, "\n[Stderr: %s]", stderr)
		}
		return b.String()
	}

	fmt.Fprintf(&b, "(Command failed with exit code %d)", r.ExitCode)
	switch {
	case stderr != "":
		fmt.Fprintf(&b, "\nError Output:\n%s", stderr)
	case stdout != "":
		fmt.Fprintf(&b, "\nOutput (might contain error):\n%s", stdout)
	}
	return b.String()
}
