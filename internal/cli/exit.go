package cli

import (
	"strings"

	"github.com/geocombine/geocombine/mderr"
)

// Process exit codes
const (
	ExitSuccess         = 0  // All inputs converted
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error or invalid argument
	ExitPanic           = 3  // Internal panic
	ExitConfigError     = 10 // Invalid configuration or rule set
	ExitLoadError       = 11 // Input could not be read or parsed
	ExitShapeError      = 12 // Input is the wrong kind of document
	ExitTransformFailed = 13 // A rule set could not convert the input
)

// ExitCode maps err to the process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	switch {
	case mderr.Is(err, mderr.KindConfig):
		return ExitConfigError
	case mderr.Is(err, mderr.KindLoad):
		return ExitLoadError
	case mderr.Is(err, mderr.KindShape):
		return ExitShapeError
	case mderr.Is(err, mderr.KindTransform):
		return ExitTransformFailed
	case mderr.Is(err, mderr.KindArgument):
		return ExitUsageError
	}

	// cobra argument and flag errors carry no type
	msg := err.Error()
	if strings.Contains(msg, "unknown flag") ||
		strings.Contains(msg, "unknown command") ||
		strings.Contains(msg, "required flag") ||
		strings.Contains(msg, "arg(s)") {
		return ExitUsageError
	}
	return ExitGeneralError
}
