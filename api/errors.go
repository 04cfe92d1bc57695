package api

import (
	"github.com/warpfork/go-errcat"
)

type ErrorCategory string
type ExitCode int

const (
	ExitSuccess                                     = ExitCode(0)
	ExitUsage, ErrUsage                             = ExitCode(1), ErrorCategory("muskcult-usage-error")         // Some piece of user input was invalid and unrunnable.
	ExitPanic                                       = ExitCode(2)                                                // Placeholder.  We don't use this.  '2' happens when golang exits due to panic.
	ExitRevisionNotFound, ErrRevisionNotFound       = ExitCode(3), ErrorCategory("muskcult-revision-not-found")  // The revision did not resolve in the repository.
	ExitPathNotFound, ErrPathNotFound               = ExitCode(4), ErrorCategory("muskcult-path-not-found")      // The revision resolved, but has no regular file at the path.
	ExitBackendUnavailable, ErrBackendUnavailable   = ExitCode(5), ErrorCategory("muskcult-backend-unavailable") // The repository could not be opened or read.
	ExitWriteFailed, ErrWriteFailed                 = ExitCode(6), ErrorCategory("muskcult-write-failed")        // Materializing content to the filesystem failed.
	ExitDeleteFailed, ErrDeleteFailed               = ExitCode(7), ErrorCategory("muskcult-delete-failed")       // Releasing an artifact (file or unit) failed.
	ExitLoadFailed, ErrLoadFailed                   = ExitCode(8), ErrorCategory("muskcult-load-failed")         // Source failed to compile or raised during its top-level execution.
	ExitInvalidState, ErrInvalidState               = ExitCode(9), ErrorCategory("muskcult-invalid-state")       // A session was used while not open.
	ExitCallFailed, ErrCallFailed                   = ExitCode(10), ErrorCategory("muskcult-call-failed")        // Invoking a function of a loaded unit failed.
	ExitTODO                                        = ExitCode(254)                                              // This exit code should be replaced with something more specific
)

var exitCodes = map[ErrorCategory]ExitCode{
	ErrUsage:              ExitUsage,
	ErrRevisionNotFound:   ExitRevisionNotFound,
	ErrPathNotFound:       ExitPathNotFound,
	ErrBackendUnavailable: ExitBackendUnavailable,
	ErrWriteFailed:        ExitWriteFailed,
	ErrDeleteFailed:       ExitDeleteFailed,
	ErrLoadFailed:         ExitLoadFailed,
	ErrInvalidState:       ExitInvalidState,
	ErrCallFailed:         ExitCallFailed,
}

/*
	Maps an error to the exit code a command should return for it.

	Errors without a known category end up as ExitTODO.
*/
func ExitCodeFor(err error) ExitCode {
	if err == nil {
		return ExitSuccess
	}
	category, ok := errcat.Category(err).(ErrorCategory)
	if !ok {
		return ExitTODO
	}
	if code, ok := exitCodes[category]; ok {
		return code
	}
	return ExitTODO
}

/*
	Serializable form of an errcat error.
	Used in Event_Result; errors themselves are not roundtrippable.
*/
type Error struct {
	Category ErrorCategory     `refmt:"category"`
	Message  string            `refmt:"message"`
	Details  map[string]string `refmt:"details,omitempty"`
}

func ToError(err error) *Error {
	if err == nil {
		return nil
	}
	e := &Error{Message: err.Error()}
	if category, ok := errcat.Category(err).(ErrorCategory); ok {
		e.Category = category
	}
	if errc, ok := err.(errcat.Error); ok {
		e.Details = errc.Details()
	}
	return e
}
