package errors

// Code represents an error code
type Code string

// Error codes
const (
	CodeOK                 Code = "OK"
	CodeCanceled           Code = "CANCELED"
	CodeInvalidArgument    Code = "INVALID_ARGUMENT"
	CodeDeadlineExceeded   Code = "DEADLINE_EXCEEDED"
	CodeNotFound           Code = "NOT_FOUND"
	CodeFailedPrecondition Code = "FAILED_PRECONDITION"
	CodeUnimplemented      Code = "UNIMPLEMENTED"
	CodeInternal           Code = "INTERNAL"
	CodeUnavailable        Code = "UNAVAILABLE"

	// CodeInvalidModifier marks a situational modifier that failed the
	// modifier grammar. Callers roll without the modifier.
	CodeInvalidModifier Code = "INVALID_MODIFIER"

	// CodeRollEngine marks a dice engine result that cannot be resolved.
	// The current resolution is aborted and never retried.
	CodeRollEngine Code = "ROLL_ENGINE"
)

// String returns the string representation of the code
func (c Code) String() string {
	return string(c)
}
