package errors

// InvalidModifier reports a situational modifier the grammar rejected.
// The raw text is attached as "modifier" metadata.
func InvalidModifier(raw, reason string) *Error {
	return New(CodeInvalidModifier, "invalid modifier: "+reason).WithMeta("modifier", raw)
}

// RollEngine reports a dice engine result the resolver cannot use.
func RollEngine(message string) *Error {
	return New(CodeRollEngine, message)
}

// RollEnginef reports a dice engine result the resolver cannot use.
func RollEnginef(format string, args ...interface{}) *Error {
	return Newf(CodeRollEngine, format, args...)
}

// IsInvalidModifier checks if an error is an invalid modifier error
func IsInvalidModifier(err error) bool {
	return GetCode(err) == CodeInvalidModifier
}

// IsRollEngine checks if an error is a roll engine error
func IsRollEngine(err error) bool {
	return GetCode(err) == CodeRollEngine
}
