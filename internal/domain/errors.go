package domain

// ValidationError user-correctable rejection of a create or update request.
// Reason is shown to the user as is.
type ValidationError struct {
	Check  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}
