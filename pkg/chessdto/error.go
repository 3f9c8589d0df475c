package chessdto

// DomainError carries a stable code for presenters alongside a message.
type DomainError struct {
	Code      string
	Message   string
	Retryable bool
	Err       error
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "chess service error"
}

func (e DomainError) Unwrap() error { return e.Err }
