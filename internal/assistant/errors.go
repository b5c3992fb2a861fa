// ABOUTME: Typed errors for the assistant collaborators.
// ABOUTME: Callers branch on validation versus remote failure with errors.As.
package assistant

import "fmt"

// ValidationError rejects a request before any remote call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// CollaboratorError wraps a failure talking to, or parsing output from, a
// remote model provider.
type CollaboratorError struct {
	Provider string
	Op       string
	Err      error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

// Unwrap returns the provider error.
func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

func collaborator(provider, op string, err error) error {
	if err == nil {
		return nil
	}
	return &CollaboratorError{Provider: provider, Op: op, Err: err}
}
