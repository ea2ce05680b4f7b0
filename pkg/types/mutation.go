package types

// MutationResult describes one bulk completion. The write has already
// happened by the time a result exists; Validated reports whether the
// re-parsed document matched the expected counts.
type MutationResult struct {
	Path      string    `json:"path"`
	Selection Selection `json:"selection"`
	Total     int       `json:"total"`
	Before    int       `json:"before"`
	After     int       `json:"after"`
	Flipped   []int     `json:"flipped"`
	Written   bool      `json:"written"`
	Validated bool      `json:"validated"`

	Mismatch *ValidationMismatch `json:"mismatch,omitempty"`
}

// NoOp reports whether the selection was already fully complete.
func (r *MutationResult) NoOp() bool { return len(r.Flipped) == 0 }

// ValidationMismatch is diagnostic data for a post-write re-parse that did
// not produce the expected counts. It is not a rollback trigger.
type ValidationMismatch struct {
	ExpectedTotal     int `json:"expected_total"`
	ActualTotal       int `json:"actual_total"`
	ExpectedCompleted int `json:"expected_completed"`
	ActualCompleted   int `json:"actual_completed"`
}

func (m *ValidationMismatch) Error() string {
	return ErrValidationMismatch.Error()
}

func (m *ValidationMismatch) Unwrap() error { return ErrValidationMismatch }
