package validation

import "fmt"

// Stable rejection codes. Callers branch on these, not on message text.
const (
	CodeAggregateMissing     = "AGGREGATE_MISSING"
	CodeIDMismatch           = "ID_MISMATCH"
	CodeAlreadyCreated       = "ALREADY_CREATED"
	CodeAlreadyExists        = "ALREADY_EXISTS"
	CodeNameRequired         = "NAME_REQUIRED"
	CodeEditorRequired       = "EDITOR_REQUIRED"
	CodeInvalidDate          = "INVALID_DATE"
	CodeUnknownFilling       = "UNKNOWN_FILLING"
	CodeBreadNotAllowed      = "BREAD_NOT_ALLOWED"
	CodeBreadAlreadyOnOrder  = "BREAD_ALREADY_ON_ORDER"
	CodeNoBreadOnOrder       = "NO_BREAD_ON_ORDER"
	CodeDateWithdrawn        = "DATE_WITHDRAWN"
	CodeDateNotWithdrawn     = "DATE_NOT_WITHDRAWN"
	CodeStaleDate            = "STALE_DATE"
	CodeOrderClosed          = "ORDER_CLOSED"
	CodeConcurrencyConflict  = "CONCURRENCY_CONFLICT"
	CodeUnknownCommand       = "UNKNOWN_COMMAND"
)

// Reason is one business-rule failure: a stable code plus a human-readable
// message. Reasons are data, never errors.
type Reason struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (r Reason) String() string {
	return fmt.Sprintf("%s: %s", r.Code, r.Message)
}

// Result collects the reasons a command was rejected. The zero value is a
// valid (empty) result.
type Result struct {
	reasons []Reason
}

// Add appends a reason.
func (r *Result) Add(code, message string) {
	r.reasons = append(r.reasons, Reason{Code: code, Message: message})
}

// Addf appends a reason with a formatted message.
func (r *Result) Addf(code, format string, args ...any) {
	r.Add(code, fmt.Sprintf(format, args...))
}

// Valid reports whether no reasons were collected.
func (r Result) Valid() bool { return len(r.reasons) == 0 }

// Reasons returns the collected reasons in the order they were added.
func (r Result) Reasons() []Reason { return r.reasons }
