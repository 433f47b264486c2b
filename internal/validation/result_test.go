package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_ZeroValueIsValid(t *testing.T) {
	var r Result

	assert.True(t, r.Valid())
	assert.Empty(t, r.Reasons())
}

func TestResult_CollectsReasonsInOrder(t *testing.T) {
	var r Result
	r.Add(CodeNameRequired, "a name is required")
	r.Addf(CodeUnknownFilling, "filling %s is not on the menu", "f-1")

	assert.False(t, r.Valid())
	reasons := r.Reasons()
	require.Len(t, reasons, 2)
	assert.Equal(t, CodeNameRequired, reasons[0].Code)
	assert.Equal(t, CodeUnknownFilling, reasons[1].Code)
	assert.Equal(t, "filling f-1 is not on the menu", reasons[1].Message)
}

func TestReason_String(t *testing.T) {
	r := Reason{Code: CodeStaleDate, Message: "date has passed"}

	assert.Equal(t, "STALE_DATE: date has passed", r.String())
}
