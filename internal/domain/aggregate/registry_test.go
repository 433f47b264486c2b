package aggregate

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================
// Decode Tests
// ============================================

func TestRegistry_Decode_RoundTrip(t *testing.T) {
	r := NewRegistry()
	RegisterEvent[counterIncremented](r)

	original := counterIncremented{CounterID: uuid.New(), Amount: 42}
	data, err := json.Marshal(original)
	require.NoError(t, err)

	decoded, err := r.Decode(original.EventType(), data)

	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestRegistry_Decode_UnknownEventType(t *testing.T) {
	r := NewRegistry()

	_, err := r.Decode("SomethingNobodyRegistered", []byte(`{}`))

	var unknown *UnknownEventTypeError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "SomethingNobodyRegistered", unknown.EventType)
}

func TestRegistry_Decode_MalformedPayload(t *testing.T) {
	r := NewRegistry()
	RegisterEvent[counterIncremented](r)

	_, err := r.Decode("CounterIncremented", []byte(`{not json`))

	assert.Error(t, err)
}

// ============================================
// Registration Tests
// ============================================

func TestRegistry_RegisterEvent_DuplicatePanics(t *testing.T) {
	r := NewRegistry()
	RegisterEvent[counterCreated](r)

	assert.Panics(t, func() {
		RegisterEvent[counterCreated](r)
	})
}
