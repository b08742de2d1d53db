package concierge_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/concierge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	t.Parallel()

	t.Run("message includes kind and field", func(t *testing.T) {
		t.Parallel()
		err := concierge.InvalidArgument("capacity", "must be >= 0")
		assert.Equal(t, "InvalidArgument: capacity: must be >= 0", err.Error())
	})

	t.Run("message without field", func(t *testing.T) {
		t.Parallel()
		err := concierge.Errorf(concierge.KindUnknownTool, "no tool named %q", "x")
		assert.Equal(t, `UnknownTool: no tool named "x"`, err.Error())
	})

	t.Run("KindOf sees through wrapping", func(t *testing.T) {
		t.Parallel()
		err := fmt.Errorf("registry: %w", concierge.Errorf(concierge.KindEndpointUnavailable, "down"))
		assert.Equal(t, concierge.KindEndpointUnavailable, concierge.KindOf(err))
		assert.Equal(t, concierge.ErrorKind(""), concierge.KindOf(errors.New("plain")))
	})

	t.Run("Classify keeps classified errors", func(t *testing.T) {
		t.Parallel()
		orig := concierge.Errorf(concierge.KindToolExecution, "boom")
		assert.Same(t, orig, concierge.Classify(fmt.Errorf("wrap: %w", orig), concierge.KindEndpointUnavailable))
	})

	t.Run("Classify wraps plain errors", func(t *testing.T) {
		t.Parallel()
		cause := errors.New("connection refused")
		e := concierge.Classify(cause, concierge.KindEndpointUnavailable)
		require.NotNil(t, e)
		assert.Equal(t, concierge.KindEndpointUnavailable, e.Kind)
		assert.ErrorIs(t, e, cause)
		assert.Nil(t, concierge.Classify(nil, concierge.KindEndpointUnavailable))
	})
}

func TestErrorKind_ToolLevel(t *testing.T) {
	t.Parallel()
	assert.True(t, concierge.KindUnknownTool.ToolLevel())
	assert.True(t, concierge.KindInvalidArgument.ToolLevel())
	assert.True(t, concierge.KindToolExecution.ToolLevel())
	assert.True(t, concierge.KindEndpointUnavailable.ToolLevel())
	assert.False(t, concierge.KindTurnLimitExceeded.ToolLevel())
	assert.False(t, concierge.KindReasoningEngineFailure.ToolLevel())
}
