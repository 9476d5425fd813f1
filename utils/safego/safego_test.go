package safego

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	t.Run("returns function error", func(t *testing.T) {
		errCh := make(chan error, 1)
		Run(func() error { return errors.New("boom") }, errCh)
		assert.EqualError(t, <-errCh, "boom")
	})

	t.Run("converts panic to error", func(t *testing.T) {
		errCh := make(chan error, 1)
		Run(func() error { panic("unexpected nil page") }, errCh)
		err := <-errCh
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected nil page")
	})
}

func TestRecoveryWithoutExit(t *testing.T) {
	assert.NotPanics(t, func() {
		defer Recovery(false)
		panic("recovered")
	})
}
