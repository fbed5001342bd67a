package exchange

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToBool(t *testing.T) {
	t.Run("booleans pass through", func(t *testing.T) {
		b, err := ToBool(true)
		assert.NoError(t, err)
		assert.True(t, b)

		b, err = ToBool(false)
		assert.NoError(t, err)
		assert.False(t, b)
	})

	t.Run("strings are parsed", func(t *testing.T) {
		b, err := ToBool("true")
		assert.NoError(t, err)
		assert.True(t, b)

		b, err = ToBool("0")
		assert.NoError(t, err)
		assert.False(t, b)

		_, err = ToBool("not-a-bool")
		assert.Error(t, err)
	})

	t.Run("numbers are true when non-zero", func(t *testing.T) {
		b, err := ToBool(1)
		assert.NoError(t, err)
		assert.True(t, b)

		b, err = ToBool(int64(0))
		assert.NoError(t, err)
		assert.False(t, b)

		b, err = ToBool(0.5)
		assert.NoError(t, err)
		assert.True(t, b)
	})

	t.Run("nil is an error", func(t *testing.T) {
		_, err := ToBool(nil)
		assert.Error(t, err)
	})

	t.Run("unconvertible types are an error", func(t *testing.T) {
		_, err := ToBool(struct{}{})
		assert.Error(t, err)
	})
}
