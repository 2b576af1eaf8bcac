package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectNotFoundError(t *testing.T) {
	t.Run("NewObjectNotFoundError", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("order", "ord-1")

		assert.Equal(t, "order", err.ParamName)
		assert.Equal(t, "ord-1", err.ID)
		require.NoError(t, err.Cause)
		assert.Equal(t, "object not found: ord-1", err.Error())
		assert.Equal(t, errs.ErrObjectNotFound, err.Unwrap())
	})

	t.Run("NewObjectNotFoundErrorWithCause", func(t *testing.T) {
		cause := errors.New("database connection failed")
		err := errs.NewObjectNotFoundErrorWithCause("order", "ord-1", cause)

		assert.Equal(t, cause, err.Cause)
		assert.Equal(t,
			"object not found: param is: order, ID is: ord-1 (cause: database connection failed)",
			err.Error())
	})
}

func TestValueIsInvalidError(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := errs.NewValueIsInvalidError("payment method")

		assert.Equal(t, "value is invalid: payment method", err.Error())
		assert.Equal(t, errs.ErrValueIsInvalid, err.Unwrap())
	})

	t.Run("with cause", func(t *testing.T) {
		err := errs.NewValueIsInvalidErrorWithCause("status is invalid", errors.New("shipped is not a valid status"))

		assert.Equal(t, "value is invalid: status is invalid (cause: shipped is not a valid status)", err.Error())
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestValueIsOutOfRangeError(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("otp length", 12, 4, 10)

		assert.Equal(t, "value is invalid: %!s(int=12) is otp length, min value is %!s(int=4), max value is %!s(int=10)", err.Error())
		assert.Equal(t, errs.ErrValueIsOutOfRange, err.Unwrap())
	})

	t.Run("with cause", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeErrorWithCause("quantity", "0", "1", "max", errors.New("too small"))

		assert.Equal(t, "value is invalid: 0 is quantity, min value is 1, max value is max (cause: too small)", err.Error())
	})

	t.Run("newlines are flattened", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("text", "hello\nworld", 0, 10)

		assert.Contains(t, err.Error(), "hello world")
		assert.NotContains(t, err.Error(), "\n")
	})
}

func TestValueIsRequiredError(t *testing.T) {
	err := errs.NewValueIsRequiredError("delivery person id")
	assert.Equal(t, "value is required: delivery person id", err.Error())

	withCause := errs.NewValueIsRequiredErrorWithCause("items", errors.New("order has no items"))
	assert.Equal(t, "value is required: items (cause: order has no items)", withCause.Error())
	require.ErrorIs(t, withCause, errs.ErrValueIsRequired)
}

func TestVersionIsInvalidError(t *testing.T) {
	err := errs.NewVersionIsInvalidError("order")
	assert.Equal(t, "version is invalid: order", err.Error())

	withCause := errs.NewVersionIsInvalidErrorWithCause("order", errors.New("expected version 3"))
	assert.Equal(t, "version is invalid: order (cause: expected version 3)", withCause.Error())
	require.ErrorIs(t, withCause, errs.ErrVersionIsInvalid)
}

func TestErrorsSurviveWrapping(t *testing.T) {
	wrapped := fmt.Errorf("load order: %w", errs.NewObjectNotFoundError("order", "x"))

	require.ErrorIs(t, wrapped, errs.ErrObjectNotFound)

	var target *errs.ObjectNotFoundError
	require.ErrorAs(t, wrapped, &target)
	assert.Equal(t, "x", target.ID)
}
