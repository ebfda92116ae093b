// SPDX-License-Identifier: Apache-2.0

package fault

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestViolationPanicsWithPrecondition(t *testing.T) {
	defer func() {
		err, ok := AsViolation(recover())
		require.True(t, ok)
		require.ErrorIs(t, err, ErrPrecondition)
		require.Contains(t, err.Error(), "index 3 out of range [0, 2)")
	}()

	Violation("index %d out of range [0, %d)", 3, 2)
	t.Fatal("Violation returned")
}

func TestAsViolationIgnoresOtherPanics(t *testing.T) {
	_, ok := AsViolation("boom")
	require.False(t, ok)

	_, ok = AsViolation(errors.New("boom"))
	require.False(t, ok)

	_, ok = AsViolation(nil)
	require.False(t, ok)
}

func TestKindsSurviveWrapping(t *testing.T) {
	err := errors.Wrapf(ErrOutOfMemory, "requested %d bytes", 64)
	require.ErrorIs(t, err, ErrOutOfMemory)
	require.NotErrorIs(t, err, ErrIllegalArgument)
	require.Equal(t, "requested 64 bytes: allocator out of memory", err.Error())
}
