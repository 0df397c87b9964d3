package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Messages(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"duplicate", errDuplicate(7), "duplicate transaction id 7"},
		{"locked", errLocked(3, 7), "account 3 is locked"},
		{"invalid deposit", errInvalid(KindInvalidDeposit, 7), "invalid_deposit for tx 7"},
		{"invalid withdrawal", errInvalid(KindInvalidWithdrawal, 7), "invalid_withdrawal for tx 7"},
		{"invalid dispute", errInvalid(KindInvalidDispute, 7), "invalid_dispute for tx 7"},
		{"invalid resolve", errInvalid(KindInvalidResolve, 7), "invalid_resolve for tx 7"},
		{"invalid chargeback", errInvalid(KindInvalidChargeback, 7), "invalid_chargeback for tx 7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestKindOf(t *testing.T) {
	kind, ok := KindOf(errLocked(1, 2))
	assert.True(t, ok)
	assert.Equal(t, KindAccountLocked, kind)

	// Wrapped rejections still match.
	wrapped := fmt.Errorf("apply: %w", errDuplicate(5))
	kind, ok = KindOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, KindDuplicateTransaction, kind)

	_, ok = KindOf(errors.New("unrelated"))
	assert.False(t, ok)
	_, ok = KindOf(nil)
	assert.False(t, ok)
}
