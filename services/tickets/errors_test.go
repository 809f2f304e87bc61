package tickets

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"community-bot/model"
)

func TestCooldownErrorRoundsUp(t *testing.T) {
	err := &CooldownError{Remaining: 1500 * time.Millisecond}

	assert.Equal(t, 2, err.RemainingSeconds())
	assert.ErrorIs(t, err, ErrCooldown)
	assert.Equal(t, "Please wait 2 seconds before creating another ticket.", UserMessage(err))
}

func TestStoreFailureKeepsNotFound(t *testing.T) {
	assert.Nil(t, storeFailure("op", nil))
	assert.Equal(t, model.ErrNotFound, storeFailure("op", model.ErrNotFound))

	err := storeFailure("save", errBoom)
	assert.ErrorIs(t, err, ErrStoreFailure)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, "failed to save: boom", err.Error())
}

func TestIsUserError(t *testing.T) {
	tests := []struct {
		err  error
		user bool
	}{
		{&CooldownError{Remaining: time.Second}, true},
		{&TicketLimitError{Max: 3}, true},
		{ErrUnauthorized, true},
		{ErrNotConfigured, true},
		{fmt.Errorf("wrapped: %w", ErrNotFound), true},
		{storeFailure("insert", errBoom), false},
		{errBoom, false},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.user, IsUserError(tt.err))
		})
	}
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "You can only have 3 open tickets at a time.", UserMessage(&TicketLimitError{Max: 3}))
	assert.Equal(t, "Something went wrong. Please try again later.", UserMessage(storeFailure("x", errBoom)))
	assert.Empty(t, UserMessage(nil))
}
