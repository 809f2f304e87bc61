package tickets

import (
	"errors"
	"fmt"
	"math"
	"time"

	"community-bot/model"
)

var (
	ErrNotConfigured      = errors.New("ticket system is not configured for this server")
	ErrCooldown           = errors.New("ticket creation is on cooldown")
	ErrTicketLimitReached = errors.New("open ticket limit reached")
	ErrNotFound           = model.ErrNotFound
	ErrUnauthorized       = errors.New("not allowed to perform this action")
	ErrStoreFailure       = errors.New("ticket store failure")
	ErrInvalidPriority    = errors.New("invalid ticket priority")
	ErrInvalidState       = errors.New("ticket is not in a state that allows this action")
	ErrInvalidSettings    = errors.New("invalid ticket settings")
)

// CooldownError carries how long the requester still has to wait.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("please wait %d seconds before creating another ticket", e.RemainingSeconds())
}

func (e *CooldownError) Is(target error) bool {
	return target == ErrCooldown
}

// RemainingSeconds rounds up, so a pending cooldown never reports zero.
func (e *CooldownError) RemainingSeconds() int {
	return int(math.Ceil(float64(e.Remaining) / float64(time.Second)))
}

// TicketLimitError carries the configured open ticket maximum.
type TicketLimitError struct {
	Max int
}

func (e *TicketLimitError) Error() string {
	return fmt.Sprintf("you can only have %d open tickets at a time", e.Max)
}

func (e *TicketLimitError) Is(target error) bool {
	return target == ErrTicketLimitReached
}

type storeError struct {
	op  string
	err error
}

func (e *storeError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.op, e.err)
}

func (e *storeError) Unwrap() []error {
	return []error{ErrStoreFailure, e.err}
}

// storeFailure wraps a persistence error. Not-found passes through untouched.
func storeFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, model.ErrNotFound) {
		return err
	}
	return &storeError{op: op, err: err}
}

// IsUserError reports whether err is a "you cannot do this right now" outcome
// rather than an internal failure.
func IsUserError(err error) bool {
	return errors.Is(err, ErrCooldown) ||
		errors.Is(err, ErrTicketLimitReached) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrNotConfigured) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidPriority) ||
		errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrInvalidSettings)
}

// UserMessage renders err for the member that triggered the action.
func UserMessage(err error) string {
	var cooldown *CooldownError
	var limit *TicketLimitError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &cooldown):
		return fmt.Sprintf("Please wait %d seconds before creating another ticket.", cooldown.RemainingSeconds())
	case errors.As(err, &limit):
		return fmt.Sprintf("You can only have %d open tickets at a time.", limit.Max)
	case errors.Is(err, ErrNotConfigured):
		return "The ticket system has not been set up yet! Please use `/ticket setup` first."
	case errors.Is(err, ErrUnauthorized):
		return "You do not have permission to do that."
	case errors.Is(err, ErrNotFound):
		return "This command can only be used in ticket channels."
	case errors.Is(err, ErrInvalidPriority):
		return "That is not a valid priority."
	case errors.Is(err, ErrInvalidState):
		return "That ticket cannot be changed in its current state."
	case errors.Is(err, ErrInvalidSettings):
		return "Those settings are out of range."
	default:
		return "Something went wrong. Please try again later."
	}
}
