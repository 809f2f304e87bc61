package warnings

import (
	"errors"

	"community-bot/model"
)

var (
	ErrInvalidLevel  = errors.New("invalid warning level")
	ErrMissingReason = errors.New("a warning needs a reason")
	ErrNotFound      = model.ErrNotFound
)
