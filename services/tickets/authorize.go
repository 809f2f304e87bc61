package tickets

import (
	"slices"

	"community-bot/model"
)

// Actor is the member attempting an action on a ticket.
type Actor struct {
	UserID        string
	RoleIDs       []string
	Administrator bool
}

// IsSupport reports whether the actor holds the guild support role or one of
// the extra support roles of the ticket category.
func (a Actor) IsSupport(cfg *model.TicketConfig, category string) bool {
	if a.Administrator {
		return true
	}
	if cfg == nil {
		return false
	}
	if cfg.SupportRoleID != "" && slices.Contains(a.RoleIDs, cfg.SupportRoleID) {
		return true
	}
	if cat, ok := cfg.Category(category); ok {
		for _, role := range cat.SupportRoles {
			if slices.Contains(a.RoleIDs, role) {
				return true
			}
		}
	}
	return false
}

// Authorize is the capability check callers run before claim, close,
// priority changes and reopen. Service methods never check roles themselves.
// Support staff may do everything; the ticket owner may only close.
func Authorize(actor Actor, action model.LogAction, t *model.Ticket, cfg *model.TicketConfig) error {
	category := ""
	if t != nil {
		category = t.Category
	}
	if actor.IsSupport(cfg, category) {
		return nil
	}
	if action == model.ActionClose && t != nil && t.UserID == actor.UserID {
		return nil
	}
	return ErrUnauthorized
}
