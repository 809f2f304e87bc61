package tickets

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"community-bot/model"
)

func TestAuthorize(t *testing.T) {
	cfg := &model.TicketConfig{
		SupportRoleID: "support",
		Categories:    []model.TicketCategory{{Name: "BILLING", SupportRoles: []string{"billing"}}},
	}
	ticket := &model.Ticket{UserID: "owner", Category: "BILLING"}

	tests := []struct {
		name   string
		actor  Actor
		action model.LogAction
		want   error
	}{
		{"support may claim", Actor{UserID: "s", RoleIDs: []string{"support"}}, model.ActionClaim, nil},
		{"category role may claim", Actor{UserID: "b", RoleIDs: []string{"billing"}}, model.ActionClaim, nil},
		{"administrator may reopen", Actor{UserID: "a", Administrator: true}, model.ActionReopen, nil},
		{"owner may close", Actor{UserID: "owner"}, model.ActionClose, nil},
		{"owner may not claim", Actor{UserID: "owner"}, model.ActionClaim, ErrUnauthorized},
		{"owner may not change priority", Actor{UserID: "owner"}, model.ActionUpdatePriority, ErrUnauthorized},
		{"stranger may not close", Actor{UserID: "x", RoleIDs: []string{"other"}}, model.ActionClose, ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.actor, tt.action, ticket, cfg)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestActorIsSupport_NoConfig(t *testing.T) {
	assert.False(t, Actor{UserID: "u", RoleIDs: []string{"support"}}.IsSupport(nil, ""))
	assert.True(t, Actor{UserID: "u", Administrator: true}.IsSupport(nil, ""))
}
