package model

import "time"

type LogAction string

const (
	ActionCreate         LogAction = "CREATE"
	ActionClose          LogAction = "CLOSE"
	ActionClaim          LogAction = "CLAIM"
	ActionUnclaim        LogAction = "UNCLAIM"
	ActionReopen         LogAction = "REOPEN"
	ActionDelete         LogAction = "DELETE"
	ActionCallUser       LogAction = "CALL_USER"
	ActionAddUser        LogAction = "ADD_USER"
	ActionRemoveUser     LogAction = "REMOVE_USER"
	ActionUpdatePriority LogAction = "UPDATE_PRIORITY"
)

var logActions = []LogAction{
	ActionCreate, ActionClose, ActionClaim, ActionUnclaim, ActionReopen,
	ActionDelete, ActionCallUser, ActionAddUser, ActionRemoveUser, ActionUpdatePriority,
}

func (a LogAction) Valid() bool {
	for _, v := range logActions {
		if v == a {
			return true
		}
	}
	return false
}

type TicketLogMetadata struct {
	ChannelID   string   `json:"channelId,omitempty" bson:"channelId,omitempty"`
	Category    string   `json:"category,omitempty" bson:"category,omitempty"`
	AssignedTo  string   `json:"assignedTo,omitempty" bson:"assignedTo,omitempty"`
	Tickets     []string `json:"tickets,omitempty" bson:"tickets,omitempty"`
	OldPriority string   `json:"oldPriority,omitempty" bson:"oldPriority,omitempty"`
	NewPriority string   `json:"newPriority,omitempty" bson:"newPriority,omitempty"`
	Subject     string   `json:"subject,omitempty" bson:"subject,omitempty"`
}

// TicketLog is an immutable audit record of a ticket lifecycle action.
type TicketLog struct {
	ID          string            `json:"id" bson:"_id"`
	GuildID     string            `json:"guildId" bson:"guildId"`
	TicketID    string            `json:"ticketId,omitempty" bson:"ticketId,omitempty"`
	Action      LogAction         `json:"action" bson:"action"`
	UserID      string            `json:"userId,omitempty" bson:"userId,omitempty"`
	TargetID    string            `json:"targetId,omitempty" bson:"targetId,omitempty"`
	ModeratorID string            `json:"moderatorId,omitempty" bson:"moderatorId,omitempty"`
	OldData     map[string]any    `json:"oldData,omitempty" bson:"oldData,omitempty"`
	NewData     map[string]any    `json:"newData,omitempty" bson:"newData,omitempty"`
	Reason      string            `json:"reason,omitempty" bson:"reason,omitempty"`
	Metadata    TicketLogMetadata `json:"metadata" bson:"metadata"`
	CreatedAt   time.Time         `json:"createdAt" bson:"createdAt"`
}

// TicketLogQuery filters audit entries; zero fields are ignored.
type TicketLogQuery struct {
	TicketID string
	UserID   string
	Action   LogAction
	Limit    int
}
