package utils

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	confirmPrefix = "confirm:"
	cancelPrefix  = "cancel:"

	// ColorPrompt is the embed color of confirmation prompts and their outcome.
	ColorPrompt = 0xff9966
)

var (
	ErrConfirmationExpired  = errors.New("confirmation expired")
	ErrNotConfirmationOwner = errors.New("only the command executor can use these buttons")
)

// Confirmation is a prompt waiting for its owner to press confirm or cancel.
// Exactly one of OnConfirm, OnCancel or OnExpire runs.
type Confirmation struct {
	OwnerID   string
	Timeout   time.Duration
	OnConfirm func(s *discordgo.Session, i *discordgo.InteractionCreate)
	OnCancel  func(s *discordgo.Session, i *discordgo.InteractionCreate)
	OnExpire  func()
}

type pendingConfirmation struct {
	conf  Confirmation
	timer *time.Timer
}

// Confirmations tracks timed confirmation prompts by the token embedded in
// their button custom IDs.
type Confirmations struct {
	mu      sync.Mutex
	pending map[string]*pendingConfirmation
	logger  *zap.Logger
}

func NewConfirmations(logger *zap.Logger) *Confirmations {
	return &Confirmations{pending: make(map[string]*pendingConfirmation), logger: logger}
}

// Add registers conf and starts its timeout. The returned token goes into
// the buttons built by ConfirmButtons.
func (c *Confirmations) Add(conf Confirmation) string {
	token := uuid.NewString()
	p := &pendingConfirmation{conf: conf}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[token] = p
	p.timer = time.AfterFunc(conf.Timeout, func() {
		if c.take(token) == nil {
			return
		}
		if conf.OnExpire != nil {
			conf.OnExpire()
		}
	})
	return token
}

func (c *Confirmations) take(token string) *pendingConfirmation {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pending[token]
	if !ok {
		return nil
	}
	delete(c.pending, token)
	return p
}

// Resolve claims the prompt for userID. A prompt pressed by someone else stays pending.
func (c *Confirmations) Resolve(token, userID string) (Confirmation, error) {
	c.mu.Lock()
	p, ok := c.pending[token]
	if !ok {
		c.mu.Unlock()
		return Confirmation{}, ErrConfirmationExpired
	}
	if p.conf.OwnerID != userID {
		c.mu.Unlock()
		return Confirmation{}, ErrNotConfirmationOwner
	}
	delete(c.pending, token)
	c.mu.Unlock()

	p.timer.Stop()
	return p.conf, nil
}

func (c *Confirmations) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Stop expires every pending prompt so its message shows the expired state
// instead of buttons that no longer answer.
func (c *Confirmations) Stop() {
	c.mu.Lock()
	expired := make([]Confirmation, 0, len(c.pending))
	for token, p := range c.pending {
		p.timer.Stop()
		delete(c.pending, token)
		expired = append(expired, p.conf)
	}
	c.mu.Unlock()

	for _, conf := range expired {
		if conf.OnExpire != nil {
			conf.OnExpire()
		}
	}
}

// IsConfirmationID reports whether a component custom ID belongs to a prompt.
func IsConfirmationID(customID string) bool {
	return strings.HasPrefix(customID, confirmPrefix) || strings.HasPrefix(customID, cancelPrefix)
}

func parseConfirmationID(customID string) (token string, confirmed bool) {
	if strings.HasPrefix(customID, confirmPrefix) {
		return strings.TrimPrefix(customID, confirmPrefix), true
	}
	return strings.TrimPrefix(customID, cancelPrefix), false
}

// Handle routes a button press to its prompt.
func (c *Confirmations) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	token, confirmed := parseConfirmationID(i.MessageComponentData().CustomID)
	user := InteractionUser(i)

	conf, err := c.Resolve(token, user.ID)
	switch {
	case errors.Is(err, ErrNotConfirmationOwner):
		SendSimpleResponse(s, i, "⚠️ Only the command executor can use these buttons.")
		return
	case errors.Is(err, ErrConfirmationExpired):
		err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseUpdateMessage,
			Data: &discordgo.InteractionResponseData{
				Embeds:     []*discordgo.MessageEmbed{ExpiredEmbed("Action Expired", "This confirmation is no longer valid.")},
				Components: []discordgo.MessageComponent{},
			},
		})
		if err != nil {
			c.logger.Warn("failed to answer expired confirmation", zap.Error(err))
		}
		return
	}

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}); err != nil {
		c.logger.Warn("failed to acknowledge confirmation", zap.Error(err))
	}

	if confirmed {
		if conf.OnConfirm != nil {
			conf.OnConfirm(s, i)
		}
		return
	}
	if conf.OnCancel != nil {
		conf.OnCancel(s, i)
	}
}

// ConfirmButtons builds the confirm/cancel row for token.
func ConfirmButtons(token, confirmLabel, confirmEmoji string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    confirmLabel,
					Style:    discordgo.DangerButton,
					CustomID: confirmPrefix + token,
					Emoji:    &discordgo.ComponentEmoji{Name: confirmEmoji},
				},
				discordgo.Button{
					Label:    "Cancel",
					Style:    discordgo.SecondaryButton,
					CustomID: cancelPrefix + token,
					Emoji:    &discordgo.ComponentEmoji{Name: "✖️"},
				},
			},
		},
	}
}

// ExpiredEmbed is shown when a prompt is cancelled or runs out of time.
func ExpiredEmbed(title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       ColorPrompt,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}
