package ticket

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"community-bot/model"
	"community-bot/services/tickets"
)

const memberAccess = discordgo.PermissionViewChannel |
	discordgo.PermissionSendMessages |
	discordgo.PermissionReadMessageHistory |
	discordgo.PermissionAttachFiles

// Gateway drives Discord on behalf of the ticket service: it creates the
// private ticket channels, posts welcome messages, mirrors audit entries and
// uploads transcripts.
type Gateway struct {
	session *discordgo.Session
	logger  *zap.Logger
}

func NewGateway(session *discordgo.Session, logger *zap.Logger) *Gateway {
	return &Gateway{session: session, logger: logger}
}

var (
	_ tickets.ChannelGateway = (*Gateway)(nil)
	_ tickets.Notifier       = (*Gateway)(nil)
	_ tickets.Uploader       = (*Gateway)(nil)
)

// ticketOverwrites hides the channel from everyone except the requester,
// the support roles and the bot itself. The @everyone role shares the guild ID.
func ticketOverwrites(guildID, userID, botID string, supportRoleIDs []string) []*discordgo.PermissionOverwrite {
	overwrites := []*discordgo.PermissionOverwrite{
		{ID: guildID, Type: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionViewChannel},
		{ID: userID, Type: discordgo.PermissionOverwriteTypeMember, Allow: memberAccess},
	}
	for _, roleID := range supportRoleIDs {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    roleID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: memberAccess,
		})
	}
	if botID != "" {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    botID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: memberAccess | discordgo.PermissionManageChannels,
		})
	}
	return overwrites
}

func (g *Gateway) botID() string {
	if g.session.State != nil && g.session.State.User != nil {
		return g.session.State.User.ID
	}
	return ""
}

func (g *Gateway) CreateTicketChannel(ctx context.Context, req tickets.ChannelRequest) (string, error) {
	ch, err := g.session.GuildChannelCreateComplex(req.GuildID, discordgo.GuildChannelCreateData{
		Name:                 req.Name,
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                req.Topic,
		ParentID:             req.ParentID,
		PermissionOverwrites: ticketOverwrites(req.GuildID, req.UserID, g.botID(), req.SupportRoleIDs),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to create channel %s: %w", req.Name, err)
	}
	return ch.ID, nil
}

func (g *Gateway) RenameTicketChannel(ctx context.Context, channelID, name, topic string) error {
	_, err := g.session.ChannelEdit(channelID, &discordgo.ChannelEdit{
		Name:  name,
		Topic: topic,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to rename channel %s: %w", channelID, err)
	}
	return nil
}

func (g *Gateway) DeleteChannel(ctx context.Context, channelID string) error {
	if _, err := g.session.ChannelDelete(channelID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to delete channel %s: %w", channelID, err)
	}
	return nil
}

func (g *Gateway) SendWelcome(ctx context.Context, channelID string, t *model.Ticket, cfg *model.TicketConfig) error {
	mentions := []string{"<@" + t.UserID + ">"}
	for _, roleID := range supportRoleMentions(cfg, t.Category) {
		mentions = append(mentions, "<@&"+roleID+">")
	}
	_, err := g.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:    strings.Join(mentions, " "),
		Embeds:     []*discordgo.MessageEmbed{WelcomeEmbed(t, cfg)},
		Components: TicketControls(),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to send welcome message: %w", err)
	}
	return nil
}

func (g *Gateway) NotifyLog(ctx context.Context, channelID string, entry model.TicketLog) error {
	if _, err := g.session.ChannelMessageSendEmbed(channelID, LogEntryEmbed(entry), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to send log entry: %w", err)
	}
	return nil
}

func (g *Gateway) UploadFile(ctx context.Context, channelID, name, contentType string, r io.Reader) error {
	_, err := g.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: "📄 Ticket transcript",
		Files:   []*discordgo.File{{Name: name, ContentType: contentType, Reader: r}},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", name, err)
	}
	return nil
}

func supportRoleMentions(cfg *model.TicketConfig, category string) []string {
	var roles []string
	if cfg.SupportRoleID != "" {
		roles = append(roles, cfg.SupportRoleID)
	}
	if cat, ok := cfg.Category(category); ok {
		for _, r := range cat.SupportRoles {
			if r != "" && r != cfg.SupportRoleID {
				roles = append(roles, r)
			}
		}
	}
	return roles
}
