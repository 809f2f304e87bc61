package info

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"community-bot/bot"
	"community-bot/model"
	"community-bot/services/warnings"
	"community-bot/utils"
)

const (
	whoisPrefix = "whois"

	viewAvatar   = "avatar"
	viewBanner   = "banner"
	viewWarnings = "warnings"

	// buttonsTTL is how long the profile buttons answer. It stays under the
	// 15 minute lifetime of an interaction token so the disable edit lands.
	buttonsTTL = 5 * time.Minute

	maxListedRoles = 15
	day            = 24 * time.Hour
)

type keyPermission struct {
	bit   int64
	label string
}

// keyPermissions are the permissions worth calling out, most powerful first.
var keyPermissions = []keyPermission{
	{discordgo.PermissionAdministrator, "👑 Administrator"},
	{discordgo.PermissionManageGuild, "⚙️ Manage Server"},
	{discordgo.PermissionManageRoles, "🎭 Manage Roles"},
	{discordgo.PermissionManageChannels, "📁 Manage Channels"},
	{discordgo.PermissionManageMessages, "📝 Manage Messages"},
	{discordgo.PermissionManageWebhooks, "🔗 Manage Webhooks"},
	{discordgo.PermissionManageNicknames, "📛 Manage Nicknames"},
	{discordgo.PermissionManageGuildExpressions, "😄 Manage Emojis"},
	{discordgo.PermissionKickMembers, "👢 Kick Members"},
	{discordgo.PermissionBanMembers, "🔨 Ban Members"},
	{discordgo.PermissionMentionEveryone, "📢 Mention Everyone"},
}

var statusLabels = map[discordgo.Status]string{
	discordgo.StatusOnline:       "🟢 Online",
	discordgo.StatusIdle:         "🟡 Idle",
	discordgo.StatusDoNotDisturb: "🔴 Do Not Disturb",
	discordgo.StatusOffline:      "⚫ Offline",
	discordgo.StatusInvisible:    "⚫ Offline",
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// FormatAge renders a duration as years, months and days. Months count as 30
// days and years as 365.
func FormatAge(d time.Duration) string {
	days := int(d / day)
	years := days / 365
	days %= 365
	months := days / 30
	days %= 30

	var parts []string
	if years > 0 {
		parts = append(parts, plural(years, "year"))
	}
	if months > 0 {
		parts = append(parts, plural(months, "month"))
	}
	if days > 0 {
		parts = append(parts, plural(days, "day"))
	}
	if len(parts) == 0 {
		return "Less than a day"
	}
	return strings.Join(parts, ", ")
}

// KeyPermissions lists the notable permissions present in perms.
func KeyPermissions(perms int64) string {
	var out []string
	for _, p := range keyPermissions {
		if perms&p.bit == p.bit {
			out = append(out, p.label)
		}
	}
	if len(out) == 0 {
		return "No key permissions"
	}
	return strings.Join(out, "\n")
}

// JoinPosition is the 1-based rank of userID by join date among members, or
// 0 when the member is not among them.
func JoinPosition(members []*discordgo.Member, userID string) int {
	sorted := make([]*discordgo.Member, len(members))
	copy(sorted, members)
	sort.SliceStable(sorted, func(a, b int) bool { return sorted[a].JoinedAt.Before(sorted[b].JoinedAt) })
	for idx, m := range sorted {
		if m.User != nil && m.User.ID == userID {
			return idx + 1
		}
	}
	return 0
}

// RolesValue mentions the member's roles from highest to lowest position.
func RolesValue(guildRoles []*discordgo.Role, memberRoleIDs []string) (string, int) {
	held := make(map[string]bool, len(memberRoleIDs))
	for _, id := range memberRoleIDs {
		held[id] = true
	}
	var roles []*discordgo.Role
	for _, r := range guildRoles {
		if held[r.ID] {
			roles = append(roles, r)
		}
	}
	sort.SliceStable(roles, func(a, b int) bool { return roles[a].Position > roles[b].Position })
	if len(roles) == 0 {
		return "No roles", 0
	}

	mentions := make([]string, 0, maxListedRoles)
	for _, r := range roles[:min(len(roles), maxListedRoles)] {
		mentions = append(mentions, r.Mention())
	}
	value := strings.Join(mentions, ", ")
	if extra := len(roles) - maxListedRoles; extra > 0 {
		value += fmt.Sprintf(" and %d more...", extra)
	}
	return value, len(roles)
}

func activityLine(a *discordgo.Activity) string {
	switch a.Type {
	case discordgo.ActivityTypeGame:
		return "🎮 Playing " + a.Name
	case discordgo.ActivityTypeStreaming:
		return "🎥 Streaming " + a.Name
	case discordgo.ActivityTypeListening:
		return "🎵 Listening to " + a.Name
	case discordgo.ActivityTypeWatching:
		return "📺 Watching " + a.Name
	case discordgo.ActivityTypeCustom:
		emoji := a.Emoji.Name
		if emoji == "" {
			emoji = "👤"
		}
		return emoji + " Custom Status: " + a.State
	case discordgo.ActivityTypeCompeting:
		return "🏆 Competing in " + a.Name
	default:
		return a.Name
	}
}

// PresenceValue describes a member's status and activities.
func PresenceValue(p *discordgo.Presence) string {
	if p == nil {
		return ""
	}
	lines := []string{"**Status:** " + statusLabels[p.Status]}
	if len(p.Activities) > 0 {
		acts := make([]string, 0, len(p.Activities))
		for _, a := range p.Activities {
			acts = append(acts, activityLine(a))
		}
		lines = append(lines, "**Activities:**\n"+strings.Join(acts, "\n"))
	}
	return strings.Join(lines, "\n")
}

// Profile is what the whois embed shows about a user. Member is nil when
// the user is not in the guild.
type Profile struct {
	User         *discordgo.User
	Member       *discordgo.Member
	Color        int
	JoinPosition int
	Permissions  int64
	GuildRoles   []*discordgo.Role
	Presence     *discordgo.Presence
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// ProfileEmbed renders the main whois page.
func ProfileEmbed(p Profile, now time.Time) *discordgo.MessageEmbed {
	u := p.User
	created, err := discordgo.SnowflakeTimestamp(u.ID)
	if err != nil {
		created = now
	}
	embed := &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{
			Name:    "User Information - " + u.Username,
			IconURL: u.AvatarURL(""),
		},
		Color:     p.Color,
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: u.AvatarURL("256")},
		Fields: []*discordgo.MessageEmbedField{{
			Name: "👤 Basic Information",
			Value: strings.Join([]string{
				"**Username:** " + u.Username,
				"**ID:** " + u.ID,
				fmt.Sprintf("**Created:** <t:%d:F>", created.Unix()),
				"**Account Age:** " + FormatAge(now.Sub(created)),
				"**Bot Account:** " + yesNo(u.Bot),
			}, "\n"),
		}},
		Timestamp: now.Format(time.RFC3339),
	}
	if p.Member == nil {
		return embed
	}

	m := p.Member
	nick := m.Nick
	if nick == "" {
		nick = "None"
	}
	position := "Unknown"
	if p.JoinPosition > 0 {
		position = fmt.Sprintf("%d", p.JoinPosition)
	}
	timedOut := m.CommunicationDisabledUntil != nil && m.CommunicationDisabledUntil.After(now)
	roles, roleCount := RolesValue(p.GuildRoles, m.Roles)

	embed.Fields = append(embed.Fields,
		&discordgo.MessageEmbedField{
			Name: "📋 Server Member Information",
			Value: strings.Join([]string{
				"**Nickname:** " + nick,
				fmt.Sprintf("**Joined Server:** <t:%d:F>", m.JoinedAt.Unix()),
				"**Join Position:** " + position,
				"**Server Member For:** " + FormatAge(now.Sub(m.JoinedAt)),
				"**Timed Out:** " + yesNo(timedOut),
			}, "\n"),
		},
		&discordgo.MessageEmbedField{Name: fmt.Sprintf("👑 Roles [%d]", roleCount), Value: utils.Truncate(roles, 1024)},
		&discordgo.MessageEmbedField{Name: "🔑 Key Permissions", Value: KeyPermissions(p.Permissions)},
	)
	if presence := PresenceValue(p.Presence); presence != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "🎮 Presence", Value: utils.Truncate(presence, 1024)})
	}
	return embed
}

// WarningsEmbed lists a member's active warnings with their point total and
// the advisory escalation for it.
func WarningsEmbed(u *discordgo.User, list []model.Warning, points int) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:     "Warning History - " + u.Username,
		Color:     0x00ff00,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if points > 0 {
		embed.Color = 0xff0000
	}
	if len(list) == 0 {
		embed.Description = "This user has no warnings! 🎉"
		return embed
	}

	suggested := "None"
	if t, ok := warnings.SuggestedAction(points); ok {
		suggested = t.String()
	}
	embed.Description = fmt.Sprintf("Total Warning Points: %d\nSuggested Action: %s", points, suggested)

	entries := make([]string, 0, len(list))
	for n, w := range list {
		entries = append(entries, fmt.Sprintf("**%d.** Level: %s\nReason: %s\nPoints: %d\nDate: <t:%d:F>",
			n+1, w.Level.Label(), w.Reason, w.Points, w.CreatedAt.Unix()))
	}
	embed.Fields = []*discordgo.MessageEmbedField{{
		Name:  "Warning History",
		Value: utils.Truncate(strings.Join(entries, "\n\n"), 1024),
	}}
	return embed
}

// whoisID encodes "whois:<view>:<owner>:<target>".
func whoisID(view, ownerID, targetID string) string {
	return strings.Join([]string{whoisPrefix, view, ownerID, targetID}, ":")
}

// IsWhoisID reports whether customID is a whois profile button.
func IsWhoisID(customID string) bool {
	return strings.HasPrefix(customID, whoisPrefix+":")
}

func parseWhoisID(customID string) (view, ownerID, targetID string, err error) {
	parts := strings.Split(customID, ":")
	if len(parts) != 4 || parts[0] != whoisPrefix {
		return "", "", "", fmt.Errorf("malformed whois id %q", customID)
	}
	switch parts[1] {
	case viewAvatar, viewBanner, viewWarnings:
	default:
		return "", "", "", fmt.Errorf("unknown whois view %q", parts[1])
	}
	return parts[1], parts[2], parts[3], nil
}

// WhoisButtons are the avatar, banner and warnings views for targetID.
func WhoisButtons(ownerID, targetID string, disabled bool) []discordgo.MessageComponent {
	button := func(view, label, emoji string) discordgo.MessageComponent {
		return discordgo.Button{
			Label:    label,
			Style:    discordgo.SecondaryButton,
			CustomID: whoisID(view, ownerID, targetID),
			Emoji:    &discordgo.ComponentEmoji{Name: emoji},
			Disabled: disabled,
		}
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			button(viewAvatar, "Avatar", "🖼️"),
			button(viewBanner, "Banner", "🎨"),
			button(viewWarnings, "Warnings", "⚠️"),
		}},
	}
}

func fetchMember(ctx context.Context, s *discordgo.Session, guildID, userID string) *discordgo.Member {
	if m, err := s.State.Member(guildID, userID); err == nil {
		return m
	}
	m, err := s.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil
	}
	return m
}

func loadProfile(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, u *discordgo.User) Profile {
	p := Profile{User: u, Member: fetchMember(ctx, s, i.GuildID, u.ID)}
	if p.Member == nil {
		return p
	}
	p.Color = s.State.UserColor(u.ID, i.ChannelID)
	if perms, err := s.State.UserChannelPermissions(u.ID, i.ChannelID); err == nil {
		p.Permissions = perms
	} else if i.Member != nil && i.Member.User.ID == u.ID {
		p.Permissions = i.Member.Permissions
	}
	if g, err := s.State.Guild(i.GuildID); err == nil {
		p.GuildRoles = g.Roles
		p.JoinPosition = JoinPosition(g.Members, u.ID)
	} else if roles, err := s.GuildRoles(i.GuildID, discordgo.WithContext(ctx)); err == nil {
		p.GuildRoles = roles
	}
	if presence, err := s.State.Presence(i.GuildID, u.ID); err == nil {
		p.Presence = presence
	}
	return p
}

// HandleWhoisCommand shows a profile of a user with buttons for more detail.
func HandleWhoisCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := utils.OptionMap(i.ApplicationCommandData().Options)
	silent := true
	if opt, ok := opts["silent"]; ok {
		silent = opt.BoolValue()
	}
	if err := utils.DeferResponse(s, i, silent); err != nil {
		b.Logger.Warn("failed to defer whois", zap.Error(err))
		return
	}

	owner := utils.InteractionUser(i)
	target := owner
	if opt, ok := opts["target"]; ok {
		target = opt.UserValue(s)
	}

	ctx, cancel := b.RequestContext()
	defer cancel()
	embed := ProfileEmbed(loadProfile(ctx, s, i, target), time.Now())

	buttons := WhoisButtons(owner.ID, target.ID, false)
	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds:     &[]*discordgo.MessageEmbed{embed},
		Components: &buttons,
	})
	if err != nil {
		b.Logger.Error("failed to send whois", zap.String("target_id", target.ID), zap.Error(err))
		return
	}

	time.AfterFunc(buttonsTTL, func() {
		disabled := WhoisButtons(owner.ID, target.ID, true)
		if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Components: &disabled}); err != nil {
			b.Logger.Debug("failed to disable whois buttons", zap.Error(err))
		}
	})
}

// HandleWhoisButton swaps the whois message to the requested view.
func HandleWhoisButton(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	view, ownerID, targetID, err := parseWhoisID(i.MessageComponentData().CustomID)
	if err != nil {
		b.Logger.Warn("ignoring whois button", zap.Error(err))
		return
	}
	if user := utils.InteractionUser(i); user == nil || user.ID != ownerID {
		utils.SendErrorResponse(s, i, "Only the command executor can use these buttons.")
		return
	}

	ctx, cancel := b.RequestContext()
	defer cancel()
	target, err := s.User(targetID, discordgo.WithContext(ctx))
	if err != nil {
		b.Logger.Warn("failed to fetch whois target", zap.String("target_id", targetID), zap.Error(err))
		utils.SendErrorResponse(s, i, "An error occurred while fetching user information.")
		return
	}

	var embed *discordgo.MessageEmbed
	switch view {
	case viewAvatar:
		embed = &discordgo.MessageEmbed{
			Title: target.Username + "'s Avatar",
			Image: &discordgo.MessageEmbedImage{URL: target.AvatarURL("4096")},
			Color: 0x00ff00,
		}
	case viewBanner:
		embed = &discordgo.MessageEmbed{Title: target.Username + "'s Banner", Color: 0x00ff00}
		if target.Banner != "" {
			embed.Image = &discordgo.MessageEmbedImage{URL: target.BannerURL("4096")}
		} else {
			embed.Description = "This user does not have a banner."
		}
	case viewWarnings:
		list, err := b.Warnings.GetUserWarnings(ctx, targetID, i.GuildID, true)
		if err != nil {
			b.Logger.Error("failed to load warnings", zap.String("user_id", targetID), zap.Error(err))
			utils.SendErrorResponse(s, i, "An error occurred while fetching warnings.")
			return
		}
		points, err := b.Warnings.CalculateUserPoints(ctx, targetID, i.GuildID)
		if err != nil {
			b.Logger.Error("failed to total warning points", zap.String("user_id", targetID), zap.Error(err))
			utils.SendErrorResponse(s, i, "An error occurred while fetching warnings.")
			return
		}
		embed = WarningsEmbed(target, list, points)
	}
	embed.Timestamp = time.Now().Format(time.RFC3339)

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: WhoisButtons(ownerID, targetID, false),
		},
	})
	if err != nil {
		b.Logger.Warn("failed to update whois", zap.String("view", view), zap.Error(err))
	}
}
