package utility

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"community-bot/bot"
	"community-bot/utils"
)

const (
	defaultAvatarFormat = "png"
	defaultAvatarSize   = 1024
)

func animated(u *discordgo.User) bool {
	return strings.HasPrefix(u.Avatar, "a_")
}

// AvatarURL builds the CDN link for a user's avatar. Users without a custom
// avatar get the default one regardless of format.
func AvatarURL(u *discordgo.User, format string, size int) string {
	if u.Avatar == "" {
		return u.AvatarURL(fmt.Sprintf("%d", size))
	}
	if format == "gif" && !animated(u) {
		format = defaultAvatarFormat
	}
	return fmt.Sprintf("%s%s/%s.%s?size=%d", discordgo.EndpointCDNAvatars, u.ID, u.Avatar, format, size)
}

// AvatarButtons links the avatar in each format the user has it in.
func AvatarButtons(u *discordgo.User, size int) []discordgo.MessageComponent {
	formats := []string{"png", "jpg", "webp"}
	if animated(u) {
		formats = append(formats, "gif")
	}
	buttons := make([]discordgo.MessageComponent, 0, len(formats))
	for _, f := range formats {
		buttons = append(buttons, discordgo.Button{
			Label: strings.ToUpper(f),
			Style: discordgo.LinkButton,
			URL:   AvatarURL(u, f, size),
		})
	}
	return []discordgo.MessageComponent{discordgo.ActionsRow{Components: buttons}}
}

// HandleAvatarCommand shows a user's avatar.
func HandleAvatarCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	requester := utils.InteractionUser(i)
	if requester == nil {
		return
	}
	opts := utils.OptionMap(i.ApplicationCommandData().Options)
	user := requester
	if opt, ok := opts["user"]; ok {
		user = opt.UserValue(s)
	}
	format, size := defaultAvatarFormat, defaultAvatarSize
	if opt, ok := opts["format"]; ok {
		format = opt.StringValue()
	}
	if opt, ok := opts["size"]; ok {
		size = int(opt.IntValue())
	}

	url := AvatarURL(user, format, size)
	color := 0
	if i.GuildID != "" {
		color = s.State.UserColor(user.ID, i.ChannelID)
	}
	animatedLabel := "No"
	if animated(user) {
		animatedLabel = "Yes"
	}

	embed := &discordgo.MessageEmbed{
		Title:       user.Username + "'s Avatar",
		Description: "[Download Avatar](" + url + ")",
		Color:       color,
		Image:       &discordgo.MessageEmbedImage{URL: url},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Format", Value: strings.ToUpper(format), Inline: true},
			{Name: "Size", Value: fmt.Sprintf("%dx%d", size, size), Inline: true},
			{Name: "Animated", Value: animatedLabel, Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text:    "Requested by " + requester.Username,
			IconURL: requester.AvatarURL(""),
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: AvatarButtons(user, size),
		},
	})
	if err != nil {
		b.Logger.Sugar().Warnf("failed to send avatar for %s: %v", user.ID, err)
	}
}
