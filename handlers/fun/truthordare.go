package fun

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"community-bot/bot"
	"community-bot/utils"
)

const (
	challengePrefix = "tod"

	truth = "truth"
	dare  = "dare"

	colorTruth    = 0x4169e1
	colorDare     = 0xff69b4
	colorAccepted = 0x00ff00
	colorDeclined = 0xff0000

	// threadArchiveMinutes is one day, the longest auto archive every guild allows.
	threadArchiveMinutes = 1440
)

var (
	errSelfChallenge = errors.New("cannot challenge yourself")
	errBotChallenge  = errors.New("cannot challenge a bot")
)

// Challenges holds the question pool for each kind.
var Challenges = map[string][]string{
	truth: {
		"What's your most embarrassing gaming moment?",
		"Which Discord member would you want to be stranded on an island with?",
		"What's the weirdest dream you've ever had?",
		"What's your guilty pleasure song?",
		"What's the most childish thing you still do?",
		"What's your biggest pet peeve about Discord?",
		"What's the worst message you've ever sent by accident?",
		"What's your most used emoji and why?",
		"If you could swap lives with someone in this server for a day, who would it be?",
		"What's your most controversial gaming opinion?",
	},
	dare: {
		"Change your Discord status to something embarrassing for 1 hour!",
		"Send a screenshot of your most recent DMs (keeping it appropriate)!",
		"Type everything backwards for the next 10 minutes!",
		"Send a voice message singing your favorite song!",
		"Use only emojis to communicate for the next 5 minutes!",
		"Send your most recent photo from your gallery (keeping it appropriate)!",
		"Write a haiku about another server member!",
		"Change your Discord avatar to match another server member for 30 minutes!",
		"Send a message in all caps expressing your love for vegetables!",
		"Create a meme about the person who challenged you!",
	},
}

// CheckOpponent rejects challenges aimed at the challenger or at a bot.
func CheckOpponent(challengerID string, target *discordgo.User) error {
	if target.ID == challengerID {
		return errSelfChallenge
	}
	if target.Bot {
		return errBotChallenge
	}
	return nil
}

func opponentMessage(err error) string {
	if errors.Is(err, errSelfChallenge) {
		return "You can't play with yourself! Choose another player."
	}
	return "You can't play with a bot! Choose a real player."
}

// PickChallenge draws a question of kind. Unknown kinds report false.
func PickChallenge(kind string, rnd intn) (string, bool) {
	pool := Challenges[kind]
	if len(pool) == 0 {
		return "", false
	}
	return pool[rnd(len(pool))], true
}

func kindLabel(kind string) string {
	if kind == truth {
		return "🤔 Truth"
	}
	return "🎯 Dare"
}

// ChallengeEmbed presents a challenge to its target.
func ChallengeEmbed(kind, question, challengerID, targetID string) *discordgo.MessageEmbed {
	color, field := colorDare, "Challenge"
	if kind == truth {
		color, field = colorTruth, "Question"
	}
	return &discordgo.MessageEmbed{
		Title: "🎲 Truth or Dare! 🎲",
		Color: color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Challenge From", Value: "<@" + challengerID + ">", Inline: true},
			{Name: "Challenge To", Value: "<@" + targetID + ">", Inline: true},
			{Name: "Type", Value: kindLabel(kind), Inline: true},
			{Name: field, Value: question},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "Only the challenged player can answer."},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// challengeID encodes "tod:<accept|decline>:<challenger>:<target>:<kind>".
func challengeID(answer, challengerID, targetID, kind string) string {
	return strings.Join([]string{challengePrefix, answer, challengerID, targetID, kind}, ":")
}

// IsChallengeID reports whether customID is a truth or dare answer button.
func IsChallengeID(customID string) bool {
	return strings.HasPrefix(customID, challengePrefix+":")
}

type challengeAnswer struct {
	accepted     bool
	challengerID string
	targetID     string
	kind         string
}

func parseChallengeID(customID string) (challengeAnswer, error) {
	parts := strings.Split(customID, ":")
	if len(parts) != 5 || parts[0] != challengePrefix {
		return challengeAnswer{}, fmt.Errorf("malformed challenge id %q", customID)
	}
	if parts[1] != "accept" && parts[1] != "decline" {
		return challengeAnswer{}, fmt.Errorf("unknown challenge answer %q", parts[1])
	}
	if _, ok := Challenges[parts[4]]; !ok {
		return challengeAnswer{}, fmt.Errorf("unknown challenge kind %q", parts[4])
	}
	return challengeAnswer{
		accepted:     parts[1] == "accept",
		challengerID: parts[2],
		targetID:     parts[3],
		kind:         parts[4],
	}, nil
}

// ChallengeButtons lets the target accept or decline.
func ChallengeButtons(challengerID, targetID, kind string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Accept Challenge",
					Style:    discordgo.SuccessButton,
					CustomID: challengeID("accept", challengerID, targetID, kind),
					Emoji:    &discordgo.ComponentEmoji{Name: "✅"},
				},
				discordgo.Button{
					Label:    "Decline Challenge",
					Style:    discordgo.DangerButton,
					CustomID: challengeID("decline", challengerID, targetID, kind),
					Emoji:    &discordgo.ComponentEmoji{Name: "❌"},
				},
			},
		},
	}
}

// ThreadName names the thread opened for an accepted challenge.
func ThreadName(challenger, target, kind string) string {
	return utils.Truncate(fmt.Sprintf("%s vs %s - %s", challenger, target, kind), 100)
}

// HandleTruthOrDareCommand challenges another member.
func HandleTruthOrDareCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	challenger := utils.InteractionUser(i)
	opts := utils.OptionMap(i.ApplicationCommandData().Options)
	targetOpt, kindOpt := opts["target"], opts["choice"]
	if challenger == nil || targetOpt == nil || kindOpt == nil {
		utils.SendErrorResponse(s, i, "Please choose a player and Truth or Dare.")
		return
	}
	target := targetOpt.UserValue(s)
	if err := CheckOpponent(challenger.ID, target); err != nil {
		utils.SendErrorResponse(s, i, opponentMessage(err))
		return
	}
	kind := kindOpt.StringValue()
	question, ok := PickChallenge(kind, rand.IntN)
	if !ok {
		utils.SendErrorResponse(s, i, "Please choose Truth or Dare.")
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:         fmt.Sprintf("Hey %s! You've been challenged to Truth or Dare!", target.Mention()),
			Embeds:          []*discordgo.MessageEmbed{ChallengeEmbed(kind, question, challenger.ID, target.ID)},
			Components:      ChallengeButtons(challenger.ID, target.ID, kind),
			AllowedMentions: &discordgo.MessageAllowedMentions{Users: []string{target.ID}},
		},
	})
	if err != nil {
		b.Logger.Warn("failed to send truth or dare challenge", zap.Error(err))
	}
}

// HandleChallengeButton answers a challenge on behalf of its target.
func HandleChallengeButton(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	answer, err := parseChallengeID(i.MessageComponentData().CustomID)
	if err != nil {
		b.Logger.Warn("ignoring challenge button", zap.Error(err))
		return
	}
	user := utils.InteractionUser(i)
	if user == nil || user.ID != answer.targetID {
		utils.SendErrorResponse(s, i, fmt.Sprintf("Only <@%s> can answer this challenge.", answer.targetID))
		return
	}

	result := &discordgo.MessageEmbed{
		Color:       colorDeclined,
		Title:       "Challenge Declined 😢",
		Description: fmt.Sprintf("<@%s> has declined the challenge!", answer.targetID),
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	if answer.accepted {
		result = &discordgo.MessageEmbed{
			Color:       colorAccepted,
			Title:       "Challenge Accepted! 🎉",
			Description: fmt.Sprintf("<@%s> has accepted the challenge! Complete your %s and reply in the thread!", answer.targetID, answer.kind),
			Timestamp:   time.Now().Format(time.RFC3339),
		}
	}
	embeds := append(append([]*discordgo.MessageEmbed{}, i.Message.Embeds...), result)
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     embeds,
			Components: []discordgo.MessageComponent{},
		},
	})
	if err != nil {
		b.Logger.Warn("failed to answer challenge", zap.Error(err))
		return
	}
	if !answer.accepted {
		return
	}

	ctx, cancel := b.RequestContext()
	defer cancel()
	challengerName := answer.challengerID
	if u, err := s.User(answer.challengerID, discordgo.WithContext(ctx)); err == nil {
		challengerName = u.Username
	}
	_, err = s.ThreadStartComplex(i.ChannelID, &discordgo.ThreadStart{
		Name:                ThreadName(challengerName, user.Username, answer.kind),
		AutoArchiveDuration: threadArchiveMinutes,
		Type:                discordgo.ChannelTypeGuildPublicThread,
	}, discordgo.WithContext(ctx), discordgo.WithAuditLogReason("Truth or Dare challenge"))
	if err != nil {
		b.Logger.Warn("failed to open challenge thread", zap.String("channel_id", i.ChannelID), zap.Error(err))
	}
}
