package fun

import (
	"math/rand/v2"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"community-bot/bot"
	"community-bot/utils"
)

// Weapons in /rps choice order.
var Weapons = []string{"rock", "paper", "scissors", "fire", "water", "wind"}

var weaponEmoji = map[string]string{
	"rock":     "🪨",
	"paper":    "📄",
	"scissors": "✂️",
	"fire":     "🔥",
	"water":    "💧",
	"wind":     "🌪️",
}

// beats lists what each weapon defeats, with the verb used to describe it.
var beats = map[string]map[string]string{
	"rock":     {"scissors": "crushes", "fire": "smothers", "wind": "blocks"},
	"paper":    {"rock": "wraps", "water": "absorbs", "wind": "rides"},
	"scissors": {"paper": "cuts", "fire": "melts in", "wind": "slices through"},
	"fire":     {"paper": "burns", "wind": "consumes", "scissors": "melts"},
	"water":    {"fire": "extinguishes", "rock": "erodes", "scissors": "rusts"},
	"wind":     {"water": "disperses", "paper": "tears", "rock": "is blocked by"},
}

// Outcome of an rps round from the player's side.
type Outcome int

const (
	Tie Outcome = iota
	Win
	Lose
)

func (o Outcome) String() string {
	switch o {
	case Win:
		return "You win! 🎉"
	case Lose:
		return "You lose! 😢"
	default:
		return "It's a tie! 🤝"
	}
}

func (o Outcome) color() int {
	switch o {
	case Win:
		return 0x00ff00
	case Lose:
		return 0xff0000
	default:
		return 0xffff00
	}
}

// Play decides a round. Pairs listed in both directions go to the player.
func Play(player, opponent string) Outcome {
	switch {
	case player == opponent:
		return Tie
	case beats[player][opponent] != "":
		return Win
	default:
		return Lose
	}
}

func label(w string) string {
	return weaponEmoji[w] + " " + strings.ToUpper(w[:1]) + w[1:]
}

// Explain describes why the round went the way it did.
func Explain(player, opponent string) string {
	if player == opponent {
		return "It's a tie!"
	}
	if verb := beats[player][opponent]; verb != "" {
		return label(player) + " " + verb + " " + label(opponent) + "!"
	}
	if verb := beats[opponent][player]; verb != "" {
		return label(opponent) + " " + verb + " " + label(player) + "!"
	}
	return label(opponent) + " wins this one!"
}

// HandleRPSCommand plays one round against the bot.
func HandleRPSCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := utils.OptionMap(i.ApplicationCommandData().Options)
	opt, ok := opts["choice"]
	if !ok || weaponEmoji[opt.StringValue()] == "" {
		utils.SendErrorResponse(s, i, "Please choose a valid weapon.")
		return
	}
	player := opt.StringValue()
	opponent := Weapons[rand.IntN(len(Weapons))]
	outcome := Play(player, opponent)

	utils.SendEmbedResponse(s, i, false, &discordgo.MessageEmbed{
		Title: "🎮 Rock, Paper, Scissors, Fire, Water, Wind!",
		Color: outcome.color(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Your Choice", Value: label(player), Inline: true},
			{Name: "Bot Choice", Value: label(opponent), Inline: true},
			{Name: "Result", Value: outcome.String(), Inline: true},
			{Name: "Explanation", Value: Explain(player, opponent)},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "Try again with a different choice!"},
		Timestamp: time.Now().Format(time.RFC3339),
	})
}
