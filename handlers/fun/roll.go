package fun

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"community-bot/bot"
	"community-bot/utils"
)

const (
	defaultSides = 6
	minSides     = 2
	maxSides     = 100
	maxDice      = 25

	colorDice   = 0xffd700
	colorNumber = 0x4169e1
	colorChoice = 0xff69b4
)

var (
	errEmptyRange   = errors.New("minimum number must be less than maximum number")
	errFewerChoices = errors.New("please provide at least 2 options separated by commas")
)

// intn returns a value in [0, n).
type intn func(n int) int

// DiceRoll is the outcome of rolling Count dice with Sides faces.
type DiceRoll struct {
	Sides int
	Rolls []int
	Total int
}

// RollDice rolls count dice. Out of range arguments are clamped.
func RollDice(sides, count int, rnd intn) DiceRoll {
	if sides == 0 {
		sides = defaultSides
	}
	sides = min(max(sides, minSides), maxSides)
	count = min(max(count, 1), maxDice)
	r := DiceRoll{Sides: sides, Rolls: make([]int, count)}
	for i := range r.Rolls {
		r.Rolls[i] = rnd(sides) + 1
		r.Total += r.Rolls[i]
	}
	return r
}

// RollNumber picks a number in [lo, hi].
func RollNumber(lo, hi int64, rnd func(n int64) int64) (int64, error) {
	if lo >= hi {
		return 0, errEmptyRange
	}
	return lo + rnd(hi-lo+1), nil
}

// ParseChoices splits a comma separated list, dropping blank entries.
func ParseChoices(raw string) []string {
	var out []string
	for _, c := range strings.Split(raw, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// PickChoice returns one of at least two choices.
func PickChoice(choices []string, rnd intn) (string, error) {
	if len(choices) < 2 {
		return "", errFewerChoices
	}
	return choices[rnd(len(choices))], nil
}

func diceEmoji(sides int) string {
	if sides == 100 {
		return "💯"
	}
	return "🎲"
}

func joinInts(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}

// DiceEmbed renders a dice roll.
func DiceEmbed(r DiceRoll, by string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "🎲 Dice Roll Results",
		Color: colorDice,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Dice Type", Value: fmt.Sprintf("%s d%d", diceEmoji(r.Sides), r.Sides), Inline: true},
			{Name: "Number of Dice", Value: strconv.Itoa(len(r.Rolls)), Inline: true},
			{Name: "Total", Value: strconv.Itoa(r.Total), Inline: true},
			{Name: "Individual Rolls", Value: utils.Truncate(joinInts(r.Rolls), 1024)},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "Rolled by " + by},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// HandleRollCommand routes /roll dice|number|custom.
func HandleRollCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	user := utils.InteractionUser(i)
	if user == nil {
		return
	}
	sub, opts := utils.Subcommand(i)
	var embed *discordgo.MessageEmbed
	switch sub {
	case "dice":
		sides, count := defaultSides, 1
		if opt, ok := opts["sides"]; ok {
			sides = int(opt.IntValue())
		}
		if opt, ok := opts["amount"]; ok {
			count = int(opt.IntValue())
		}
		embed = DiceEmbed(RollDice(sides, count, rand.IntN), user.Username)
	case "number":
		lo, hi := opts["min"], opts["max"]
		if lo == nil || hi == nil {
			utils.SendErrorResponse(s, i, "Please provide both min and max.")
			return
		}
		n, err := RollNumber(lo.IntValue(), hi.IntValue(), rand.Int64N)
		if err != nil {
			utils.SendErrorResponse(s, i, "Minimum number must be less than maximum number!")
			return
		}
		embed = &discordgo.MessageEmbed{
			Title: "🎯 Random Number Generator",
			Color: colorNumber,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Range", Value: fmt.Sprintf("%d - %d", lo.IntValue(), hi.IntValue()), Inline: true},
				{Name: "Result", Value: fmt.Sprintf("**%d**", n), Inline: true},
			},
			Footer:    &discordgo.MessageEmbedFooter{Text: "Generated by " + user.Username},
			Timestamp: time.Now().Format(time.RFC3339),
		}
	case "custom":
		var raw string
		if opt, ok := opts["options"]; ok {
			raw = opt.StringValue()
		}
		choices := ParseChoices(raw)
		pick, err := PickChoice(choices, rand.IntN)
		if err != nil {
			utils.SendErrorResponse(s, i, "Please provide at least 2 options separated by commas!")
			return
		}
		embed = &discordgo.MessageEmbed{
			Title: "🎪 Custom Roll Result",
			Color: colorChoice,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Options", Value: utils.Truncate(strings.Join(choices, "\n"), 1024)},
				{Name: "Result", Value: "**" + utils.Truncate(pick, 1000) + "**"},
			},
			Footer:    &discordgo.MessageEmbedFooter{Text: "Rolled by " + user.Username},
			Timestamp: time.Now().Format(time.RFC3339),
		}
	default:
		utils.SendErrorResponse(s, i, "Unknown subcommand.")
		return
	}
	b.Logger.Debug("roll", zap.String("subcommand", sub), zap.String("user_id", user.ID))
	utils.SendEmbedResponse(s, i, false, embed)
}
