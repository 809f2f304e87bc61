package fun

import (
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixed always returns the largest value, the worst case for off-by-one bugs.
func fixed(n int) int { return n - 1 }

func TestRollDice(t *testing.T) {
	tests := []struct {
		name      string
		sides     int
		count     int
		wantSides int
		wantRolls int
		wantTotal int
	}{
		{"defaults", 0, 1, 6, 1, 6},
		{"three d20", 20, 3, 20, 3, 60},
		{"sides clamped low", 1, 1, 2, 1, 2},
		{"sides clamped high", 1000, 1, 100, 1, 100},
		{"count clamped", 6, 99, 6, 25, 150},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := RollDice(tt.sides, tt.count, fixed)
			assert.Equal(t, tt.wantSides, r.Sides)
			assert.Len(t, r.Rolls, tt.wantRolls)
			assert.Equal(t, tt.wantTotal, r.Total)
		})
	}
}

func TestRollDiceStaysInRange(t *testing.T) {
	r := RollDice(6, 25, func(int) int { return 0 })
	for _, v := range r.Rolls {
		assert.Equal(t, 1, v)
	}
	assert.Equal(t, 25, r.Total)
}

func TestRollNumber(t *testing.T) {
	n, err := RollNumber(5, 10, func(n int64) int64 { return n - 1 })
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)

	n, err = RollNumber(-3, 3, func(int64) int64 { return 0 })
	require.NoError(t, err)
	assert.Equal(t, int64(-3), n)

	_, err = RollNumber(4, 4, fixed64)
	assert.ErrorIs(t, err, errEmptyRange)
	_, err = RollNumber(9, 1, fixed64)
	assert.ErrorIs(t, err, errEmptyRange)
}

func fixed64(n int64) int64 { return n - 1 }

func TestParseChoices(t *testing.T) {
	assert.Equal(t, []string{"pizza", "tacos", "sushi"}, ParseChoices(" pizza, tacos ,,sushi, "))
	assert.Nil(t, ParseChoices(" , ,"))
}

func TestPickChoice(t *testing.T) {
	pick, err := PickChoice([]string{"a", "b", "c"}, fixed)
	require.NoError(t, err)
	assert.Equal(t, "c", pick)

	_, err = PickChoice([]string{"only"}, fixed)
	assert.ErrorIs(t, err, errFewerChoices)
}

func TestDiceEmbed(t *testing.T) {
	e := DiceEmbed(DiceRoll{Sides: 100, Rolls: []int{42, 7}, Total: 49}, "alice")
	assert.Equal(t, "💯 d100", e.Fields[0].Value)
	assert.Equal(t, "2", e.Fields[1].Value)
	assert.Equal(t, "49", e.Fields[2].Value)
	assert.Equal(t, "42, 7", e.Fields[3].Value)
	assert.Equal(t, "Rolled by alice", e.Footer.Text)
}

func TestPlay(t *testing.T) {
	tests := []struct {
		player, opponent string
		want             Outcome
	}{
		{"rock", "rock", Tie},
		{"rock", "scissors", Win},
		{"rock", "paper", Lose},
		{"water", "fire", Win},
		{"fire", "water", Lose},
		{"wind", "rock", Win},
		{"rock", "wind", Win},
	}
	for _, tt := range tests {
		t.Run(tt.player+"_vs_"+tt.opponent, func(t *testing.T) {
			assert.Equal(t, tt.want, Play(tt.player, tt.opponent))
		})
	}
}

func TestEveryPairIsDecided(t *testing.T) {
	for _, a := range Weapons {
		for _, b := range Weapons {
			if a == b {
				continue
			}
			won := beats[a][b] != "" || beats[b][a] != ""
			assert.True(t, won, "%s vs %s has no rule", a, b)
		}
	}
}

func TestExplain(t *testing.T) {
	assert.Equal(t, "🪨 Rock crushes ✂️ Scissors!", Explain("rock", "scissors"))
	assert.Equal(t, "📄 Paper wraps 🪨 Rock!", Explain("rock", "paper"))
	assert.Equal(t, "It's a tie!", Explain("fire", "fire"))
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "You win! 🎉", Win.String())
	assert.Equal(t, "You lose! 😢", Lose.String())
	assert.Equal(t, "It's a tie! 🤝", Tie.String())
}

func TestCheckOpponent(t *testing.T) {
	tests := []struct {
		name   string
		target *discordgo.User
		want   error
	}{
		{"other member", &discordgo.User{ID: "2"}, nil},
		{"yourself", &discordgo.User{ID: "1"}, errSelfChallenge},
		{"bot", &discordgo.User{ID: "3", Bot: true}, errBotChallenge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckOpponent("1", tt.target)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Contains(t, opponentMessage(errSelfChallenge), "yourself")
	assert.Contains(t, opponentMessage(errBotChallenge), "bot")
}

func TestPickChallenge(t *testing.T) {
	q, ok := PickChallenge("truth", fixed)
	require.True(t, ok)
	assert.Equal(t, Challenges["truth"][len(Challenges["truth"])-1], q)

	q, ok = PickChallenge("dare", func(int) int { return 0 })
	require.True(t, ok)
	assert.Equal(t, Challenges["dare"][0], q)

	_, ok = PickChallenge("both", fixed)
	assert.False(t, ok)
}

func TestChallengeEmbed(t *testing.T) {
	e := ChallengeEmbed("truth", "Why?", "1", "2")
	assert.Equal(t, colorTruth, e.Color)
	assert.Equal(t, "<@1>", e.Fields[0].Value)
	assert.Equal(t, "<@2>", e.Fields[1].Value)
	assert.Equal(t, "Question", e.Fields[3].Name)

	e = ChallengeEmbed("dare", "Sing!", "1", "2")
	assert.Equal(t, colorDare, e.Color)
	assert.Equal(t, "🎯 Dare", e.Fields[2].Value)
	assert.Equal(t, "Challenge", e.Fields[3].Name)
}

func TestChallengeButtonIDs(t *testing.T) {
	row := ChallengeButtons("1", "2", "dare")[0].(discordgo.ActionsRow)
	require.Len(t, row.Components, 2)

	accept, err := parseChallengeID(row.Components[0].(discordgo.Button).CustomID)
	require.NoError(t, err)
	assert.Equal(t, challengeAnswer{accepted: true, challengerID: "1", targetID: "2", kind: "dare"}, accept)

	decline, err := parseChallengeID(row.Components[1].(discordgo.Button).CustomID)
	require.NoError(t, err)
	assert.False(t, decline.accepted)

	assert.True(t, IsChallengeID("tod:accept:1:2:truth"))
	assert.False(t, IsChallengeID("confirm:abc"))

	for _, bad := range []string{"tod:accept:1:2", "tod:maybe:1:2:dare", "tod:accept:1:2:both"} {
		_, err := parseChallengeID(bad)
		assert.Error(t, err, bad)
	}
}

func TestThreadName(t *testing.T) {
	assert.Equal(t, "alice vs bob - dare", ThreadName("alice", "bob", "dare"))
	long := ThreadName(strings.Repeat("a", 80), strings.Repeat("b", 80), "truth")
	assert.LessOrEqual(t, len([]rune(long)), 100)
}
