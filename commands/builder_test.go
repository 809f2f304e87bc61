package commands

import (
	"regexp"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

var commandName = regexp.MustCompile(`^[a-z0-9_-]{1,32}$`)

func checkOptions(t *testing.T, path string, opts []*discordgo.ApplicationCommandOption) {
	t.Helper()
	seenOptional := false
	for _, o := range opts {
		assert.Regexp(t, commandName, o.Name, path)
		assert.NotEmpty(t, o.Description, path+" "+o.Name)
		assert.LessOrEqual(t, len(o.Description), 100, path+" "+o.Name)
		assert.LessOrEqual(t, len(o.Choices), 25, path+" "+o.Name)
		if o.Type != discordgo.ApplicationCommandOptionSubCommand {
			if o.Required {
				assert.False(t, seenOptional, "%s: required option %s after an optional one", path, o.Name)
			} else {
				seenOptional = true
			}
		}
		checkOptions(t, path+" "+o.Name, o.Options)
	}
}

func TestAllCommandsAreValid(t *testing.T) {
	seen := map[string]bool{}
	for _, cmd := range All() {
		assert.Regexp(t, commandName, cmd.Name)
		assert.False(t, seen[cmd.Name], "duplicate command %s", cmd.Name)
		seen[cmd.Name] = true
		assert.NotEmpty(t, cmd.Description, cmd.Name)
		checkOptions(t, cmd.Name, cmd.Options)
	}
	assert.Len(t, seen, 16)
}
