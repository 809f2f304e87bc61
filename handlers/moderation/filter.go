package moderation

import (
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Purge message types.
const (
	PurgeAll    = "ALL"
	PurgeText   = "TEXT"
	PurgeEmbeds = "EMBEDS"
	PurgeFiles  = "FILES"
	PurgeLinks  = "LINKS"
	PurgeBots   = "BOTS"
)

// Discord refuses to bulk delete messages older than two weeks.
const bulkDeleteMaxAge = 14 * 24 * time.Hour

var linkPattern = regexp.MustCompile(`https?://\S+`)

// PurgeFilter selects the messages a purge removes.
type PurgeFilter struct {
	Amount   int
	Type     string
	UserID   string
	Contains string
}

func hasLink(content string) bool {
	return linkPattern.MatchString(content)
}

func (f PurgeFilter) matches(m *discordgo.Message) bool {
	if m.Author == nil {
		return false
	}
	if f.UserID != "" && m.Author.ID != f.UserID {
		return false
	}
	if f.Contains != "" && !strings.Contains(strings.ToLower(m.Content), strings.ToLower(f.Contains)) {
		return false
	}
	switch f.Type {
	case PurgeText:
		return len(m.Embeds) == 0 && len(m.Attachments) == 0 && !hasLink(m.Content)
	case PurgeEmbeds:
		return len(m.Embeds) > 0
	case PurgeFiles:
		return len(m.Attachments) > 0
	case PurgeLinks:
		return hasLink(m.Content)
	case PurgeBots:
		return m.Author.Bot
	default:
		return true
	}
}

// SelectMessages returns the IDs of up to f.Amount matching messages, in the
// order given, and how many matches were skipped for being too old.
func SelectMessages(msgs []*discordgo.Message, f PurgeFilter, now time.Time) (ids []string, tooOld int) {
	for _, m := range msgs {
		if len(ids) >= f.Amount {
			break
		}
		if !f.matches(m) {
			continue
		}
		if now.Sub(m.Timestamp) >= bulkDeleteMaxAge {
			tooOld++
			continue
		}
		ids = append(ids, m.ID)
	}
	return ids, tooOld
}
