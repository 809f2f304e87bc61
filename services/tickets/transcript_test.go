package tickets

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"community-bot/model"
)

func transcriptTicket() *model.Ticket {
	return &model.Ticket{
		TicketID: "TICKET-0007",
		GuildID:  guildID,
		UserID:   userID,
		Category: "GENERAL",
		Subject:  "<b>help</b>",
		Messages: []model.TicketMessage{
			{MessageID: "1", UserID: userID, Content: "**bold** <script>alert(1)</script>", Timestamp: time.Unix(0, 0)},
			{MessageID: "2", UserID: staffID, Content: "see file", Attachments: []model.TicketAttachment{{URL: "https://cdn.example/a.png", Name: "a.png"}}},
		},
		Metadata: model.TicketMetadata{ReopenCount: 2},
	}
}

func TestHTMLArchiver_RenderSanitizes(t *testing.T) {
	a := NewHTMLArchiver(t.TempDir(), nil, zap.NewNop())

	doc, err := a.Render(transcriptTicket())
	require.NoError(t, err)

	html := string(doc)
	assert.Contains(t, html, "<strong>bold</strong>")
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;b&gt;help&lt;/b&gt;")
	assert.Contains(t, html, `<a href="https://cdn.example/a.png">a.png</a>`)
	assert.Contains(t, html, "Reopened 2 time(s)")
}

func TestHTMLArchiver_ArchiveWritesAndUploads(t *testing.T) {
	dir := t.TempDir()
	up := &fakeUploader{}
	a := NewHTMLArchiver(dir, up, zap.NewNop())
	cfg := &model.TicketConfig{Settings: model.TicketSettings{Transcripts: model.TranscriptSettings{Enabled: true, ChannelID: "transcripts"}}}

	require.NoError(t, a.Archive(context.Background(), transcriptTicket(), cfg))

	written, err := os.ReadFile(filepath.Join(dir, guildID, "TICKET-0007-2.html"))
	require.NoError(t, err)
	assert.Equal(t, "transcripts", up.channelID)
	assert.Equal(t, "TICKET-0007-2.html", up.name)
	assert.Equal(t, "text/html", up.contentType)
	assert.Equal(t, written, up.body)
}

func TestHTMLArchiver_NoUploadWithoutChannel(t *testing.T) {
	up := &fakeUploader{}
	a := NewHTMLArchiver(t.TempDir(), up, zap.NewNop())

	require.NoError(t, a.Archive(context.Background(), transcriptTicket(), &model.TicketConfig{}))

	assert.Empty(t, up.name)
}
