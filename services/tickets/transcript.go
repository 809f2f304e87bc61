package tickets

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"community-bot/model"
)

// HTMLArchiver renders a ticket transcript to a sanitized HTML file and,
// when the guild configured a transcripts channel, uploads it there.
type HTMLArchiver struct {
	dir      string
	uploader Uploader
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
	logger   *zap.Logger
}

func NewHTMLArchiver(dir string, uploader Uploader, logger *zap.Logger) *HTMLArchiver {
	return &HTMLArchiver{
		dir:      dir,
		uploader: uploader,
		markdown: goldmark.New(),
		policy:   bluemonday.UGCPolicy(),
		logger:   logger,
	}
}

// Render produces the transcript document.
func (a *HTMLArchiver) Render(t *model.Ticket) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>%s</title></head><body>\n",
		html.EscapeString(t.TicketID))
	fmt.Fprintf(&buf, "<h1>%s: %s</h1>\n", html.EscapeString(t.TicketID), html.EscapeString(t.Subject))
	fmt.Fprintf(&buf, "<p>Category: %s | Opened by %s | Reopened %d time(s)</p>\n",
		html.EscapeString(t.Category), html.EscapeString(t.UserID), t.Metadata.ReopenCount)

	for _, msg := range t.Messages {
		var body bytes.Buffer
		if err := a.markdown.Convert([]byte(msg.Content), &body); err != nil {
			return nil, fmt.Errorf("failed to render message %s: %w", msg.MessageID, err)
		}
		fmt.Fprintf(&buf, "<div class=\"message\"><div class=\"meta\">%s · %s</div>\n",
			html.EscapeString(msg.UserID), msg.Timestamp.UTC().Format(time.RFC3339))
		buf.Write(a.policy.SanitizeBytes(body.Bytes()))
		for _, att := range msg.Attachments {
			fmt.Fprintf(&buf, "<a href=\"%s\">%s</a>\n", html.EscapeString(att.URL), html.EscapeString(att.Name))
		}
		buf.WriteString("</div>\n")
	}
	buf.WriteString("</body></html>\n")
	return buf.Bytes(), nil
}

func (a *HTMLArchiver) fileName(t *model.Ticket) string {
	return fmt.Sprintf("%s-%d.html", t.TicketID, t.Metadata.ReopenCount)
}

func (a *HTMLArchiver) Archive(ctx context.Context, t *model.Ticket, cfg *model.TicketConfig) error {
	doc, err := a.Render(t)
	if err != nil {
		return err
	}

	dir := filepath.Join(a.dir, t.GuildID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create transcript directory: %w", err)
	}
	path := filepath.Join(dir, a.fileName(t))
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	a.logger.Info("transcript archived",
		zap.String("guild_id", t.GuildID), zap.String("ticket_id", t.TicketID), zap.String("path", path))

	if a.uploader == nil || cfg == nil || cfg.Settings.Transcripts.ChannelID == "" {
		return nil
	}
	if err := a.uploader.UploadFile(ctx, cfg.Settings.Transcripts.ChannelID, a.fileName(t), "text/html", bytes.NewReader(doc)); err != nil {
		return fmt.Errorf("failed to upload transcript: %w", err)
	}
	return nil
}
