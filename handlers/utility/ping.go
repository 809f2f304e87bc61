package utility

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"

	"community-bot/bot"
	"community-bot/utils"
)

// RuntimeStats is what /ping reports besides latency.
type RuntimeStats struct {
	Platform   string
	Kernel     string
	CPUCount   int
	CPUPercent float64
	MemPercent float64
	MemUsedMB  uint64
	MemTotalMB uint64
	Goroutines int
	Guilds     int
	Uptime     time.Duration
	Heartbeat  time.Duration
	Roundtrip  time.Duration
}

// CollectRuntimeStats samples host and process stats. Samples that fail are
// left zero.
func CollectRuntimeStats(ctx context.Context, logger *zap.Logger) RuntimeStats {
	st := RuntimeStats{Goroutines: runtime.NumGoroutine()}
	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		st.CPUCount = n
	} else {
		logger.Debug("cpu count unavailable", zap.Error(err))
	}
	if pct, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pct) > 0 {
		st.CPUPercent = pct[0]
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		st.MemPercent = vm.UsedPercent
		st.MemUsedMB = vm.Used / 1024 / 1024
		st.MemTotalMB = vm.Total / 1024 / 1024
	} else {
		logger.Debug("memory stats unavailable", zap.Error(err))
	}
	if info, err := host.InfoWithContext(ctx); err == nil {
		st.Platform = fmt.Sprintf("%s %s", info.Platform, info.PlatformVersion)
		st.Kernel = info.KernelVersion
		st.Uptime = time.Duration(info.Uptime) * time.Second
	} else {
		logger.Debug("host info unavailable", zap.Error(err))
	}
	return st
}

func orUnknown(s string) string {
	if s == "" || s == " " {
		return "unknown"
	}
	return s
}

// PingEmbed renders latency and runtime stats.
func PingEmbed(st RuntimeStats, now time.Time) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "🏓 Pong!",
		Color: 0x00ff00,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "⏱️ Bot Latency", Value: fmt.Sprintf("%dms", st.Roundtrip.Milliseconds()), Inline: true},
			{Name: "📡 API Latency", Value: fmt.Sprintf("%dms", st.Heartbeat.Milliseconds()), Inline: true},
			{Name: "🌍 Servers", Value: fmt.Sprintf("%d", st.Guilds), Inline: true},
			{Name: "💻 OS", Value: orUnknown(st.Platform), Inline: true},
			{Name: "🔧 Kernel", Value: orUnknown(st.Kernel), Inline: true},
			{Name: "🐹 Go", Value: runtime.Version(), Inline: true},
			{Name: "🔼 CPUs", Value: fmt.Sprintf("%d", st.CPUCount), Inline: true},
			{Name: "🔥 CPU Usage", Value: fmt.Sprintf("%.1f%%", st.CPUPercent), Inline: true},
			{Name: "🧠 Memory", Value: fmt.Sprintf("%.1f%% (%d MB / %d MB)", st.MemPercent, st.MemUsedMB, st.MemTotalMB), Inline: true},
			{Name: "🚀 Goroutines", Value: fmt.Sprintf("%d", st.Goroutines), Inline: true},
			{Name: "⌛ Host Uptime", Value: st.Uptime.Truncate(time.Minute).String(), Inline: true},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "System monitor"},
		Timestamp: now.Format(time.RFC3339),
	}
}

// HandlePingCommand replies with gateway latency and host stats.
func HandlePingCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	start := time.Now()
	if err := utils.DeferResponse(s, i, false); err != nil {
		b.Logger.Warn("failed to defer ping", zap.Error(err))
		return
	}
	ctx, cancel := b.RequestContext()
	defer cancel()

	st := CollectRuntimeStats(ctx, b.Logger)
	st.Roundtrip = time.Since(start)
	st.Heartbeat = s.HeartbeatLatency()
	st.Guilds = len(s.State.Guilds)

	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{PingEmbed(st, time.Now())},
	})
	if err != nil {
		b.Logger.Warn("failed to send ping", zap.Error(err))
	}
}
