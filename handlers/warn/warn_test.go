package warn

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"community-bot/model"
	"community-bot/services/warnings"
)

func TestExportWarnings(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	expired := now.Add(-time.Hour)
	list := []model.Warning{
		{ID: "w1", UserID: "u1", ModeratorID: "m1", Level: model.LevelMajor, Points: 3, Reason: "spam", Active: true, CreatedAt: now.Add(-48 * time.Hour)},
		{ID: "w2", UserID: "u2", ModeratorID: "m1", Level: model.LevelMinor, Points: 1, Reason: "caps", Active: true, ExpiresAt: &expired, CreatedAt: now.Add(-72 * time.Hour)},
	}

	buf, err := ExportWarnings(list, now)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, exportColumns, rows[0])
	assert.Equal(t, []string{"w1", "u1", "m1", "MAJOR", "3", "spam"}, rows[1][:6])
	assert.Equal(t, "TRUE", rows[1][8])
	assert.Equal(t, "FALSE", rows[2][8], "expired warnings do not count")
	assert.Equal(t, expired.Format(time.DateTime), rows[2][10])
}

func TestExportWarnings_Empty(t *testing.T) {
	buf, err := ExportWarnings(nil, time.Now())
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestParsePageID(t *testing.T) {
	page, user, active, err := parsePageID("warnings_page:3:u42:false")
	require.NoError(t, err)
	assert.Equal(t, 3, page)
	assert.Equal(t, "u42", user)
	assert.False(t, active)

	for _, bad := range []string{"warnings_page:x:u1:true", "warnings_page:1:u1", "other:1:u1:true", "warnings_page:1:u1:maybe"} {
		_, _, _, err := parsePageID(bad)
		assert.Error(t, err, bad)
	}

	assert.True(t, IsPageID("warnings_page:2:u1:true"))
	assert.False(t, IsPageID("warnings_page_indicator"))
}

func TestPromptEmbed(t *testing.T) {
	embed := PromptEmbed(&discordgo.User{ID: "u1"}, model.LevelModerate, "rude", 2)
	values := map[string]string{}
	for _, f := range embed.Fields {
		values[f.Name] = f.Value
	}
	assert.Equal(t, "2 → 4", values["Points"])
	assert.Equal(t, "mute (1h0m0s)", values["Suggested Action"])
	assert.Contains(t, embed.Description, "<@u1>")
}

func TestHistoryEmbed(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	list := []model.Warning{
		{ID: "w1", Level: model.LevelMinor, Points: 1, Reason: "caps", Active: false, ModeratorID: "m1", CreatedAt: now},
	}
	embed := HistoryEmbed("u1", list, 0, 1, 1, false, now)
	assert.Equal(t, "📋 Warning History", embed.Title)
	require.Len(t, embed.Fields, 1)
	assert.Contains(t, embed.Fields[0].Value, "*Removed*")
	assert.Contains(t, embed.Fields[0].Name, "`w1`")

	empty := HistoryEmbed("u1", nil, 0, 1, 1, true, now)
	assert.Contains(t, empty.Description, "No warnings found.")
}

func TestStatsEmbed(t *testing.T) {
	stats := []warnings.DayStat{
		{Day: "2024-06-01", Level: model.LevelMinor, Count: 2},
		{Day: "2024-06-01", Level: model.LevelMajor, Count: 1},
		{Day: "2024-05-31", Level: model.LevelMinor, Count: 1},
	}
	top := []warnings.UserSummary{{UserID: "u1", TotalWarnings: 2, TotalPoints: 4}}
	embed := StatsEmbed(7, stats, top)
	assert.Contains(t, embed.Description, "**4** warnings in the last 7 days")
	assert.Contains(t, embed.Fields[0].Value, "Minor: **3**")
	assert.Contains(t, embed.Fields[1].Value, "`2024-06-01` 3")
	assert.Contains(t, embed.Fields[2].Value, "1. <@u1> · 4 pts (2 warnings)")
}
