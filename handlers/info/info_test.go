package info

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"community-bot/model"
)

func TestFormatAge(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"under a day", 5 * time.Hour, "Less than a day"},
		{"one day", day, "1 day"},
		{"days", 12 * day, "12 days"},
		{"one month", 30 * day, "1 month"},
		{"months and days", 65 * day, "2 months, 5 days"},
		{"year month day", 396 * day, "1 year, 1 month, 1 day"},
		{"years", 730 * day, "2 years"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAge(tt.d))
		})
	}
}

func TestKeyPermissions(t *testing.T) {
	tests := []struct {
		name  string
		perms int64
		want  string
	}{
		{"none", discordgo.PermissionSendMessages, "No key permissions"},
		{"single", discordgo.PermissionBanMembers, "🔨 Ban Members"},
		{"ordered", discordgo.PermissionKickMembers | discordgo.PermissionAdministrator, "👑 Administrator\n👢 Kick Members"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KeyPermissions(tt.perms))
		})
	}
}

func TestJoinPosition(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	members := []*discordgo.Member{
		{User: &discordgo.User{ID: "c"}, JoinedAt: base.Add(3 * time.Hour)},
		{User: &discordgo.User{ID: "a"}, JoinedAt: base},
		{JoinedAt: base.Add(time.Minute)},
		{User: &discordgo.User{ID: "b"}, JoinedAt: base.Add(2 * time.Hour)},
	}

	assert.Equal(t, 1, JoinPosition(members, "a"))
	assert.Equal(t, 3, JoinPosition(members, "b"))
	assert.Equal(t, 4, JoinPosition(members, "c"))
	assert.Equal(t, 0, JoinPosition(members, "missing"))
	assert.Equal(t, "c", members[0].User.ID, "input order is left alone")
}

func TestRolesValue(t *testing.T) {
	t.Run("no roles", func(t *testing.T) {
		value, n := RolesValue([]*discordgo.Role{{ID: "r1"}}, nil)
		assert.Equal(t, "No roles", value)
		assert.Zero(t, n)
	})

	t.Run("highest first", func(t *testing.T) {
		guild := []*discordgo.Role{
			{ID: "low", Position: 1},
			{ID: "high", Position: 9},
			{ID: "other", Position: 5},
		}
		value, n := RolesValue(guild, []string{"low", "high"})
		assert.Equal(t, "<@&high>, <@&low>", value)
		assert.Equal(t, 2, n)
	})

	t.Run("caps listed roles", func(t *testing.T) {
		var guild []*discordgo.Role
		var held []string
		for n := range 18 {
			id := fmt.Sprintf("r%d", n)
			guild = append(guild, &discordgo.Role{ID: id, Position: n})
			held = append(held, id)
		}
		value, n := RolesValue(guild, held)
		assert.Equal(t, 18, n)
		assert.True(t, strings.HasPrefix(value, "<@&r17>, <@&r16>"))
		assert.True(t, strings.HasSuffix(value, " and 3 more..."))
		assert.Equal(t, maxListedRoles, strings.Count(value, "<@&"))
	})
}

func TestPresenceValue(t *testing.T) {
	assert.Empty(t, PresenceValue(nil))

	assert.Equal(t, "**Status:** 🟡 Idle", PresenceValue(&discordgo.Presence{Status: discordgo.StatusIdle}))

	got := PresenceValue(&discordgo.Presence{
		Status: discordgo.StatusDoNotDisturb,
		Activities: []*discordgo.Activity{
			{Type: discordgo.ActivityTypeGame, Name: "Chess"},
			{Type: discordgo.ActivityTypeCustom, State: "busy"},
			{Type: discordgo.ActivityTypeListening, Name: "Spotify"},
		},
	})
	assert.Equal(t, "**Status:** 🔴 Do Not Disturb\n**Activities:**\n🎮 Playing Chess\n👤 Custom Status: busy\n🎵 Listening to Spotify", got)
}

func TestProfileEmbed(t *testing.T) {
	user := &discordgo.User{ID: "80351110224678912", Username: "nelly"}
	created, err := discordgo.SnowflakeTimestamp(user.ID)
	require.NoError(t, err)
	now := created.Add(400 * day)

	t.Run("not a member", func(t *testing.T) {
		embed := ProfileEmbed(Profile{User: user}, now)
		require.Len(t, embed.Fields, 1)
		assert.Equal(t, "User Information - nelly", embed.Author.Name)
		assert.Contains(t, embed.Fields[0].Value, "**Account Age:** 1 year, 1 month, 5 days")
		assert.Contains(t, embed.Fields[0].Value, "**Bot Account:** No")
	})

	t.Run("member", func(t *testing.T) {
		until := now.Add(time.Hour)
		embed := ProfileEmbed(Profile{
			User: user,
			Member: &discordgo.Member{
				JoinedAt:                   now.Add(-3 * day),
				Roles:                      []string{"mod"},
				CommunicationDisabledUntil: &until,
			},
			Color:        0x123456,
			JoinPosition: 7,
			Permissions:  discordgo.PermissionManageMessages,
			GuildRoles:   []*discordgo.Role{{ID: "mod", Position: 2}},
			Presence:     &discordgo.Presence{Status: discordgo.StatusOnline},
		}, now)

		require.Len(t, embed.Fields, 5)
		assert.Equal(t, 0x123456, embed.Color)
		member := embed.Fields[1].Value
		assert.Contains(t, member, "**Nickname:** None")
		assert.Contains(t, member, "**Join Position:** 7")
		assert.Contains(t, member, "**Server Member For:** 3 days")
		assert.Contains(t, member, "**Timed Out:** Yes")
		assert.Equal(t, "👑 Roles [1]", embed.Fields[2].Name)
		assert.Equal(t, "<@&mod>", embed.Fields[2].Value)
		assert.Equal(t, "📝 Manage Messages", embed.Fields[3].Value)
		assert.Equal(t, "**Status:** 🟢 Online", embed.Fields[4].Value)
	})

	t.Run("unknown join position and no presence", func(t *testing.T) {
		embed := ProfileEmbed(Profile{User: user, Member: &discordgo.Member{JoinedAt: now}}, now)
		require.Len(t, embed.Fields, 4)
		assert.Contains(t, embed.Fields[1].Value, "**Join Position:** Unknown")
		assert.Contains(t, embed.Fields[1].Value, "**Timed Out:** No")
		assert.Equal(t, "No roles", embed.Fields[2].Value)
	})
}

func TestWarningsEmbed(t *testing.T) {
	user := &discordgo.User{ID: "u1", Username: "nelly"}

	tests := []struct {
		name      string
		list      []model.Warning
		points    int
		color     int
		desc      string
		hasFields bool
	}{
		{
			name:  "clean record",
			color: 0x00ff00,
			desc:  "This user has no warnings! 🎉",
		},
		{
			name:      "below any threshold",
			list:      []model.Warning{{Reason: "spam", Level: model.LevelMinor, Points: 1}},
			points:    1,
			color:     0xff0000,
			desc:      "Total Warning Points: 1\nSuggested Action: None",
			hasFields: true,
		},
		{
			name: "mute suggested",
			list: []model.Warning{
				{Reason: "spam", Level: model.LevelMinor, Points: 1},
				{Reason: "insults", Level: model.LevelModerate, Points: 2},
			},
			points:    3,
			color:     0xff0000,
			desc:      "Total Warning Points: 3\nSuggested Action: mute (1h0m0s)",
			hasFields: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embed := WarningsEmbed(user, tt.list, tt.points)
			assert.Equal(t, "Warning History - nelly", embed.Title)
			assert.Equal(t, tt.color, embed.Color)
			assert.Equal(t, tt.desc, embed.Description)
			if !tt.hasFields {
				assert.Empty(t, embed.Fields)
				return
			}
			require.Len(t, embed.Fields, 1)
			assert.Contains(t, embed.Fields[0].Value, "**1.** Level: Minor\nReason: spam")
			assert.LessOrEqual(t, len([]rune(embed.Fields[0].Value)), 1024)
		})
	}
}

func TestWhoisIDs(t *testing.T) {
	rows := WhoisButtons("owner", "target", true)
	require.Len(t, rows, 1)
	buttons := rows[0].(discordgo.ActionsRow).Components
	require.Len(t, buttons, 3)

	views := []string{viewAvatar, viewBanner, viewWarnings}
	for n, c := range buttons {
		btn := c.(discordgo.Button)
		assert.True(t, btn.Disabled)
		assert.True(t, IsWhoisID(btn.CustomID))

		view, owner, target, err := parseWhoisID(btn.CustomID)
		require.NoError(t, err)
		assert.Equal(t, views[n], view)
		assert.Equal(t, "owner", owner)
		assert.Equal(t, "target", target)
	}

	for _, bad := range []string{"whois:avatar:owner", "whois:profile:o:t", "tod:avatar:o:t"} {
		_, _, _, err := parseWhoisID(bad)
		assert.Error(t, err, bad)
	}
	assert.False(t, IsWhoisID("warnpage:1"))
}
