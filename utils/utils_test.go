package utils

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	page, current, total := Paginate(items, 2, 3)
	assert.Equal(t, []int{4, 5, 6}, page)
	assert.Equal(t, 2, current)
	assert.Equal(t, 3, total)

	page, current, _ = Paginate(items, 9, 3)
	assert.Equal(t, []int{7}, page)
	assert.Equal(t, 3, current)

	page, current, total = Paginate([]int{}, 0, 3)
	assert.Empty(t, page)
	assert.Equal(t, 1, current)
	assert.Equal(t, 1, total)
}

func TestCreatePaginationComponents(t *testing.T) {
	assert.Nil(t, CreatePaginationComponents(1, 1, "warnings_page"))

	rows := CreatePaginationComponents(1, 3, "warnings_page", "u1")
	buttons := rows[0].(discordgo.ActionsRow).Components
	prev := buttons[0].(discordgo.Button)
	next := buttons[2].(discordgo.Button)
	assert.True(t, prev.Disabled)
	assert.Equal(t, "warnings_page:2:u1", next.CustomID)
}

func TestCheckPermission(t *testing.T) {
	dev := &discordgo.Member{User: &discordgo.User{ID: "dev"}}
	assert.Equal(t, DeveloperPermission, CheckPermission(dev, []string{"dev"}, ""))

	admin := &discordgo.Member{User: &discordgo.User{ID: "a"}, Permissions: discordgo.PermissionAdministrator}
	assert.Equal(t, AdminPermission, CheckPermission(admin, nil, ""))

	mod := &discordgo.Member{User: &discordgo.User{ID: "m"}, Permissions: discordgo.PermissionModerateMembers}
	assert.Equal(t, ModeratorPermission, CheckPermission(mod, nil, ""))

	support := &discordgo.Member{User: &discordgo.User{ID: "s"}, Roles: []string{"support"}}
	assert.Equal(t, SupportPermission, CheckPermission(support, nil, "support"))
	assert.Equal(t, UserPermission, CheckPermission(support, nil, ""))
	assert.Equal(t, UserPermission, CheckPermission(nil, nil, "support"))
}

func TestHasPermission(t *testing.T) {
	m := &discordgo.Member{Permissions: discordgo.PermissionBanMembers}
	assert.True(t, HasPermission(m, discordgo.PermissionBanMembers))
	assert.False(t, HasPermission(m, discordgo.PermissionManageMessages))
	assert.False(t, HasPermission(nil, discordgo.PermissionBanMembers))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 3))
	assert.Equal(t, "ab…", Truncate("abcd", 3))
	assert.Equal(t, "日本…", Truncate("日本語です", 3))
}

func TestLogEmbed(t *testing.T) {
	e := LogEmbed(Error, "Tickets", "Close", "")
	assert.Equal(t, "ERROR Log", e.Title)
	assert.Equal(t, 15158332, e.Color)
	assert.Equal(t, "-", e.Fields[2].Value)
}

func TestTargetLock(t *testing.T) {
	key := TargetLockKey("warn", "g1", "u1")
	assert.Equal(t, "warn:g1:u1", key)
	defer UnlockTarget(key)

	assert.True(t, TryLockTarget(key, time.Minute))
	assert.False(t, TryLockTarget(key, time.Minute))
	assert.True(t, TryLockTarget(TargetLockKey("ban", "g1", "u1"), time.Minute), "actions lock independently")
	UnlockTarget(TargetLockKey("ban", "g1", "u1"))

	UnlockTarget(key)
	assert.True(t, TryLockTarget(key, time.Minute))
}

func TestTargetLockExpires(t *testing.T) {
	key := TargetLockKey("ban", "g2", "u2")
	defer UnlockTarget(key)
	assert.True(t, TryLockTarget(key, -time.Second))
	assert.True(t, TryLockTarget(key, time.Minute), "an expired lock can be retaken")
}
