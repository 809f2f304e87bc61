package utils

import (
	"slices"

	"github.com/bwmarrin/discordgo"
)

// Permission levels
const (
	DeveloperPermission = "developer"
	AdminPermission     = "admin"
	ModeratorPermission = "moderator"
	SupportPermission   = "support"
	UserPermission      = "user"
)

const moderatorBits = discordgo.PermissionModerateMembers |
	discordgo.PermissionBanMembers |
	discordgo.PermissionKickMembers |
	discordgo.PermissionManageMessages

// HasPermission reports whether the member's resolved permissions include perm.
// Administrators hold every permission.
func HasPermission(member *discordgo.Member, perm int64) bool {
	if member == nil {
		return false
	}
	if member.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}
	return member.Permissions&perm == perm
}

// CheckPermission returns the highest permission level of a member.
// supportRoleID may be empty when the guild has no ticket system.
func CheckPermission(member *discordgo.Member, developerUserIDs []string, supportRoleID string) string {
	if member == nil {
		return UserPermission
	}
	if member.User != nil && slices.Contains(developerUserIDs, member.User.ID) {
		return DeveloperPermission
	}
	if HasPermission(member, discordgo.PermissionManageGuild) {
		return AdminPermission
	}
	if member.Permissions&moderatorBits != 0 {
		return ModeratorPermission
	}
	if supportRoleID != "" && slices.Contains(member.Roles, supportRoleID) {
		return SupportPermission
	}
	return UserPermission
}
