package utils

import (
	"github.com/bwmarrin/discordgo"
)

// rolePosition returns the position of the highest role the member holds.
// The @everyone role sits at position 0, so memberless results stay below
// any hoisted role.
func rolePosition(guild *discordgo.Guild, member *discordgo.Member) int {
	highest := 0
	for _, roleID := range member.Roles {
		for _, role := range guild.Roles {
			if role.ID == roleID && role.Position > highest {
				highest = role.Position
			}
		}
	}
	return highest
}

// IsAbove reports whether a outranks b in the guild's role hierarchy.
// The guild owner outranks everyone.
func IsAbove(guild *discordgo.Guild, a, b *discordgo.Member) bool {
	if a == nil || b == nil {
		return false
	}
	if guild.OwnerID == a.User.ID {
		return true
	}
	if guild.OwnerID == b.User.ID {
		return false
	}
	return rolePosition(guild, a) > rolePosition(guild, b)
}

// allPermissions is the mask granted to owners and administrators.
// discordgo's PermissionAll stops short of the newer permission bits
// (moderate members among them), so it cannot serve as that mask.
const allPermissions = int64(^uint64(0) >> 1)

// GuildPermissions computes the member's guild-level permission set from
// their roles. Administrator implies all permissions.
func GuildPermissions(guild *discordgo.Guild, member *discordgo.Member) int64 {
	if guild.OwnerID == member.User.ID {
		return allPermissions
	}
	var perms int64
	for _, role := range guild.Roles {
		if role.ID == guild.ID { // @everyone
			perms |= role.Permissions
		}
		for _, roleID := range member.Roles {
			if role.ID == roleID {
				perms |= role.Permissions
			}
		}
	}
	if perms&discordgo.PermissionAdministrator != 0 {
		return allPermissions
	}
	return perms
}

// HasGuildPermission reports whether the member holds the given guild-level
// permission.
func HasGuildPermission(guild *discordgo.Guild, member *discordgo.Member, perm int64) bool {
	return GuildPermissions(guild, member)&perm == perm
}

// CanHarm reports whether the actor both outranks the target and holds the
// required permission. This is the gate in front of every punitive mutation.
func CanHarm(guild *discordgo.Guild, actor, target *discordgo.Member, perm int64) bool {
	if actor == nil || target == nil {
		return false
	}
	return HasGuildPermission(guild, actor, perm) && IsAbove(guild, actor, target)
}
