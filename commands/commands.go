package commands

import (
	"github.com/bwmarrin/discordgo"
)

var (
	permBan      int64 = discordgo.PermissionBanMembers
	permKick     int64 = discordgo.PermissionKickMembers
	permModerate int64 = discordgo.PermissionModerateMembers
	permAudit    int64 = discordgo.PermissionViewAuditLogs
	permMessages int64 = discordgo.PermissionManageMessages
	permRoles    int64 = discordgo.PermissionManageRoles
)

// Generate returns the full slash command set of the bot.
func Generate() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:                     "warn",
			Description:              "Warn a user. This gets added to their journal and their warn counter is incremented.",
			DefaultMemberPermissions: &permAudit,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "The user to be warned.",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "The reason for this warn.",
				},
			},
		},
		{
			Name:                     "warns",
			Description:              "Manage warnings.",
			DefaultMemberPermissions: &permAudit,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "List the current warning count for a user.",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "The user to show the warning count for.",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "clear",
					Description: "Clear warnings for the specified user.",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "The user to clear warnings for.",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "reason",
							Description: "The reason for clearing this user's warns.",
						},
					},
				},
			},
		},
		{
			Name:                     "timeout",
			Description:              "Timeout a user, supports durations longer than 28 days.",
			DefaultMemberPermissions: &permModerate,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "The user to time out.",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "duration",
					Description: "The duration to time the user out for. Example: '30m', '12h', '40d'.",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "The reason for timing out this user.",
				},
			},
		},
		{
			Name:                     "timeouts",
			Description:              "Manage timeouts.",
			DefaultMemberPermissions: &permModerate,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Remove timeout from a user.",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "The user to remove the timeout from.",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "reason",
							Description: "The reason for removing the timeout.",
						},
					},
				},
			},
		},
		{
			Name:                     "ban",
			Description:              "Bans a user from the server. Optionally specify a duration to make this a tempban.",
			DefaultMemberPermissions: &permBan,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "The user to be banned.",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "The reason why this ban was performed.",
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "duration",
					Description: "If specified, how long the ban should last. Example: '12h', '7d'.",
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "days_to_delete",
					Description: "The number of days of messages to delete. Defaults to 0.",
					MinValue:    float64Ptr(0),
					MaxValue:    7,
				},
			},
		},
		{
			Name:                     "softban",
			Description:              "Ban then immediately unban a user, purging their recent messages.",
			DefaultMemberPermissions: &permBan,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "The user to be softbanned.",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "The reason why this softban was performed.",
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "days_to_delete",
					Description: "The number of days of messages to delete. Defaults to 1.",
					MinValue:    float64Ptr(0),
					MaxValue:    7,
				},
			},
		},
		{
			Name:                     "unban",
			Description:              "Unban a user who was previously banned.",
			DefaultMemberPermissions: &permBan,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "The user to be unbanned.",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "The reason for the unban.",
				},
			},
		},
		{
			Name:                     "kick",
			Description:              "Kick a user from this server.",
			DefaultMemberPermissions: &permKick,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "The user to be kicked.",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "The reason why this kick was performed.",
				},
			},
		},
		{
			Name:                     "purge",
			Description:              "Purge multiple messages in this channel.",
			DefaultMemberPermissions: &permMessages,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "count",
					Description: "The amount of messages to delete.",
					Required:    true,
					MinValue:    float64Ptr(1),
					MaxValue:    100,
				},
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Only delete messages authored by this user.",
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "regex",
					Description: "Only delete messages that match this regular expression.",
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "startswith",
					Description: "Only delete messages that start with the specified text.",
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "endswith",
					Description: "Only delete messages that end with the specified text.",
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "notext",
					Description: "Only delete messages that do not contain text.",
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "onlytext",
					Description: "Only delete messages that exclusively contain text.",
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "attachments",
					Description: "Only delete messages that contain files & images.",
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "embeds",
					Description: "Only delete messages that contain embeds.",
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "links",
					Description: "Only delete messages that contain links.",
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "invites",
					Description: "Only delete messages that contain server invites.",
				},
			},
		},
		{
			Name:                     "journal",
			Description:              "Access and manage the moderation journal.",
			DefaultMemberPermissions: &permAudit,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "get",
					Description: "Retrieve the journal for the specified user.",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "The user to retrieve the journal for.",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Add a new journal entry for the specified user.",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "The user to add a journal entry for.",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "note",
							Description: "The journal note to add.",
							Required:    true,
						},
					},
				},
			},
		},
		{
			Name:                     "massban",
			Description:              "Ban a large number of users based on a set of criteria. Useful for handling raids.",
			DefaultMemberPermissions: &permBan,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "regex",
					Description: "A regular expression to match usernames against.",
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "similar_to",
					Description: "Only match users whose name closely resembles this one.",
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "no_avatar",
					Description: "Only match users without an avatar.",
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "no_roles",
					Description: "Only match users without a role.",
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "created",
					Description: "Only match users whose account was created this many minutes ago or less.",
					MinValue:    float64Ptr(1),
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "joined",
					Description: "Only match users that joined this server this many minutes ago or less.",
					MinValue:    float64Ptr(1),
				},
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "joined_before",
					Description: "Only match users that joined before this user.",
				},
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "joined_after",
					Description: "Only match users that joined after this user.",
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "Reason to ban all matched users with.",
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "show",
					Description: "Dry-run: only show the users that would have been banned.",
				},
			},
		},
		{
			Name:                     "rolebutton",
			Description:              "Commands relating to rolebuttons.",
			DefaultMemberPermissions: &permRoles,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Add a new rolebutton.",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "message_link",
							Description: "Link to a message authored by the bot to attach the button to.",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "role",
							Description: "The role that should be handed out by the button.",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "emoji",
							Description: "The emoji that should appear on the button.",
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "label",
							Description: "The label that should appear on the button.",
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "style",
							Description: "The style of the button.",
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "Blurple", Value: "Blurple"},
								{Name: "Grey", Value: "Grey"},
								{Name: "Green", Value: "Green"},
								{Name: "Red", Value: "Red"},
							},
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "List all registered rolebuttons on this server.",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "delete",
					Description: "Delete a rolebutton.",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "button_id",
							Description: "The ID of the rolebutton to delete. You can get this via /rolebutton list.",
							Required:    true,
						},
					},
				},
			},
		},
		{
			Name:        "whois",
			Description: "Show user information about the specified user.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "The user to show information about.",
					Required:    true,
				},
			},
		},
		{
			Name:        "status",
			Description: "Show information about the bot and its host.",
		},
	}
}

func float64Ptr(v float64) *float64 {
	return &v
}
