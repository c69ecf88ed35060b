package handlers

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"moderation-bot/moderation"
	"moderation-bot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

func (h *Handlers) handleWhois(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := mapOptions(i.ApplicationCommandData().Options)
	target := opts["user"].UserValue(s)

	if !h.deferWithSettings(s, i) {
		return
	}

	created, _ := discordgo.SnowflakeTimestamp(target.ID)
	fields := []*discordgo.MessageEmbedField{
		{Name: "ID", Value: fmt.Sprintf("`%s`", target.ID), Inline: true},
		{Name: "Created", Value: utils.FormatDate(created), Inline: true},
	}

	member := resolveMember(s, i.GuildID, target.ID)
	if member != nil {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Joined", Value: utils.FormatDate(member.JoinedAt), Inline: true,
		})

		roles := make([]string, 0, len(member.Roles))
		for _, roleID := range member.Roles {
			roles = append(roles, fmt.Sprintf("<@&%s>", roleID))
		}
		rolesValue := "None"
		if len(roles) > 0 {
			rolesValue = utils.Truncate(strings.Join(roles, " "), 1000)
		}
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Roles", Value: rolesValue})

		if until := member.CommunicationDisabledUntil; until != nil && until.After(time.Now()) {
			fields = append(fields, &discordgo.MessageEmbedField{
				Name: "Timed out until", Value: until.UTC().Format(time.RFC1123),
			})
		}
	} else {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Membership", Value: "Not a member of this server", Inline: true,
		})
	}

	warns, err := moderation.GetWarns(h.db, target.ID, i.GuildID)
	if err == nil {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Warns", Value: fmt.Sprintf("`%d`", warns), Inline: true,
		})
	}
	notes, err := moderation.GetNotes(h.db, target.ID, i.GuildID)
	if err == nil {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Journal entries", Value: fmt.Sprintf("`%d`", len(notes)), Inline: true,
		})
	}

	embed := &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("User information: %s", target.Username),
		Color:     utils.ColorBlue,
		Fields:    fields,
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: target.AvatarURL("256")},
	}
	utils.FollowUpEmbed(s, i.Interaction, embed)
}

func (h *Handlers) handleStatus(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		return
	}

	cpuValue := "unavailable"
	if percents, err := cpu.Percent(time.Second, false); err == nil && len(percents) > 0 {
		cpuValue = fmt.Sprintf("%.1f%%", percents[0])
	}

	memValue := "unavailable"
	if vm, err := mem.VirtualMemory(); err == nil {
		memValue = fmt.Sprintf("%.1f%% (%.1f/%.1f GB)",
			vm.UsedPercent,
			float64(vm.Used)/1024/1024/1024,
			float64(vm.Total)/1024/1024/1024)
	}

	uptimeValue := "unavailable"
	if uptime, err := host.Uptime(); err == nil {
		uptimeValue = (time.Duration(uptime) * time.Second).String()
	}

	embed := &discordgo.MessageEmbed{
		Title: "Bot status",
		Color: utils.ColorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "CPU", Value: cpuValue, Inline: true},
			{Name: "Memory", Value: memValue, Inline: true},
			{Name: "Host uptime", Value: uptimeValue, Inline: true},
			{Name: "Goroutines", Value: fmt.Sprintf("%d", runtime.NumGoroutine()), Inline: true},
			{Name: "Servers", Value: fmt.Sprintf("%d", len(s.State.Guilds)), Inline: true},
			{Name: "Latency", Value: s.HeartbeatLatency().Round(time.Millisecond).String(), Inline: true},
		},
	}
	utils.FollowUpEmbed(s, i.Interaction, embed)
}
