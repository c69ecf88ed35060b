package handlers

import (
	"bytes"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"moderation-bot/moderation"
	"moderation-bot/utils"

	"github.com/bwmarrin/discordgo"
)

const (
	massbanConfirmPrefix = "massban_confirm:"
	massbanCancelPrefix  = "massban_cancel:"

	// massbanSessionTTL is how long a pending confirmation stays valid.
	massbanSessionTTL = 5 * time.Minute
)

// massbanSession is a matched-but-unconfirmed massban awaiting the invoker's
// confirmation click. Nothing is banned until the gate is passed.
type massbanSession struct {
	GuildID   string
	GuildName string
	InvokerID string
	Reason    string
	Matched   []*discordgo.Member
	CreatedAt time.Time
}

type massbanSessions struct {
	mu      sync.Mutex
	pending map[string]*massbanSession
}

func newMassbanSessions() *massbanSessions {
	return &massbanSessions{pending: make(map[string]*massbanSession)}
}

func (m *massbanSessions) put(token string, session *massbanSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending[token] = session
}

// take removes and returns the session for token, or nil if it is unknown or
// has expired. Taking is atomic, so two racing clicks resolve to one winner.
func (m *massbanSessions) take(token string) *massbanSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.pending[token]
	if !ok {
		return nil
	}
	delete(m.pending, token)
	if time.Since(session.CreatedAt) > massbanSessionTTL {
		return nil
	}
	return session
}

func (h *Handlers) handleMassban(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := mapOptions(i.ApplicationCommandData().Options)

	criteria := moderation.MassbanCriteria{}
	hasCriterion := false
	if opt, ok := opts["regex"]; ok {
		criteria.Regex = opt.StringValue()
		hasCriterion = true
	}
	if opt, ok := opts["similar_to"]; ok {
		criteria.SimilarTo = opt.StringValue()
		hasCriterion = true
	}
	if opt, ok := opts["no_avatar"]; ok && opt.BoolValue() {
		criteria.NoAvatar = true
		hasCriterion = true
	}
	if opt, ok := opts["no_roles"]; ok && opt.BoolValue() {
		criteria.NoRoles = true
		hasCriterion = true
	}
	if opt, ok := opts["created"]; ok {
		criteria.CreatedWithin = time.Duration(opt.IntValue()) * time.Minute
		hasCriterion = true
	}
	if opt, ok := opts["joined"]; ok {
		criteria.JoinedWithin = time.Duration(opt.IntValue()) * time.Minute
		hasCriterion = true
	}

	reason := ""
	if opt, ok := opts["reason"]; ok {
		reason = opt.StringValue()
	}
	dryRun := false
	if opt, ok := opts["show"]; ok {
		dryRun = opt.BoolValue()
	}

	if !h.deferWithSettings(s, i) {
		return
	}

	if opt, ok := opts["joined_before"]; ok {
		anchor := resolveMember(s, i.GuildID, opt.UserValue(s).ID)
		if anchor == nil {
			utils.FollowUpError(s, i.Interaction, "The `joined_before` user is not a member of this server.")
			return
		}
		criteria.JoinedBefore = anchor
		hasCriterion = true
	}
	if opt, ok := opts["joined_after"]; ok {
		anchor := resolveMember(s, i.GuildID, opt.UserValue(s).ID)
		if anchor == nil {
			utils.FollowUpError(s, i.Interaction, "The `joined_after` user is not a member of this server.")
			return
		}
		criteria.JoinedAfter = anchor
		hasCriterion = true
	}

	if !hasCriterion {
		utils.FollowUpError(s, i.Interaction, "You must provide at least one matching criterion.")
		return
	}

	guild, err := s.Guild(i.GuildID)
	if err != nil {
		utils.FollowUpError(s, i.Interaction, "Failed to fetch server information.")
		return
	}
	me := resolveMember(s, i.GuildID, s.State.User.ID)
	if me == nil {
		utils.FollowUpError(s, i.Interaction, "Failed to fetch the bot's own member.")
		return
	}

	predicates, err := moderation.BuildPredicates(guild, me, i.Member.User.ID, criteria, time.Now())
	if err != nil {
		utils.FollowUpError(s, i.Interaction, err.Error())
		return
	}

	members, err := fetchAllMembers(s, i.GuildID)
	if err != nil {
		log.Printf("Massban member fetch in guild %s failed: %v", i.GuildID, err)
		utils.FollowUpError(s, i.Interaction, "Failed to fetch the member list.")
		return
	}

	matched := moderation.MatchMembers(members, predicates)

	if dryRun {
		manifest := moderation.Manifest(guild.Name, matched, time.Now())
		utils.FollowUpFile(s, i.Interaction,
			fmt.Sprintf("🔍 Matched **%d** members. No one has been banned.", len(matched)),
			&discordgo.File{Name: "members_to_ban.txt", ContentType: "text/plain", Reader: bytes.NewReader(manifest)})
		return
	}

	if len(matched) == 0 {
		utils.FollowUpEmbed(s, i.Interaction, &discordgo.MessageEmbed{
			Title:       "🔍 No members matched",
			Description: "No members matched your criteria. Nothing to do.",
			Color:       utils.ColorBlue,
		})
		return
	}

	token := i.ID
	h.massban.put(token, &massbanSession{
		GuildID:   i.GuildID,
		GuildName: guild.Name,
		InvokerID: i.Member.User.ID,
		Reason:    reason,
		Matched:   matched,
		CreatedAt: time.Now(),
	})

	embed := &discordgo.MessageEmbed{
		Title: "⚠️ Confirm massban",
		Description: fmt.Sprintf("You are about to ban **%d** members.\n**Reason:** ```%s```\nThis cannot be undone in bulk. Use the `show` option first if you have not reviewed the matched set.",
			len(matched), utils.FormatReason(reason, 512)),
		Color: utils.ColorWarn,
	}
	embeds := []*discordgo.MessageEmbed{embed}
	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Ban them all",
					Style:    discordgo.DangerButton,
					CustomID: massbanConfirmPrefix + token,
				},
				discordgo.Button{
					Label:    "Cancel",
					Style:    discordgo.SecondaryButton,
					CustomID: massbanCancelPrefix + token,
				},
			},
		},
	}
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds:     &embeds,
		Components: &components,
	}); err != nil {
		log.Printf("Failed to send massban confirmation: %v", err)
		h.massban.take(token)
	}
}

func (h *Handlers) handleMassbanComponent(s *discordgo.Session, i *discordgo.InteractionCreate, customID string) {
	confirm := strings.HasPrefix(customID, massbanConfirmPrefix)
	token := strings.TrimPrefix(strings.TrimPrefix(customID, massbanConfirmPrefix), massbanCancelPrefix)

	h.massban.mu.Lock()
	session, ok := h.massban.pending[token]
	h.massban.mu.Unlock()
	if ok && i.Member != nil && i.Member.User.ID != session.InvokerID {
		utils.SendErrorResponse(s, i, "Only the moderator who started this massban can respond to it.")
		return
	}

	session = h.massban.take(token)
	if session == nil {
		updateComponentMessage(s, i, &discordgo.MessageEmbed{
			Title:       "⌛ Massban expired",
			Description: "This confirmation has expired. Run the command again.",
			Color:       utils.ColorError,
		})
		return
	}

	if !confirm {
		updateComponentMessage(s, i, &discordgo.MessageEmbed{
			Title:       "✅ Massban cancelled",
			Description: "No one has been banned.",
			Color:       utils.ColorGreen,
		})
		return
	}

	// Banning a large batch takes a while; acknowledge first, report after.
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}); err != nil {
		log.Printf("Failed to acknowledge massban confirmation: %v", err)
		return
	}

	result := h.actions.Massban(session.GuildID, session.GuildName, session.Matched, i.Member.User, session.Reason)

	embeds := []*discordgo.MessageEmbed{{
		Title:       "🔨 Massban concluded",
		Description: fmt.Sprintf("Banned **%d/%d** users.", result.Banned, result.Total),
		Color:       utils.ColorError,
	}}
	components := []discordgo.MessageComponent{}
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds:     &embeds,
		Components: &components,
	}); err != nil {
		log.Printf("Failed to report massban result: %v", err)
	}
}

// updateComponentMessage replaces the component message with a bare embed,
// stripping the buttons.
func updateComponentMessage(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: []discordgo.MessageComponent{},
		},
	})
	if err != nil {
		log.Printf("Failed to update component message: %v", err)
	}
}

// fetchAllMembers pages through the guild's full member list.
func fetchAllMembers(s *discordgo.Session, guildID string) ([]*discordgo.Member, error) {
	var members []*discordgo.Member
	after := ""
	for {
		page, err := s.GuildMembers(guildID, after, 1000)
		if err != nil {
			return nil, err
		}
		members = append(members, page...)
		if len(page) < 1000 {
			return members, nil
		}
		after = page[len(page)-1].User.ID
	}
}
