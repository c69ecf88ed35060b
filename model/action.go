package model

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// ActionType enumerates all moderation actions.
type ActionType string

const (
	ActionBan     ActionType = "Ban"
	ActionSoftban ActionType = "Softban"
	ActionTempban ActionType = "Tempban"
	ActionKick    ActionType = "Kick"
	ActionTimeout ActionType = "Timeout"
	ActionWarn    ActionType = "Warn"
)

// Conjugated returns the action phrase used in notifications,
// e.g. "banned from" or "warned in".
func (a ActionType) Conjugated() string {
	switch a {
	case ActionBan:
		return "banned from"
	case ActionSoftban:
		return "soft-banned from"
	case ActionTempban:
		return "temp-banned from"
	case ActionKick:
		return "kicked from"
	case ActionTimeout:
		return "timed out in"
	case ActionWarn:
		return "warned in"
	}
	return "moderated in"
}

// ActionResult is what command handlers render back to the invoker.
// Platform failures during an action become a failed result rather than an
// error, so the invoking command can always produce a user-facing message.
type ActionResult struct {
	Success     bool
	Title       string
	Description string
	File        *discordgo.File
}

// FailedResult builds a failure result with the standard transient-error hint.
func FailedResult(title string) ActionResult {
	return ActionResult{
		Success:     false,
		Title:       title,
		Description: "This could be due to a configuration or network error. Please try again later.",
	}
}

// HierarchyError signals that the bot's or the moderator's top role does not
// outrank the target's.
type HierarchyError struct {
	// Side is "bot" or "moderator", naming whose hierarchy is violated.
	Side string
}

func (e *HierarchyError) Error() string {
	return fmt.Sprintf("target's top role is higher than the %s's", e.Side)
}

// MissingPermissionError signals the bot lacks a platform permission the
// action requires.
type MissingPermissionError struct {
	Permission string
}

func (e *MissingPermissionError) Error() string {
	return fmt.Sprintf("bot is missing the %s permission", e.Permission)
}

// InvalidActionError signals a malformed action request, e.g. a softban with
// a duration. A correct caller never triggers it.
type InvalidActionError struct {
	Reason string
}

func (e *InvalidActionError) Error() string {
	return e.Reason
}
