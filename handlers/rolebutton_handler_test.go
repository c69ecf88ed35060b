package handlers

import (
	"fmt"
	"testing"

	"moderation-bot/model"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testButton(entryID int64) discordgo.Button {
	return buildButton(model.RoleButton{EntryID: entryID, RoleID: "r", Label: "Join", Style: "Green"})
}

func TestAppendButtonFillsRowsThenOverflows(t *testing.T) {
	var components []discordgo.MessageComponent
	var err error

	for i := 0; i < maxButtonsPerRow+1; i++ {
		components, err = appendButton(components, testButton(int64(i)))
		require.NoError(t, err)
	}

	require.Len(t, components, 2, "the sixth button opens a second row")
	firstRow, ok := asActionsRow(components[0])
	require.True(t, ok)
	assert.Len(t, firstRow.Components, maxButtonsPerRow)
	secondRow, ok := asActionsRow(components[1])
	require.True(t, ok)
	assert.Len(t, secondRow.Components, 1)
}

func TestAppendButtonRejectsFullMessage(t *testing.T) {
	var components []discordgo.MessageComponent
	var err error

	for i := 0; i < maxComponentRows*maxButtonsPerRow; i++ {
		components, err = appendButton(components, testButton(int64(i)))
		require.NoError(t, err)
	}

	_, err = appendButton(components, testButton(99))
	assert.Error(t, err)
}

func TestRemoveButtonDropsEmptyRows(t *testing.T) {
	target := buildButton(model.RoleButton{EntryID: 1, RoleID: "r"})
	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{target}},
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{testButton(2)}},
	}

	remaining := removeButton(components, target.CustomID)
	require.Len(t, remaining, 1, "a row left empty is dropped entirely")

	row, ok := asActionsRow(remaining[0])
	require.True(t, ok)
	require.Len(t, row.Components, 1)
}

func TestParseEmoji(t *testing.T) {
	custom := parseEmoji("<:blobwave:123456>")
	require.NotNil(t, custom)
	assert.Equal(t, "blobwave", custom.Name)
	assert.Equal(t, "123456", custom.ID)
	assert.False(t, custom.Animated)

	animated := parseEmoji("<a:party:789>")
	require.NotNil(t, animated)
	assert.True(t, animated.Animated)

	unicode := parseEmoji("👍")
	require.NotNil(t, unicode)
	assert.Equal(t, "👍", unicode.Name)
	assert.Empty(t, unicode.ID)
}

func TestBuildButtonDefaultsStyle(t *testing.T) {
	button := buildButton(model.RoleButton{EntryID: 1, RoleID: "r", Style: "Chartreuse"})
	assert.Equal(t, discordgo.PrimaryButton, button.Style)
	assert.Equal(t, fmt.Sprintf("%s:1:r", model.RoleButtonPrefix), button.CustomID)
}
