// ABOUTME: Tests for the event registry: typed decode, generic fallback, synthetics
// ABOUTME: Covers unknown names, decode failures, and payload-free control events

package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_KnownName(t *testing.T) {
	raw := json.RawMessage(`{"id":"9","channel_id":"c1","content":"hi","author":{"id":"u1","username":"harper"}}`)

	evt, err := Decode("MESSAGE_CREATE", raw)
	require.NoError(t, err)

	assert.Equal(t, "MESSAGE_CREATE", evt.Name)
	msg, ok := evt.Payload.(*Message)
	require.True(t, ok, "expected *Message, got %T", evt.Payload)
	assert.Equal(t, "hi", msg.Content)
	assert.Equal(t, "harper", msg.Author.Username)
}

func TestDecode_UnknownNameFallsBackToGeneric(t *testing.T) {
	raw := json.RawMessage(`{"shiny":true}`)

	evt, err := Decode("BRAND_NEW_EVENT", raw)
	require.NoError(t, err)

	assert.Equal(t, "BRAND_NEW_EVENT", evt.Name)
	payload, ok := evt.Payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, payload["shiny"])
}

func TestDecode_FailureSurfacesError(t *testing.T) {
	// An array cannot decode into the message schema.
	_, err := Decode("MESSAGE_CREATE", json.RawMessage(`[1,2,3]`))
	assert.Error(t, err)
}

func TestDecode_RoleAndReactionSchemas(t *testing.T) {
	evt, err := Decode("GUILD_ROLE_CREATE", json.RawMessage(`{"guild_id":"g1","role":{"id":"r1","name":"mods"}}`))
	require.NoError(t, err)
	role := evt.Payload.(*GuildRole)
	assert.Equal(t, "g1", role.GuildID)
	assert.Equal(t, "mods", role.Role.Name)

	evt, err = Decode("MESSAGE_REACTION_ADD", json.RawMessage(`{"user_id":"u1","message_id":"m1","emoji":{"name":"👍"}}`))
	require.NoError(t, err)
	reaction := evt.Payload.(*Reaction)
	assert.Equal(t, "👍", reaction.Emoji.Name)
}

func TestDecodeGeneric_ScalarPayload(t *testing.T) {
	evt, err := DecodeGeneric(NameInvalidSession, json.RawMessage(`false`))
	require.NoError(t, err)
	assert.Equal(t, NameInvalidSession, evt.Name)
	assert.Equal(t, false, evt.Payload)
}

func TestDecodeGeneric_EmptyPayload(t *testing.T) {
	evt, err := DecodeGeneric(NameReconnect, nil)
	require.NoError(t, err)
	assert.Nil(t, evt.Payload)
}

func TestSynthetic(t *testing.T) {
	evt := Synthetic(NameResume)
	assert.Equal(t, NameResume, evt.Name)
	assert.Nil(t, evt.Payload)
}

func TestKnown(t *testing.T) {
	assert.True(t, Known("MESSAGE_CREATE"))
	assert.True(t, Known("GUILD_MEMBERS_CHUNK"))
	assert.False(t, Known("NOT_A_REAL_EVENT"))
}
