// ABOUTME: Closed registry mapping dispatch event names to payload decoders
// ABOUTME: Unknown names fall back to a generic map decode so nothing is dropped

package events

import (
	"encoding/json"
	"fmt"
)

// Synthetic event names published for protocol-control opcodes. They never
// appear as dispatch types on the wire.
const (
	NameResume         = "RESUME"
	NameReconnect      = "RECONNECT"
	NameInvalidSession = "INVALID_SESSION"
)

// Event is one decoded gateway event as delivered to the consumer. Payload
// holds the typed struct for registered names, a map[string]any for unknown
// names, or nil for synthetic control events.
type Event struct {
	Name    string
	Payload any
}

// decodeFunc decodes a raw dispatch payload into its typed form.
type decodeFunc func(json.RawMessage) (any, error)

// typed builds a decoder for a concrete payload struct.
func typed[T any]() decodeFunc {
	return func(raw json.RawMessage) (any, error) {
		var payload T
		if err := json.Unmarshal(raw, &payload); err != nil {
			return nil, err
		}
		return &payload, nil
	}
}

// registry is the closed name -> decoder table, built once at init. Event
// payloads are data definitions only; control flow never depends on them.
var registry = map[string]decodeFunc{
	"READY":   typed[Ready](),
	"RESUMED": typed[Resumed](),

	"MESSAGE_CREATE":              typed[Message](),
	"MESSAGE_UPDATE":              typed[Message](),
	"MESSAGE_DELETE":              typed[MessageDelete](),
	"MESSAGE_DELETE_BULK":         typed[MessageDeleteBulk](),
	"MESSAGE_REACTION_ADD":        typed[Reaction](),
	"MESSAGE_REACTION_REMOVE":     typed[Reaction](),
	"MESSAGE_REACTION_REMOVE_ALL": typed[ReactionRemoveAll](),

	"CHANNEL_CREATE":        typed[Channel](),
	"CHANNEL_UPDATE":        typed[Channel](),
	"CHANNEL_DELETE":        typed[Channel](),
	"CHANNEL_PINS_UPDATE":   typed[ChannelPinsUpdate](),
	"THREAD_CREATE":         typed[Channel](),
	"THREAD_UPDATE":         typed[Channel](),
	"THREAD_DELETE":         typed[Channel](),
	"THREAD_MEMBERS_UPDATE": typed[ThreadMembersUpdate](),

	"GUILD_CREATE":              typed[Guild](),
	"GUILD_UPDATE":              typed[Guild](),
	"GUILD_DELETE":              typed[GuildDelete](),
	"GUILD_BAN_ADD":             typed[GuildBan](),
	"GUILD_BAN_REMOVE":          typed[GuildBan](),
	"GUILD_EMOJIS_UPDATE":       typed[GuildEmojisUpdate](),
	"GUILD_MEMBER_ADD":          typed[Member](),
	"GUILD_MEMBER_UPDATE":       typed[Member](),
	"GUILD_MEMBER_REMOVE":       typed[GuildMemberRemove](),
	"GUILD_MEMBERS_CHUNK":       typed[GuildMembersChunk](),
	"GUILD_ROLE_CREATE":         typed[GuildRole](),
	"GUILD_ROLE_UPDATE":         typed[GuildRole](),
	"GUILD_ROLE_DELETE":         typed[GuildRoleDelete](),
	"GUILD_INTEGRATIONS_UPDATE": typed[IntegrationsUpdate](),

	"PRESENCE_UPDATE": typed[Presence](),
	"TYPING_START":    typed[TypingStart](),
	"USER_UPDATE":     typed[UserUpdate](),

	"VOICE_STATE_UPDATE":  typed[VoiceState](),
	"VOICE_SERVER_UPDATE": typed[VoiceServerUpdate](),

	"WEBHOOKS_UPDATE":    typed[WebhooksUpdate](),
	"INVITE_CREATE":      typed[InviteCreate](),
	"INVITE_DELETE":      typed[InviteDelete](),
	"INTERACTION_CREATE": typed[InteractionCreate](),

	"STAGE_INSTANCE_CREATE": typed[StageInstance](),
	"STAGE_INSTANCE_UPDATE": typed[StageInstance](),
	"STAGE_INSTANCE_DELETE": typed[StageInstance](),
}

// Known reports whether a typed decoder is registered for the event name.
func Known(name string) bool {
	_, ok := registry[name]
	return ok
}

// Decode turns a raw dispatch payload into an Event. Registered names decode
// into their typed struct; unknown names decode generically into a map so the
// event is still delivered rather than dropped.
func Decode(name string, raw json.RawMessage) (Event, error) {
	if decode, ok := registry[name]; ok {
		payload, err := decode(raw)
		if err != nil {
			return Event{}, fmt.Errorf("decoding %s payload: %w", name, err)
		}
		return Event{Name: name, Payload: payload}, nil
	}
	return DecodeGeneric(name, raw)
}

// DecodeGeneric decodes a payload without a schema, yielding a map form.
// Used for unknown dispatch names and for the InvalidSession control payload.
func DecodeGeneric(name string, raw json.RawMessage) (Event, error) {
	var payload any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			return Event{}, fmt.Errorf("decoding %s payload generically: %w", name, err)
		}
	}
	return Event{Name: name, Payload: payload}, nil
}

// Synthetic builds a payload-free control event.
func Synthetic(name string) Event {
	return Event{Name: name}
}
