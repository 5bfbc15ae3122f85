// ABOUTME: Payload schema definitions for gateway dispatch events
// ABOUTME: Pure data structs decoded from the raw envelope payload by the registry

package events

// User identifies a platform account.
type User struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	Bot           bool   `json:"bot"`
	Avatar        string `json:"avatar"`
}

// Member is a user's membership in a guild.
type Member struct {
	User     *User    `json:"user"`
	Nick     string   `json:"nick"`
	Roles    []string `json:"roles"`
	JoinedAt string   `json:"joined_at"`
	GuildID  string   `json:"guild_id"`
}

// Ready is the first dispatch after a successful Identify.
type Ready struct {
	Version   int    `json:"v"`
	User      *User  `json:"user"`
	SessionID string `json:"session_id"`
	Guilds    []struct {
		ID          string `json:"id"`
		Unavailable bool   `json:"unavailable"`
	} `json:"guilds"`
}

// Resumed acknowledges a successful session resume.
type Resumed struct{}

// Message is a chat message in a channel.
type Message struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
	GuildID   string `json:"guild_id"`
	Author    *User  `json:"author"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	EditedAt  string `json:"edited_timestamp"`
	Pinned    bool   `json:"pinned"`
	TTS       bool   `json:"tts"`
}

// MessageDelete reports a removed message.
type MessageDelete struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
	GuildID   string `json:"guild_id"`
}

// MessageDeleteBulk reports a batch of removed messages.
type MessageDeleteBulk struct {
	IDs       []string `json:"ids"`
	ChannelID string   `json:"channel_id"`
	GuildID   string   `json:"guild_id"`
}

// Reaction is an emoji reaction added to or removed from a message.
type Reaction struct {
	UserID    string `json:"user_id"`
	MessageID string `json:"message_id"`
	ChannelID string `json:"channel_id"`
	GuildID   string `json:"guild_id"`
	Emoji     Emoji  `json:"emoji"`
}

// ReactionRemoveAll reports that all reactions were cleared from a message.
type ReactionRemoveAll struct {
	MessageID string `json:"message_id"`
	ChannelID string `json:"channel_id"`
	GuildID   string `json:"guild_id"`
}

// Emoji identifies a reaction emoji, custom or unicode.
type Emoji struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Channel is a text, voice, or category channel.
type Channel struct {
	ID       string `json:"id"`
	GuildID  string `json:"guild_id"`
	Name     string `json:"name"`
	Type     int    `json:"type"`
	Topic    string `json:"topic"`
	ParentID string `json:"parent_id"`
	Position int    `json:"position"`
	NSFW     bool   `json:"nsfw"`
}

// ChannelPinsUpdate reports a change to a channel's pinned messages.
type ChannelPinsUpdate struct {
	ChannelID        string `json:"channel_id"`
	GuildID          string `json:"guild_id"`
	LastPinTimestamp string `json:"last_pin_timestamp"`
}

// Guild is a server the client is a member of.
type Guild struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	OwnerID     string    `json:"owner_id"`
	Icon        string    `json:"icon"`
	MemberCount int       `json:"member_count"`
	Unavailable bool      `json:"unavailable"`
	Channels    []Channel `json:"channels"`
	Roles       []Role    `json:"roles"`
}

// GuildDelete reports removal from, or unavailability of, a guild.
type GuildDelete struct {
	ID          string `json:"id"`
	Unavailable bool   `json:"unavailable"`
}

// GuildBan reports a user ban or unban.
type GuildBan struct {
	GuildID string `json:"guild_id"`
	User    *User  `json:"user"`
}

// GuildEmojisUpdate reports a change to a guild's emoji set.
type GuildEmojisUpdate struct {
	GuildID string  `json:"guild_id"`
	Emojis  []Emoji `json:"emojis"`
}

// GuildMemberRemove reports a member leaving or being removed.
type GuildMemberRemove struct {
	GuildID string `json:"guild_id"`
	User    *User  `json:"user"`
}

// GuildMembersChunk is a page of members from a member request.
type GuildMembersChunk struct {
	GuildID    string   `json:"guild_id"`
	Members    []Member `json:"members"`
	ChunkIndex int      `json:"chunk_index"`
	ChunkCount int      `json:"chunk_count"`
}

// Role is a permission role within a guild.
type Role struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Color       int    `json:"color"`
	Position    int    `json:"position"`
	Permissions string `json:"permissions"`
	Managed     bool   `json:"managed"`
	Mentionable bool   `json:"mentionable"`
}

// GuildRole wraps a role change scoped to its guild.
type GuildRole struct {
	GuildID string `json:"guild_id"`
	Role    *Role  `json:"role"`
}

// GuildRoleDelete reports a removed role.
type GuildRoleDelete struct {
	GuildID string `json:"guild_id"`
	RoleID  string `json:"role_id"`
}

// Presence reports a user's status change.
type Presence struct {
	User    *User  `json:"user"`
	GuildID string `json:"guild_id"`
	Status  string `json:"status"`
}

// TypingStart reports a user starting to type in a channel.
type TypingStart struct {
	UserID    string `json:"user_id"`
	ChannelID string `json:"channel_id"`
	GuildID   string `json:"guild_id"`
	Timestamp int64  `json:"timestamp"`
}

// VoiceState reports a user's voice connection state.
type VoiceState struct {
	GuildID   string `json:"guild_id"`
	ChannelID string `json:"channel_id"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	Deaf      bool   `json:"deaf"`
	Mute      bool   `json:"mute"`
}

// VoiceServerUpdate carries voice server connection details.
type VoiceServerUpdate struct {
	Token    string `json:"token"`
	GuildID  string `json:"guild_id"`
	Endpoint string `json:"endpoint"`
}

// WebhooksUpdate reports a change to a channel's webhooks.
type WebhooksUpdate struct {
	GuildID   string `json:"guild_id"`
	ChannelID string `json:"channel_id"`
}

// InviteCreate reports a new invite to a channel.
type InviteCreate struct {
	ChannelID string `json:"channel_id"`
	GuildID   string `json:"guild_id"`
	Code      string `json:"code"`
	Inviter   *User  `json:"inviter"`
	MaxAge    int    `json:"max_age"`
	MaxUses   int    `json:"max_uses"`
	Temporary bool   `json:"temporary"`
}

// InviteDelete reports a revoked invite.
type InviteDelete struct {
	ChannelID string `json:"channel_id"`
	GuildID   string `json:"guild_id"`
	Code      string `json:"code"`
}

// IntegrationsUpdate reports a change to a guild's integrations.
type IntegrationsUpdate struct {
	GuildID string `json:"guild_id"`
}

// UserUpdate reports a change to the client's own user.
type UserUpdate struct {
	User
}

// InteractionCreate reports a slash command or component interaction.
type InteractionCreate struct {
	ID        string `json:"id"`
	Type      int    `json:"type"`
	GuildID   string `json:"guild_id"`
	ChannelID string `json:"channel_id"`
	Token     string  `json:"token"`
	Member    *Member `json:"member"`
}

// ThreadMembersUpdate reports membership changes on a thread.
type ThreadMembersUpdate struct {
	ID          string `json:"id"`
	GuildID     string `json:"guild_id"`
	MemberCount int    `json:"member_count"`
}

// StageInstance is a live stage within a stage channel.
type StageInstance struct {
	ID        string `json:"id"`
	GuildID   string `json:"guild_id"`
	ChannelID string `json:"channel_id"`
	Topic     string `json:"topic"`
}
