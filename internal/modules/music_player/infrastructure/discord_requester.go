package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/karlseguin/ccache/v3"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
)

const (
	requesterCacheSize = 1000
	requesterCacheTTL  = 10 * time.Minute
)

var _ ports.RequesterLookup = (*DiscordRequesterLookup)(nil)

// DiscordRequesterLookup resolves requesters from guild members.
// Every "Now Playing" embed needs one, so results are cached per guild and user.
type DiscordRequesterLookup struct {
	members memberSource
	cache   *ccache.Cache[ports.Requester]
}

// memberSource is the slice of the Discord session the lookup needs.
type memberSource interface {
	cachedMember(guildID, userID string) (*discordgo.Member, error)
	fetchMember(ctx context.Context, guildID, userID string) (*discordgo.Member, error)
}

type sessionMembers struct {
	session *discordgo.Session
}

func (m sessionMembers) cachedMember(guildID, userID string) (*discordgo.Member, error) {
	return m.session.State.Member(guildID, userID)
}

func (m sessionMembers) fetchMember(ctx context.Context, guildID, userID string) (*discordgo.Member, error) {
	return m.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
}

// NewDiscordRequesterLookup creates a lookup backed by the session's state cache,
// falling back to the REST API.
func NewDiscordRequesterLookup(session *discordgo.Session) *DiscordRequesterLookup {
	return newRequesterLookup(sessionMembers{session: session})
}

func newRequesterLookup(members memberSource) *DiscordRequesterLookup {
	return &DiscordRequesterLookup{
		members: members,
		cache:   ccache.New(ccache.Configure[ports.Requester]().MaxSize(requesterCacheSize)),
	}
}

// LookupRequester returns the display name and avatar of a guild member.
func (l *DiscordRequesterLookup) LookupRequester(
	ctx context.Context,
	guildID, userID snowflake.ID,
) (ports.Requester, error) {
	key := guildID.String() + ":" + userID.String()

	item, err := l.cache.Fetch(key, requesterCacheTTL, func() (ports.Requester, error) {
		member, err := l.member(ctx, guildID.String(), userID.String())
		if err != nil {
			return ports.Requester{}, err
		}
		requester := ports.Requester{Name: memberDisplayName(member)}
		if member.User != nil {
			requester.AvatarURL = member.AvatarURL("")
		}
		return requester, nil
	})
	if err != nil {
		return ports.Requester{}, err
	}
	return item.Value(), nil
}

func (l *DiscordRequesterLookup) member(ctx context.Context, guildID, userID string) (*discordgo.Member, error) {
	if member, err := l.members.cachedMember(guildID, userID); err == nil {
		return member, nil
	}

	member, err := l.members.fetchMember(ctx, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch guild member %s: %w", userID, err)
	}
	return member, nil
}

// Close stops the cache's background worker.
func (l *DiscordRequesterLookup) Close() {
	l.cache.Stop()
}

// memberDisplayName prefers the guild nickname, then the global display name,
// then the username.
func memberDisplayName(member *discordgo.Member) string {
	switch {
	case member.Nick != "":
		return member.Nick
	case member.User == nil:
		return "Unknown user"
	case member.User.GlobalName != "":
		return member.User.GlobalName
	default:
		return member.User.Username
	}
}
