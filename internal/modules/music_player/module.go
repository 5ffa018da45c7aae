package music_player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebot/internal/bot"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/acquisition"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/playback"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/jukebot/internal/modules/music_player/infrastructure"
	"github.com/sglre6355/jukebot/internal/modules/music_player/infrastructure/resolver"
	"github.com/sglre6355/jukebot/internal/modules/music_player/infrastructure/stream"
	"github.com/sglre6355/jukebot/internal/modules/music_player/presentation/discord"
)

const lavalinkConnectTimeout = 10 * time.Second

func init() {
	bot.Register(&MusicPlayerModule{})
}

// Compile-time interface checks.
var _ bot.ConfigurableModule = (*MusicPlayerModule)(nil)

// MusicPlayerModule provides music playback commands.
type MusicPlayerModule struct {
	config          *Config
	commandHandlers *discord.CommandHandlers
	eventHandlers   *discord.EventHandlers

	registry    *playback.Registry
	trackLoader *usecases.TrackLoaderService
	requesters  *infrastructure.DiscordRequesterLookup
	lavalink    *resolver.LavalinkResolver

	// Background sweeper
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Name returns the module name.
func (m *MusicPlayerModule) Name() string {
	return "music_player"
}

// Commands returns the slash commands for this module.
func (m *MusicPlayerModule) Commands() []*discordgo.ApplicationCommand {
	return discord.Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *MusicPlayerModule) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"play":   m.commandHandlers.HandlePlay,
		"pause":  m.commandHandlers.HandlePause,
		"resume": m.commandHandlers.HandleResume,
		"skip":   m.commandHandlers.HandleSkip,
		"stop":   m.commandHandlers.HandleStop,
		"queue":  m.commandHandlers.HandleQueue,
		"volume": m.commandHandlers.HandleVolume,
		"help":   m.commandHandlers.HandleHelp,
	}
}

// EventHandlers returns the event handlers for this module.
func (m *MusicPlayerModule) EventHandlers() []bot.EventHandler {
	return []bot.EventHandler{
		m.eventHandlers.HandleVoiceStateUpdate,
	}
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *MusicPlayerModule) LoadConfig() error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Init initializes the module.
func (m *MusicPlayerModule) Init(deps bot.ModuleDependencies) error {
	if deps.Session == nil || deps.Session.State == nil || deps.Session.State.User == nil {
		return errors.New("music_player requires an open Discord session")
	}
	if m.config == nil {
		if err := m.LoadConfig(); err != nil {
			return err
		}
	}

	botID, err := snowflake.Parse(deps.Session.State.User.ID)
	if err != nil {
		return fmt.Errorf("failed to parse bot user ID: %w", err)
	}

	if err := os.MkdirAll(m.config.TempDir, 0o755); err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}

	strategies, err := stream.NewStrategies(m.config.StreamStrategies, m.config.StreamOptions())
	if err != nil {
		return err
	}
	acquirer := acquisition.NewAcquirer(strategies...)

	// Create resolvers
	m.trackLoader = usecases.NewTrackLoaderService(
		resolver.NewSourceResolvers(
			m.config.ResolverOptions(),
			m.config.SpotifyConfig(),
			m.connectLavalink(botID),
		),
		usecases.TrackLoaderConfig{
			CacheTTL:   m.config.CacheTTL,
			SearchRate: m.config.SearchRate,
		},
	)

	// Create infrastructure
	m.requesters = infrastructure.NewDiscordRequesterLookup(deps.Session)
	m.registry = playback.NewRegistry(
		infrastructure.NewMemoryRepository(),
		playback.Dependencies{
			Connector:      infrastructure.NewDiscordVoiceConnector(deps.Session),
			Acquirer:       acquirer,
			Notifier:       infrastructure.NewNotifier(deps.Session),
			Requesters:     m.requesters,
			ConnectTimeout: m.config.VoiceConnectTimeout,
		},
	)

	// Create services
	sessions := usecases.NewSessionRegistry(m.registry)
	playbackService := usecases.NewPlaybackService(
		sessions,
		infrastructure.NewVoiceStateProvider(deps.Session),
		m.trackLoader,
	)

	// Create handlers
	m.commandHandlers = discord.NewCommandHandlers(playbackService, usecases.NewQueueService(sessions))
	m.eventHandlers = discord.NewEventHandlers(botID, playbackService)

	// Start the temp file sweeper
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	sweeper := m.config.NewSweeper()
	m.wg.Go(func() {
		sweeper.Run(ctx)
	})

	slog.Info("music_player module initialized",
		"strategies", acquirer.Strategies(),
		"temp_dir", m.config.TempDir,
		"spotify", m.config.SpotifyClientID != "",
		"lavalink", m.lavalink != nil,
	)

	return nil
}

// connectLavalink connects to the configured Lavalink node. A missing or
// unreachable node disables Lavalink search.
func (m *MusicPlayerModule) connectLavalink(botID snowflake.ID) ports.TrackResolver {
	if m.config.LavalinkAddress == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), lavalinkConnectTimeout)
	defer cancel()

	lavalink, err := resolver.NewLavalinkResolver(ctx, botID, resolver.LavalinkConfig{
		Address:  m.config.LavalinkAddress,
		Password: m.config.LavalinkPassword,
	})
	if err != nil {
		slog.Warn("failed to connect to Lavalink, continuing without it",
			"address", m.config.LavalinkAddress,
			"error", err,
		)
		return nil
	}

	m.lavalink = lavalink
	return lavalink
}

// Shutdown cleans up module resources.
func (m *MusicPlayerModule) Shutdown() error {
	// Stop the sweeper first
	if m.cancel != nil {
		m.cancel()
	}

	var errs []error
	if m.registry != nil {
		if err := m.registry.Shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playback sessions: %w", err))
		}
	}
	m.wg.Wait()

	if m.trackLoader != nil {
		m.trackLoader.Close()
	}
	if m.requesters != nil {
		m.requesters.Close()
	}
	if m.lavalink != nil {
		m.lavalink.Close()
	}

	slog.Info("music_player module shut down")
	return errors.Join(errs...)
}
