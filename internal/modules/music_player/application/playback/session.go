// Package playback implements the per-guild playback session that drives the
// queue through voice connection, stream acquisition and the audio player.
package playback

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

// Default timeouts.
const (
	DefaultConnectTimeout = 10 * time.Second
	disconnectTimeout     = 5 * time.Second
)

// StreamAcquirer produces a playable stream for a track.
type StreamAcquirer interface {
	Acquire(ctx context.Context, track *domain.Track) (ports.Stream, error)
}

// Dependencies are the collaborators shared by every session.
type Dependencies struct {
	Connector ports.VoiceConnector
	Acquirer  StreamAcquirer

	// Notifier and Requesters are optional.
	Notifier   ports.NotificationSender
	Requesters ports.RequesterLookup

	ConnectTimeout time.Duration
}

// Resources reports what a session currently holds.
type Resources struct {
	Stream     bool
	Connection bool
}

// SkipResult describes the outcome of a skip.
type SkipResult struct {
	Skipped *domain.Track
	Next    *domain.Track
}

// StartResult describes the outcome of a start request.
type StartResult struct {
	// Started is false when the session was already active or the queue was empty.
	Started bool
	Track   *domain.Track
}

// Session is the playback state machine of one guild. All state transitions
// happen on a single goroutine that consumes the inbox.
type Session struct {
	guildID snowflake.ID
	queue   *domain.GuildQueue
	deps    Dependencies

	ctx    context.Context
	cancel context.CancelFunc
	inbox  chan message
	done   chan struct{}
	wg     sync.WaitGroup

	// Owned by the session goroutine.
	state          domain.SessionState
	generation     uint64
	voiceChannelID snowflake.ID
	textChannelID  snowflake.ID
	conn           ports.VoiceConnection
	connectedAt    time.Time
	player         ports.AudioPlayer
	stream         ports.Stream
	cancelOp       context.CancelFunc

	// Published copy for readers on other goroutines.
	mu        sync.RWMutex
	published domain.SessionState
	resources Resources
}

// NewSession creates a session and starts its goroutine.
func NewSession(guildID snowflake.ID, queue *domain.GuildQueue, deps Dependencies) *Session {
	if deps.ConnectTimeout <= 0 {
		deps.ConnectTimeout = DefaultConnectTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		guildID: guildID,
		queue:   queue,
		deps:    deps,
		ctx:     ctx,
		cancel:  cancel,
		inbox:   make(chan message),
		done:    make(chan struct{}),
		state:   domain.SessionIdle,
	}

	go s.run()
	return s
}

// GuildID returns the guild this session plays in.
func (s *Session) GuildID() snowflake.ID {
	return s.guildID
}

// State returns the current session state.
func (s *Session) State() domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.published
}

// Resources reports whether the session holds a stream or a voice connection.
func (s *Session) Resources() Resources {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.resources
}

// Start begins playing the queue in the given voice channel if the session is idle.
// Notifications go to textChannelID. An active session only updates the text channel.
func (s *Session) Start(ctx context.Context, voiceChannelID, textChannelID snowflake.ID) (StartResult, error) {
	var result StartResult
	err := s.do(ctx, func() error {
		if textChannelID != 0 {
			s.textChannelID = textChannelID
		}
		if s.state != domain.SessionIdle {
			return nil
		}

		next, ok := s.queue.DequeueNext()
		if !ok {
			return nil
		}

		s.voiceChannelID = voiceChannelID
		s.connect()
		result = StartResult{Started: true, Track: next}
		return nil
	})
	return result, err
}

// Pause pauses the playing track.
func (s *Session) Pause(ctx context.Context) error {
	return s.do(ctx, func() error {
		if s.state != domain.SessionPlaying {
			return ErrNotPlaying
		}
		if err := s.queue.SetPaused(); err != nil {
			return fmt.Errorf("pause: %w", err)
		}
		s.player.Pause()
		s.setState(domain.SessionPaused)
		return nil
	})
}

// Resume resumes the paused track.
func (s *Session) Resume(ctx context.Context) error {
	return s.do(ctx, func() error {
		if s.state != domain.SessionPaused {
			return ErrNotPaused
		}
		if err := s.queue.SetResumed(); err != nil {
			return fmt.Errorf("resume: %w", err)
		}
		s.player.Resume()
		s.setState(domain.SessionPlaying)
		return nil
	})
}

// Skip discards the current track and moves on to the next one.
func (s *Session) Skip(ctx context.Context) (SkipResult, error) {
	var result SkipResult
	err := s.do(ctx, func() error {
		if s.state == domain.SessionIdle {
			return ErrNotPlaying
		}

		result.Skipped = s.queue.Current()
		slog.Debug("skipping track", "guild", s.guildID, "state", s.state.String())

		if s.state == domain.SessionConnecting {
			// The in-flight connect acquires whatever is current once it lands.
			next, ok := s.queue.DequeueNext()
			if !ok {
				s.teardown()
				return nil
			}
			result.Next = next
			return nil
		}

		s.releaseStream()
		result.Next = s.advance(false)
		return nil
	})
	return result, err
}

// Stop clears the queue and leaves the voice channel.
func (s *Session) Stop(ctx context.Context) error {
	return s.do(ctx, func() error {
		if s.state == domain.SessionIdle && s.queue.Len() == 0 {
			return ErrNotPlaying
		}

		s.queue.Clear()
		s.teardown()
		return nil
	})
}

// VoiceStateChanged reports the bot's current voice channel in this guild, as
// observed at observedAt. A zero channelID means the bot was disconnected, which
// clears the queue and tears the session down. Observations older than the
// current connection are ignored.
func (s *Session) VoiceStateChanged(channelID snowflake.ID, observedAt time.Time) {
	s.post(voiceStateChanged{channelID: channelID, observedAt: observedAt})
}

// Shutdown releases every resource and stops the session goroutine.
func (s *Session) Shutdown() {
	s.cancel()
	<-s.done
	s.wg.Wait()
}

// do runs fn on the session goroutine and waits for its result.
func (s *Session) do(ctx context.Context, fn func() error) error {
	reply := make(chan error, 1)

	select {
	case s.inbox <- command{fn: fn, reply: reply}:
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post delivers msg to the session goroutine. It returns false once the session
// is shutting down, in which case the caller owns any resource in msg.
func (s *Session) post(msg message) bool {
	select {
	case s.inbox <- msg:
		return true
	case <-s.ctx.Done():
		return false
	}
}

// spawn runs fn on a goroutine tracked by Shutdown.
func (s *Session) spawn(fn func()) {
	s.wg.Go(fn)
}

func (s *Session) run() {
	defer close(s.done)

	for {
		select {
		case <-s.ctx.Done():
			s.teardown()
			s.publish()
			slog.Debug("playback session stopped", "guild", s.guildID)
			return

		case msg := <-s.inbox:
			s.handle(msg)
			s.publish()
		}
	}
}

func (s *Session) handle(msg message) {
	switch m := msg.(type) {
	case command:
		err := m.fn()
		s.publish()
		m.reply <- err
	case connectDone:
		s.handleConnectDone(m)
	case acquireDone:
		s.handleAcquireDone(m)
	case playbackEvent:
		s.handlePlaybackEvent(m)
	case voiceStateChanged:
		s.handleVoiceStateChanged(m)
	}
}

// connect joins the voice channel in the background.
func (s *Session) connect() {
	s.generation++
	generation := s.generation

	ctx, cancel := context.WithTimeout(s.ctx, s.deps.ConnectTimeout)
	s.cancelOp = cancel
	s.setState(domain.SessionConnecting)

	channelID := s.voiceChannelID
	s.spawn(func() {
		defer cancel()

		conn, err := s.deps.Connector.Connect(ctx, s.guildID, channelID)
		if !s.post(connectDone{generation: generation, conn: conn, err: err}) && conn != nil {
			s.disconnect(conn)
		}
	})
}

func (s *Session) handleConnectDone(m connectDone) {
	if m.generation != s.generation {
		if m.conn != nil {
			s.disconnect(m.conn)
		}
		return
	}
	s.cancelOp = nil

	if m.err != nil {
		slog.Warn("failed to join voice channel",
			"guild", s.guildID,
			"channel", s.voiceChannelID,
			"error", m.err,
		)
		s.notifyError("Failed to join the voice channel.")
		s.queue.Clear()
		s.teardown()
		return
	}

	slog.Info("joined voice channel", "guild", s.guildID, "channel", m.conn.ChannelID())
	s.conn = m.conn
	s.connectedAt = time.Now()
	s.player = m.conn.NewPlayer()

	current := s.queue.Current()
	if current == nil {
		s.teardown()
		return
	}
	s.acquire(current)
}

// acquire starts acquiring a stream for track in the background.
func (s *Session) acquire(track *domain.Track) {
	s.generation++
	generation := s.generation

	ctx, cancel := context.WithCancel(s.ctx)
	s.cancelOp = cancel
	s.setState(domain.SessionAcquiring)

	s.spawn(func() {
		defer cancel()

		stream, err := s.deps.Acquirer.Acquire(ctx, track)
		msg := acquireDone{generation: generation, track: track, stream: stream, err: err}
		if !s.post(msg) && stream != nil {
			_ = stream.Close()
		}
	})
}

func (s *Session) handleAcquireDone(m acquireDone) {
	if m.generation != s.generation {
		if m.stream != nil {
			_ = m.stream.Close()
		}
		return
	}
	s.cancelOp = nil

	if m.err != nil {
		slog.Warn("failed to acquire stream", "guild", s.guildID, "track", m.track.Title, "error", m.err)
		s.notifyError(fmt.Sprintf("Could not play **%s**.", m.track.Title))
		s.advance(true)
		return
	}

	s.stream = m.stream
	generation := m.generation

	events := m.stream.Events()
	s.spawn(func() {
		for ev := range events {
			s.post(playbackEvent{generation: generation, event: ev})
		}
	})

	onEvent := func(ev domain.PlaybackEvent) {
		s.post(playbackEvent{generation: generation, event: ev})
	}

	if err := s.player.Play(m.stream, s.queue.Volume(), onEvent); err != nil {
		slog.Error("failed to start player", "guild", s.guildID, "track", m.track.Title, "error", err)
		s.releaseStream()
		s.advance(true)
		return
	}

	slog.Info("playing track", "guild", s.guildID, "track", m.track.Title)
	s.setState(domain.SessionPlaying)
	s.notifyNowPlaying(m.track)
}

func (s *Session) handlePlaybackEvent(m playbackEvent) {
	if m.generation != s.generation {
		slog.Debug("dropping stale playback event",
			"guild", s.guildID,
			"event", m.event.Kind.String(),
		)
		return
	}

	ev := m.event
	switch ev.Kind {
	case domain.EventSubprocessExit:
		if ev.Err != nil {
			slog.Warn("stream subprocess exited", "guild", s.guildID, "error", ev.Err)
		} else {
			slog.Debug("stream subprocess finished", "guild", s.guildID)
		}
		return

	case domain.EventSubprocessCriticalStderr:
		slog.Warn("stream subprocess reported a critical error", "guild", s.guildID, "line", ev.Line)
		return
	}

	if !ev.ShouldAdvanceQueue() {
		return
	}
	if s.state != domain.SessionPlaying && s.state != domain.SessionPaused {
		return
	}

	if ev.Kind == domain.EventPlayerError {
		slog.Error("player failed", "guild", s.guildID, "error", ev.Err)
	}

	s.releaseStream()
	s.advance(true)
}

func (s *Session) handleVoiceStateChanged(m voiceStateChanged) {
	if s.conn == nil || m.observedAt.Before(s.connectedAt) {
		slog.Debug("ignoring voice state change",
			"guild", s.guildID,
			"channel", m.channelID,
			"state", s.state.String(),
		)
		return
	}
	if m.channelID == s.voiceChannelID {
		return
	}

	if m.channelID != 0 {
		// The voice connection follows a move on its own.
		slog.Info("moved to another voice channel",
			"guild", s.guildID,
			"from", s.voiceChannelID,
			"to", m.channelID,
		)
		s.voiceChannelID = m.channelID
		return
	}

	slog.Warn("lost voice connection", "guild", s.guildID, "channel", s.voiceChannelID)
	s.notifyError("Disconnected from the voice channel. The queue was cleared.")
	s.queue.Clear()
	s.teardown()
}

// advance moves to the next pending track, or tears down when there is none.
// It returns the track that will play next.
func (s *Session) advance(natural bool) *domain.Track {
	next, ok := s.queue.DequeueNext()
	if !ok {
		s.teardown()
		if natural {
			s.notifyQueueFinished()
		}
		return nil
	}

	if s.conn == nil {
		s.connect()
		return next
	}
	s.acquire(next)
	return next
}

// releaseStream cancels any in-flight work, closes the stream and stops the player.
// Bumping the generation drops events still on their way from the old stream.
func (s *Session) releaseStream() {
	s.generation++

	if s.cancelOp != nil {
		s.cancelOp()
		s.cancelOp = nil
	}
	if s.stream != nil {
		if err := s.stream.Close(); err != nil {
			slog.Warn("failed to close stream", "guild", s.guildID, "error", err)
		}
		s.stream = nil
	}
	if s.player != nil {
		s.player.Stop()
	}
}

// teardown releases everything and returns to Idle.
func (s *Session) teardown() {
	s.releaseStream()

	if s.conn != nil {
		s.disconnect(s.conn)
		s.conn = nil
		s.player = nil
	}
	s.setState(domain.SessionIdle)
}

func (s *Session) disconnect(conn ports.VoiceConnection) {
	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()

	if err := conn.Disconnect(ctx); err != nil {
		slog.Warn("failed to leave voice channel", "guild", s.guildID, "error", err)
		return
	}
	slog.Info("left voice channel", "guild", s.guildID)
}

func (s *Session) setState(state domain.SessionState) {
	if s.state != state {
		slog.Debug("session state changed",
			"guild", s.guildID,
			"from", s.state.String(),
			"to", state.String(),
		)
	}
	s.state = state
}

func (s *Session) publish() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.published = s.state
	s.resources = Resources{
		Stream:     s.stream != nil,
		Connection: s.conn != nil,
	}
}
