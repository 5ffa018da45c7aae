package playback

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
	"github.com/stretchr/testify/require"
)

const (
	testGuildID      = snowflake.ID(1)
	testVoiceChannel = snowflake.ID(10)
	testTextChannel  = snowflake.ID(20)
)

var errAcquire = errors.New("could not play track")

// fakePlayer reports its terminal event asynchronously, like the real player.
type fakePlayer struct {
	mu      sync.Mutex
	onEvent func(domain.PlaybackEvent)
	playing bool
	paused  bool
	volumes []float64
	stops   int
}

func (p *fakePlayer) Play(_ io.Reader, volume float64, onEvent func(domain.PlaybackEvent)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.playing {
		return errors.New("player is already playing")
	}
	p.playing = true
	p.paused = false
	p.onEvent = onEvent
	p.volumes = append(p.volumes, volume)
	return nil
}

func (p *fakePlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = true
}

func (p *fakePlayer) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = false
}

func (p *fakePlayer) Stop() {
	p.mu.Lock()
	p.stops++
	p.mu.Unlock()

	p.end(domain.PlayerIdle())
}

// end finishes the current track with ev, as if the stream drained or failed.
func (p *fakePlayer) end(ev domain.PlaybackEvent) {
	p.mu.Lock()
	if !p.playing {
		p.mu.Unlock()
		return
	}
	p.playing = false
	onEvent := p.onEvent
	p.mu.Unlock()

	go onEvent(ev)
}

func (p *fakePlayer) isPaused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

func (p *fakePlayer) lastVolume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.volumes) == 0 {
		return -1
	}
	return p.volumes[len(p.volumes)-1]
}

type fakeConn struct {
	channelID   snowflake.ID
	player      *fakePlayer
	mu          sync.Mutex
	disconnects int
}

func (c *fakeConn) ChannelID() snowflake.ID { return c.channelID }

func (c *fakeConn) NewPlayer() ports.AudioPlayer { return c.player }

func (c *fakeConn) Disconnect(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnects++
	return nil
}

func (c *fakeConn) disconnectCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disconnects
}

type fakeConnector struct {
	mu    sync.Mutex
	err   error
	gate  chan struct{}
	conns []*fakeConn
}

func (c *fakeConnector) Connect(ctx context.Context, _, channelID snowflake.ID) (ports.VoiceConnection, error) {
	if c.gate != nil {
		select {
		case <-c.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if c.err != nil {
		return nil, c.err
	}

	conn := &fakeConn{channelID: channelID, player: &fakePlayer{}}
	c.mu.Lock()
	c.conns = append(c.conns, conn)
	c.mu.Unlock()
	return conn, nil
}

func (c *fakeConnector) connections() []*fakeConn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*fakeConn(nil), c.conns...)
}

type fakeStream struct {
	io.Reader
	events    chan domain.PlaybackEvent
	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
}

func newFakeStream() *fakeStream {
	return &fakeStream{
		Reader: strings.NewReader(""),
		events: make(chan domain.PlaybackEvent, 1),
	}
}

func (s *fakeStream) Events() <-chan domain.PlaybackEvent { return s.events }

func (s *fakeStream) Handles() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0
	}
	return 1
}

func (s *fakeStream) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.events)
	})
	return nil
}

type fakeAcquirer struct {
	mu      sync.Mutex
	fail    map[string]bool
	calls   []string
	streams []*fakeStream
}

func (a *fakeAcquirer) Acquire(_ context.Context, track *domain.Track) (ports.Stream, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.calls = append(a.calls, track.Title)
	if a.fail[track.Title] {
		return nil, errAcquire
	}
	s := newFakeStream()
	a.streams = append(a.streams, s)
	return s, nil
}

func (a *fakeAcquirer) acquired() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.calls...)
}

func (a *fakeAcquirer) openHandles() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, s := range a.streams {
		n += s.Handles()
	}
	return n
}

type fakeNotifier struct {
	mu          sync.Mutex
	nowPlaying  []string
	errors      []string
	queueFinish int
}

func (n *fakeNotifier) SendNowPlaying(_ snowflake.ID, info *ports.NowPlayingInfo) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nowPlaying = append(n.nowPlaying, info.Title)
	return nil
}

func (n *fakeNotifier) SendError(_ snowflake.ID, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, message)
	return nil
}

func (n *fakeNotifier) SendQueueFinished(snowflake.ID) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.queueFinish++
	return nil
}

func (n *fakeNotifier) errorMessages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.errors...)
}

func (n *fakeNotifier) finished() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.queueFinish
}

type fakeRepository struct {
	mu     sync.Mutex
	queues map[snowflake.ID]*domain.GuildQueue
}

func (r *fakeRepository) Get(guildID snowflake.ID) *domain.GuildQueue {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queues[guildID]
}

func (r *fakeRepository) GetOrCreate(guildID snowflake.ID) *domain.GuildQueue {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.queues == nil {
		r.queues = make(map[snowflake.ID]*domain.GuildQueue)
	}
	q, ok := r.queues[guildID]
	if !ok {
		q = domain.NewGuildQueue(guildID)
		r.queues[guildID] = q
	}
	return q
}

type harness struct {
	queue     *domain.GuildQueue
	session   *Session
	connector *fakeConnector
	acquirer  *fakeAcquirer
	notifier  *fakeNotifier
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		queue:     domain.NewGuildQueue(testGuildID),
		connector: &fakeConnector{},
		acquirer:  &fakeAcquirer{fail: map[string]bool{}},
		notifier:  &fakeNotifier{},
	}
	return h
}

// start creates the session. Connector and acquirer settings must be made before.
func (h *harness) start() *Session {
	h.session = NewSession(testGuildID, h.queue, Dependencies{
		Connector:      h.connector,
		Acquirer:       h.acquirer,
		Notifier:       h.notifier,
		ConnectTimeout: time.Second,
	})
	return h.session
}

func (h *harness) enqueue(t *testing.T, titles ...string) {
	t.Helper()
	for _, title := range titles {
		_, err := h.queue.Enqueue(domain.NewTrack(
			title,
			"https://www.youtube.com/watch?v="+title,
			time.Minute,
			"",
			domain.TrackSourceYouTube,
			"",
		))
		require.NoError(t, err)
	}
}

// player returns the player of the only connection made so far.
func (h *harness) player(t *testing.T) *fakePlayer {
	t.Helper()
	conns := h.connector.connections()
	require.Len(t, conns, 1)
	return conns[0].player
}

func (h *harness) waitPlaying(t *testing.T, title string) {
	t.Helper()
	require.Eventually(t, func() bool {
		current := h.queue.Current()
		return h.session.State() == domain.SessionPlaying && current != nil && current.Title == title
	}, 2*time.Second, 5*time.Millisecond, "expected %q to be playing", title)
}

func (h *harness) waitState(t *testing.T, state domain.SessionState) {
	t.Helper()
	require.Eventually(t, func() bool {
		return h.session.State() == state
	}, 2*time.Second, 5*time.Millisecond, "expected state %s", state)
}
