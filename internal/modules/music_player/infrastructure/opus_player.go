package infrastructure

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
	"gopkg.in/hraban/opus.v2"
)

const (
	opusBitrate = 128000
	// maxOpusPacket is the largest packet a single 20ms stereo frame can encode to.
	maxOpusPacket = ports.PCMFrameSize * ports.PCMChannels * 2
)

// ErrPlayerBusy is returned when Play is called while a previous track is still streaming.
var ErrPlayerBusy = errors.New("player is already playing")

// frameEncoder encodes one PCM frame into an Opus packet.
type frameEncoder interface {
	Encode(pcm []int16, data []byte) (int, error)
}

// Ensure OpusPlayer implements ports.AudioPlayer.
var _ ports.AudioPlayer = (*OpusPlayer)(nil)

// OpusPlayer encodes PCM into Opus packets and sends them to a voice connection.
type OpusPlayer struct {
	send       chan<- []byte
	speaking   func(bool) error
	newEncoder func() (frameEncoder, error)

	mu      sync.Mutex
	paused  bool
	resumed chan struct{}
	stop    chan struct{}
	stopped bool
	done    chan struct{}
}

// NewOpusPlayer creates an OpusPlayer that writes packets to send.
// speaking is called with true before the first packet and false after the last.
func NewOpusPlayer(send chan<- []byte, speaking func(bool) error) *OpusPlayer {
	return newOpusPlayer(send, speaking, newOpusEncoder)
}

func newOpusPlayer(
	send chan<- []byte,
	speaking func(bool) error,
	newEncoder func() (frameEncoder, error),
) *OpusPlayer {
	return &OpusPlayer{
		send:       send,
		speaking:   speaking,
		newEncoder: newEncoder,
	}
}

func newOpusEncoder() (frameEncoder, error) {
	enc, err := opus.NewEncoder(ports.PCMSampleRate, ports.PCMChannels, opus.AppAudio)
	if err != nil {
		return nil, err
	}
	if err := enc.SetBitrate(opusBitrate); err != nil {
		return nil, err
	}
	return enc, nil
}

// Play starts streaming pcm in the background.
func (p *OpusPlayer) Play(pcm io.Reader, volume float64, onEvent func(domain.PlaybackEvent)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done != nil {
		select {
		case <-p.done:
		default:
			return ErrPlayerBusy
		}
	}

	enc, err := p.newEncoder()
	if err != nil {
		return fmt.Errorf("create opus encoder: %w", err)
	}

	p.paused = false
	p.resumed = nil
	p.stopped = false
	p.stop = make(chan struct{})
	p.done = make(chan struct{})

	go p.run(pcm, enc, min(max(volume, 0), 1), onEvent, p.stop, p.done)
	return nil
}

func (p *OpusPlayer) run(
	pcm io.Reader,
	enc frameEncoder,
	volume float64,
	onEvent func(domain.PlaybackEvent),
	stop <-chan struct{},
	done chan<- struct{},
) {
	err := p.stream(pcm, enc, volume, stop)

	p.mu.Lock()
	stopped := p.stopped
	p.mu.Unlock()

	// Signal completion before reporting so Stop never waits on the callback.
	close(done)

	if err != nil && !stopped {
		onEvent(domain.PlayerError(err))
		return
	}
	onEvent(domain.PlayerIdle())
}

func (p *OpusPlayer) stream(pcm io.Reader, enc frameEncoder, volume float64, stop <-chan struct{}) error {
	if p.speaking != nil {
		_ = p.speaking(true)
		defer func() { _ = p.speaking(false) }()
	}

	frame := make([]int16, ports.PCMFrameSize*ports.PCMChannels)
	for {
		if resumed := p.pauseGate(); resumed != nil {
			select {
			case <-resumed:
			case <-stop:
				return nil
			}
		}

		select {
		case <-stop:
			return nil
		default:
		}

		if err := binary.Read(pcm, binary.LittleEndian, frame); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return fmt.Errorf("read pcm: %w", err)
		}

		applyVolume(frame, volume)

		packet := make([]byte, maxOpusPacket)
		n, err := enc.Encode(frame, packet)
		if err != nil {
			return fmt.Errorf("encode opus: %w", err)
		}

		select {
		case p.send <- packet[:n]:
		case <-stop:
			return nil
		}
	}
}

// pauseGate returns a channel to wait on while paused, or nil.
func (p *OpusPlayer) pauseGate() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.paused {
		return nil
	}
	return p.resumed
}

// Pause suspends sending audio until Resume is called.
func (p *OpusPlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.paused {
		return
	}
	p.paused = true
	p.resumed = make(chan struct{})
}

// Resume continues a paused playback.
func (p *OpusPlayer) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.paused {
		return
	}
	p.paused = false
	close(p.resumed)
}

// Stop halts playback and waits for the streaming goroutine to exit.
// A read blocked on the PCM source only returns once the source is closed.
func (p *OpusPlayer) Stop() {
	p.mu.Lock()
	done := p.done
	if done == nil {
		p.mu.Unlock()
		return
	}
	if !p.stopped {
		p.stopped = true
		close(p.stop)
	}
	p.mu.Unlock()

	<-done
}

// applyVolume scales samples in place.
func applyVolume(frame []int16, volume float64) {
	if volume == 1 {
		return
	}
	for i, s := range frame {
		v := math.Round(float64(s) * volume)
		frame[i] = int16(min(max(v, math.MinInt16), math.MaxInt16))
	}
}
