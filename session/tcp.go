// Package session implements the per-connection state machine: the
// IMEI handshake, the AVL record stream, and the Codec 12 command
// channel, each device connection running its own instance bound to
// one TCP socket.
package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/teltonika-gw/gateway/frame"
	"github.com/teltonika-gw/gateway/iodict"
	"github.com/teltonika-gw/gateway/metrics"
	"github.com/teltonika-gw/gateway/normalize"
	"github.com/teltonika-gw/gateway/registry"
)

// State is the session's position in its lifecycle.
type State int32

const (
	AwaitingImei State = iota
	Authenticated
	Closed
)

var (
	ErrBadImeiLength = errors.New("session: imei length out of range")
	ErrSessionClosed = errors.New("session: closed")
)

const maxImeiLength = 15

// Callbacks wires a session to the rest of the gateway without the
// session package importing any of them directly.
type Callbacks struct {
	// OnAuthenticated fires once, right after the IMEI handshake
	// succeeds and the session has registered itself.
	OnAuthenticated func(imei string)

	// OnRecord fires once per decoded AVL record, in receipt order.
	OnRecord func(imei string, rec normalize.Record)

	// OnCommandResponse fires for every Codec 12 response frame.
	OnCommandResponse func(imei string, responseText string)

	// OnDisconnected fires once, after the session has deregistered.
	OnDisconnected func(imei string)
}

// Options bounds the timeouts and decoding conventions a session
// applies; it is the subset of gwconfig.Config a session needs.
type Options struct {
	ReadIdleTimeout  time.Duration
	WriteTimeout     time.Duration
	CanAdapterFamily iodict.CanAdapterFamily
}

type inboundEvent struct {
	batch    frame.Batch
	respText string
	isResp   bool
	err      error
}

// Session is one device connection. It exclusively owns conn for its
// lifetime; registry only ever holds a non-owning Handle to it.
type Session struct {
	conn net.Conn
	opts Options
	reg  *registry.Registry
	cb   Callbacks
	m    *metrics.Metrics
	log  *zap.Logger

	imei  string
	state int32 // atomic State

	recv      chan inboundEvent
	writeCh   chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

// New constructs a session bound to conn, recording FramesRejected
// against m whenever an inbound frame is dropped for a protocol error.
// Call Start to begin the handshake and run loop.
func New(conn net.Conn, reg *registry.Registry, opts Options, cb Callbacks, m *metrics.Metrics, log *zap.Logger) *Session {
	if opts.ReadIdleTimeout == 0 {
		opts.ReadIdleTimeout = 120 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 30 * time.Second
	}
	if opts.CanAdapterFamily == "" {
		opts.CanAdapterFamily = iodict.FamilyFMB
	}
	return &Session{
		conn:    conn,
		opts:    opts,
		reg:     reg,
		cb:      cb,
		m:       m,
		log:     log,
		recv:    make(chan inboundEvent, 8),
		writeCh: make(chan []byte, 8),
		closed:  make(chan struct{}),
	}
}

// State returns the session's current lifecycle state.
func (s *Session) State() State { return State(atomic.LoadInt32(&s.state)) }

// IMEI returns the authenticated device identifier, or "" before the
// handshake completes.
func (s *Session) IMEI() string { return s.imei }

// RemoteAddr honors registry.Handle.
func (s *Session) RemoteAddr() string { return s.conn.RemoteAddr().String() }

// Start performs the IMEI handshake synchronously; on success it
// spawns the send/recv/run goroutine trio and returns immediately. On
// handshake failure the connection is closed and Start returns.
func (s *Session) Start() {
	imei, ok := s.handshake()
	if !ok {
		s.conn.Close()
		return
	}
	s.imei = imei
	atomic.StoreInt32(&s.state, int32(Authenticated))

	s.reg.Insert(imei, s, s.RemoteAddr())
	if s.cb.OnAuthenticated != nil {
		s.cb.OnAuthenticated(imei)
	}

	go s.sendLoop()
	go s.recvLoop()
	go s.run()
}

func (s *Session) handshake() (string, bool) {
	s.conn.SetReadDeadline(time.Now().Add(s.opts.ReadIdleTimeout))

	var lenBuf [2]byte
	if _, err := io.ReadFull(s.conn, lenBuf[:]); err != nil {
		return "", false
	}
	n := binary.BigEndian.Uint16(lenBuf[:])
	if n == 0 || n > maxImeiLength {
		s.writeByte(0x00)
		return "", false
	}

	idBuf := make([]byte, n)
	if _, err := io.ReadFull(s.conn, idBuf); err != nil {
		return "", false
	}

	if !s.writeByte(0x01) {
		return "", false
	}
	return string(idBuf), true
}

func (s *Session) writeByte(b byte) bool {
	s.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
	_, err := s.conn.Write([]byte{b})
	return err == nil
}

// recvLoop reads and decodes one frame at a time, handing each result
// to run via s.recv. It never blocks forever trying to deliver once
// the session has closed.
func (s *Session) recvLoop() {
	defer close(s.recv)
	for {
		s.conn.SetReadDeadline(time.Now().Add(s.opts.ReadIdleTimeout))
		payload, err := frame.ReadPayload(s.conn)
		if err != nil {
			s.deliver(inboundEvent{err: err})
			return
		}

		codecID, err := frame.CodecOf(payload)
		if err != nil {
			s.deliver(inboundEvent{err: err})
			return
		}

		if codecID == frame.CodecID12 {
			text, err := frame.DecodeCommandResponse(payload)
			if err != nil {
				s.deliver(inboundEvent{err: err})
				return
			}
			s.deliver(inboundEvent{respText: text, isResp: true})
			continue
		}

		batch, err := frame.DecodeBatch(payload)
		if err != nil {
			s.deliver(inboundEvent{err: err})
			return
		}
		s.deliver(inboundEvent{batch: batch})
	}
}

func (s *Session) deliver(ev inboundEvent) {
	select {
	case s.recv <- ev:
	case <-s.closed:
	}
}

// sendLoop serializes every outbound write (ACKs and commands) onto
// the socket, honoring the write timeout per write.
func (s *Session) sendLoop() {
	for {
		select {
		case buf := <-s.writeCh:
			s.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
			if _, err := s.conn.Write(buf); err != nil {
				s.Close("write error: " + err.Error())
				return
			}
		case <-s.closed:
			return
		}
	}
}

// run is the session's state machine: it consumes decoded frames,
// emits ACKs, and routes command responses, until the connection
// closes or a protocol error is seen.
func (s *Session) run() {
	defer s.teardown()

	for {
		select {
		case ev, ok := <-s.recv:
			if !ok {
				return
			}
			if ev.err != nil {
				if errors.Is(ev.err, io.EOF) {
					return // peer closed cleanly between frames
				}
				s.m.FramesRejected.Inc()
				if s.log != nil {
					s.log.Warn("closing session on protocol error",
						zap.String("imei", s.imei), zap.Error(ev.err))
				}
				return
			}
			if ev.isResp {
				if s.cb.OnCommandResponse != nil {
					s.cb.OnCommandResponse(s.imei, ev.respText)
				}
				continue
			}
			s.handleBatch(ev.batch)

		case <-s.closed:
			return
		}
	}
}

func (s *Session) handleBatch(b frame.Batch) {
	for _, rec := range b.Records {
		if s.cb.OnRecord != nil {
			s.cb.OnRecord(s.imei, normalize.Normalize(rec, s.opts.CanAdapterFamily))
		}
	}
	s.reg.Touch(s.imei)

	var ack bytes.Buffer
	frame.WriteAck(&ack, len(b.Records))
	select {
	case s.writeCh <- ack.Bytes():
	case <-s.closed:
	}
}

// SendCommand frames text as a Codec 12 command and queues it for
// delivery on this session's socket. It does not wait for a device
// response; correlation happens in package command.
func (s *Session) SendCommand(text string) error {
	var buf bytes.Buffer
	if err := frame.WriteFrame(&buf, frame.EncodeCommand(text)); err != nil {
		return err
	}
	select {
	case s.writeCh <- buf.Bytes():
		return nil
	case <-s.closed:
		return ErrSessionClosed
	}
}

// Close idempotently tears the session down. It honors
// registry.Handle so a registry can close a superseded session.
func (s *Session) Close(reason string) {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.conn.Close()
		if s.log != nil {
			s.log.Info("session closed", zap.String("imei", s.imei), zap.String("reason", reason))
		}
	})
}

func (s *Session) teardown() {
	atomic.StoreInt32(&s.state, int32(Closed))
	s.Close("session loop exited")
	s.reg.RemoveIfSelf(s.imei, s)
	if s.cb.OnDisconnected != nil {
		s.cb.OnDisconnected(s.imei)
	}
}
