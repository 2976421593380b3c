package main

import (
	"net"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/teltonika-gw/gateway/gwconfig"
	"github.com/teltonika-gw/gateway/metrics"
	"github.com/teltonika-gw/gateway/registry"
	"github.com/teltonika-gw/gateway/session"
)

// acceptor owns the device-facing listening socket. It accepts
// connections until closed, rejecting over-cap connections with no
// reply, and spawns one session per accepted socket.
type acceptor struct {
	ln       net.Listener
	cfg      gwconfig.Config
	reg      *registry.Registry
	cb       session.Callbacks
	metrics  *metrics.Metrics
	log      *zap.Logger
	active   int32
}

func newAcceptor(cfg gwconfig.Config, reg *registry.Registry, cb session.Callbacks, m *metrics.Metrics, log *zap.Logger) (*acceptor, error) {
	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return nil, err
	}
	return &acceptor{ln: ln, cfg: cfg, reg: reg, cb: cb, metrics: m, log: log}, nil
}

// serve accepts connections until the listener is closed by Close.
func (a *acceptor) serve() {
	for {
		conn, err := a.ln.Accept()
		if err != nil {
			return
		}

		if atomic.LoadInt32(&a.active) >= int32(a.cfg.MaxConnections) {
			conn.Close()
			continue
		}
		atomic.AddInt32(&a.active, 1)

		go a.handle(conn)
	}
}

// handle runs one accepted connection's handshake and, on success, its
// session lifetime. It keeps the active-connection count accurate in
// both outcomes: a session that never authenticates is never handed
// an OnDisconnected callback, so the decrement has to happen here.
func (a *acceptor) handle(conn net.Conn) {
	opts := session.Options{
		ReadIdleTimeout:  a.cfg.ReadIdleTimeout,
		WriteTimeout:     a.cfg.WriteTimeout,
		CanAdapterFamily: a.cfg.CanAdapterFamily,
	}

	var authenticated bool
	cb := a.cb
	innerAuthenticated := cb.OnAuthenticated
	cb.OnAuthenticated = func(imei string) {
		authenticated = true
		if innerAuthenticated != nil {
			innerAuthenticated(imei)
		}
	}
	innerDisconnected := cb.OnDisconnected
	cb.OnDisconnected = func(imei string) {
		atomic.AddInt32(&a.active, -1)
		if innerDisconnected != nil {
			innerDisconnected(imei)
		}
	}

	s := session.New(conn, a.reg, opts, cb, a.metrics, a.log)
	s.Start()
	if !authenticated {
		atomic.AddInt32(&a.active, -1)
	}
}

func (a *acceptor) Close() error {
	return a.ln.Close()
}
