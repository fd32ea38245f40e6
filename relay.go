package main

import (
	"context"
	"errors"
	"io"
	"net"
	"runtime"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/megafyk/go-xjrelay/ringbuf"
)

const (
	spinBudget  = 64                    // Gosched polls before sleeping
	minIdle     = 50 * time.Microsecond // first sleep after the spin budget
	maxIdle     = 2 * time.Millisecond  // sleep ceiling while a ring stays idle
	dialTimeout = 10 * time.Second
)

// relay accepts clients and pipes each one to the upstream address.
type relay struct {
	cfg      *config
	upMetric *ringbuf.Metrics
	dnMetric *ringbuf.Metrics
	sessions atomic.Uint64
}

func newRelay(cfg *config, reg prometheus.Registerer) (*relay, error) {
	r := &relay{cfg: cfg}
	if reg == nil {
		return r, nil
	}
	var err error
	if r.upMetric, err = ringbuf.NewMetrics(reg, "upstream"); err != nil {
		return nil, err
	}
	if r.dnMetric, err = ringbuf.NewMetrics(reg, "downstream"); err != nil {
		return nil, err
	}
	return r, nil
}

// serve runs the accept loop until ctx is cancelled or ln fails.
func (r *relay) serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		closeListener(ln)
	}()

	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		conn1, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Err(err).Msgf("failed to accept connection to %s", ln.Addr())
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.handle(ctx, conn1)
		}()
	}
}

func (r *relay) handle(ctx context.Context, conn1 net.Conn) {
	dialer := net.Dialer{Timeout: dialTimeout}
	conn2, err := dialer.DialContext(ctx, "tcp", r.cfg.Upstream)
	if err != nil {
		log.Err(err).Msgf("failed to create connection to %s", r.cfg.Upstream)
		closeConn(conn1)
		return
	}
	id := r.sessions.Add(1)
	logger := log.With().Uint64("session", id).Logger()
	logger.Info().Msgf("start bounce %s <-> %s", conn1.RemoteAddr(), conn2.RemoteAddr())

	stop := context.AfterFunc(ctx, func() {
		closeConn(conn1)
		closeConn(conn2)
	})
	defer stop()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		r.bounce(logger, conn1, conn2, "upstream", r.upMetric)
	}()
	go func() {
		defer wg.Done()
		r.bounce(logger, conn2, conn1, "downstream", r.dnMetric)
	}()
	wg.Wait()

	closeConn(conn1)
	closeConn(conn2)
	logger.Info().Msgf("end bounce %s <-> %s", conn1.RemoteAddr(), conn2.RemoteAddr())
}

// bounce moves src to dst with the configured strategy and half-closes dst
// once src is exhausted.
func (r *relay) bounce(logger zerolog.Logger, src, dst net.Conn, dir string, m *ringbuf.Metrics) {
	var (
		n   int64
		err error
	)
	switch r.cfg.Mode {
	case modeCopy:
		n, err = bounceCopy(src, dst)
	case modeSplice:
		n, err = bounceSplice(src, dst)
	default:
		var hooks []ringbuf.Hooks
		if m != nil {
			hooks = append(hooks, m)
		}
		if logger.GetLevel() <= zerolog.TraceLevel && zerolog.GlobalLevel() <= zerolog.TraceLevel {
			hooks = append(hooks, ringbuf.NewLogHooks(logger.With().Str("ring", dir).Logger()))
		}
		n, err = bounceRing(src, dst, r.cfg.RingSize, ringbuf.WithHooks(ringbuf.MultiHooks(hooks...)))
	}
	if err != nil && !isNetConnClosedErr(err) {
		logger.Err(err).Msgf("failed to relay %s %s -> %s", dir, src.RemoteAddr(), dst.RemoteAddr())
	}
	closeWrite(logger, dst)
	logger.Debug().Int64("bytes", n).Msgf("%s direction finished", dir)
}

// bounceRing streams src into dst through a byte ring: a fill goroutine reads
// src into the ring while the calling goroutine drains the ring into dst.
// It returns once src reached EOF and every byte was written, or on the
// first error.
func bounceRing(src io.Reader, dst io.Writer, size int, opts ...ringbuf.Option) (int64, error) {
	s, err := ringbuf.New[byte](size, opts...)
	if err != nil {
		return 0, err
	}
	prod, cons, err := s.Split()
	if err != nil {
		return 0, err
	}

	var (
		eof     atomic.Bool
		abort   atomic.Bool
		readErr error
	)
	go func() {
		defer eof.Store(true)
		var b backoff
		for !abort.Load() {
			if prod.IsFull() {
				b.wait()
				continue
			}
			n, err := ringbuf.ReadFrom(prod, src)
			if err != nil {
				if !errors.Is(err, io.EOF) {
					readErr = err
				}
				return
			}
			if n > 0 {
				b.reset()
			} else {
				b.wait()
			}
		}
	}()

	var (
		total int64
		b     backoff
	)
	for {
		if cons.IsEmpty() {
			if eof.Load() {
				if cons.IsEmpty() {
					return total, readErr
				}
				continue
			}
			b.wait()
			continue
		}
		n, err := ringbuf.WriteTo(cons, dst)
		total += int64(n)
		if err != nil {
			abort.Store(true)
			// the consumer moves here so bytes published after the abort
			// are released too
			go func() {
				var b backoff
				for !eof.Load() {
					b.wait()
				}
				cons.Clear()
			}()
			return total, err
		}
		b.reset()
	}
}

// bounce between src and dst use default copy
func bounceCopy(src io.Reader, dst io.Writer) (int64, error) {
	return io.Copy(dst, src)
}

// backoff is the caller-side idle policy for polling a ring.
type backoff struct {
	spins int
	idle  time.Duration
}

func (b *backoff) wait() {
	if b.spins < spinBudget {
		b.spins++
		runtime.Gosched()
		return
	}
	if b.idle == 0 {
		b.idle = minIdle
	}
	time.Sleep(b.idle)
	if b.idle < maxIdle {
		b.idle *= 2
	}
}

func (b *backoff) reset() {
	b.spins = 0
	b.idle = 0
}

// close socket connection
func closeConn(conn net.Conn) {
	err := conn.Close()
	if err != nil && !isNetConnClosedErr(err) {
		log.Err(err).Msgf("failed to close connection %s", conn.RemoteAddr())
	}
}

// half-close dst so the peer sees EOF while the other direction drains
func closeWrite(logger zerolog.Logger, conn net.Conn) {
	cw, ok := conn.(interface{ CloseWrite() error })
	if !ok {
		return
	}
	if err := cw.CloseWrite(); err != nil && !isNetConnClosedErr(err) {
		logger.Err(err).Msgf("failed to half-close connection %s", conn.RemoteAddr())
	}
}

// check is error close
func isNetConnClosedErr(err error) bool {
	switch {
	case
		errors.Is(err, net.ErrClosed),
		errors.Is(err, io.EOF),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, syscall.ECONNRESET):
		return true
	default:
		return false
	}
}

// close network listener
func closeListener(ln net.Listener) {
	err := ln.Close()
	if err != nil && !errors.Is(err, net.ErrClosed) {
		log.Err(err).Msgf("failed to close listener %s", ln.Addr())
	}
}
