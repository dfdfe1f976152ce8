// Package server 정렬 서비스 TCP 서버.
//
// 접속마다 고루틴 하나가 줄 단위 요청을 순서대로 처리한다. 정렬 자체는 mergesort 패키지가 담당.
package server

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/rlaau/prlsort/mergesort"
)

const (
	// DefaultAddr 기본 수신 주소
	DefaultAddr = ":8888"
	// DefaultMaxLineBytes 요청 한 줄의 최대 크기
	DefaultMaxLineBytes = 64 << 20
)

// Config 서버 설정
type Config struct {
	Addr         string
	Threshold    int
	Strategy     mergesort.Strategy
	PoolSize     int // StrategyPool 일 때 모든 접속이 공유하는 슬롯 수. <= 0 이면 GOMAXPROCS
	MaxLineBytes int
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.Threshold <= 0 {
		c.Threshold = mergesort.DefaultThreshold
	}
	if c.MaxLineBytes <= 0 {
		c.MaxLineBytes = DefaultMaxLineBytes
	}
	return c
}

// Server 정렬 서버
type Server struct {
	cfg     Config
	logger  *slog.Logger
	metrics *Metrics
	pool    *mergesort.Pool

	// 접속 순서대로 1부터 부여
	nextID atomic.Int64

	mu sync.Mutex
	ln net.Listener
}

// New 서버 생성. logger가 nil이면 slog.Default, metrics는 nil 가능
func New(cfg Config, logger *slog.Logger, metrics *Metrics) *Server {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
	}
	if cfg.Strategy == mergesort.StrategyPool {
		s.pool = mergesort.NewPool(cfg.PoolSize)
	}
	return s
}

// ListenAndServe cfg.Addr에서 수신 후 Serve
func (s *Server) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen %s", s.cfg.Addr)
	}
	return s.Serve(ctx, ln)
}

// Addr 수신 중인 주소. Serve 전에는 nil
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Serve ln에서 접속을 받아 처리. ctx가 취소되면 리스너와 모든 접속을 닫고
// 핸들러가 끝날 때까지 기다린 뒤 nil 반환. ln은 항상 닫힌 상태로 반환됨.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	s.logger.Info("server started", "addr", ln.Addr().String(), "threshold", s.cfg.Threshold, "strategy", s.cfg.Strategy.String())

	// accept 실패 시에도 살아 있는 접속을 닫기 위한 내부 취소
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := context.AfterFunc(ctx, func() {
		ln.Close()
	})
	defer stop()
	defer ln.Close()

	var g errgroup.Group
	var acceptErr error
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() == nil {
				acceptErr = errors.Wrap(err, "accept")
			}
			break
		}

		id := s.nextID.Add(1)
		s.logger.Info("new client", "client_id", id, "remote", conn.RemoteAddr().String())
		g.Go(func() error {
			s.serveConn(ctx, conn, id)
			return nil
		})
	}

	cancel()
	_ = g.Wait()
	s.logger.Info("server stopped")
	return acceptErr
}
