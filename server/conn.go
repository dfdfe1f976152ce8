package server

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/rlaau/prlsort/mergesort"
	"github.com/rlaau/prlsort/protocol"
)

// serveConn 접속 하나의 요청을 순서대로 처리
func (s *Server) serveConn(ctx context.Context, conn net.Conn, id int64) {
	s.metrics.connOpened()
	defer s.metrics.connClosed()
	defer conn.Close()

	// 종료 시 블로킹된 읽기를 깨움
	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})
	defer stop()

	log := s.logger.With("client_id", id)

	w := bufio.NewWriterSize(conn, 64*1024)
	if err := writeLine(w, protocol.FormatClientID(id)); err != nil {
		log.Warn("client dropped connection", "err", err)
		return
	}
	log.Info("assigned client id")

	lines := newLineReader(conn, s.cfg.MaxLineBytes)
	for {
		line, err := lines.next()
		var resp string
		switch {
		case err == nil:
			resp = s.handleRequest(ctx, log, line)
		case errors.Is(err, errLineTooLong):
			s.metrics.requestError("invalid")
			log.Warn("bad request", "err", err)
			resp = protocol.FormatError(errors.Wrapf(protocol.ErrMalformed, "request line exceeds %d bytes", s.cfg.MaxLineBytes))
		case errors.Is(err, io.EOF):
			log.Info("client disconnected")
			return
		case ctx.Err() != nil:
			log.Info("connection closed by shutdown")
			return
		default:
			log.Warn("client dropped connection", "err", err)
			return
		}

		if err := writeLine(w, resp); err != nil {
			log.Warn("client dropped connection", "err", err)
			return
		}
	}
}

var errLineTooLong = errors.New("request line too long")

// lineReader 줄 단위 읽기. 한도를 넘는 줄은 줄 끝까지 버리고 errLineTooLong을 반환하므로
// 다음 줄부터 계속 읽을 수 있음
type lineReader struct {
	r   *bufio.Reader
	limit int
	buf []byte
}

func newLineReader(r io.Reader, limit int) *lineReader {
	return &lineReader{r: bufio.NewReaderSize(r, 64*1024), limit: limit}
}

func (l *lineReader) next() (string, error) {
	l.buf = l.buf[:0]
	tooLong := false
	for {
		chunk, err := l.r.ReadSlice('\n')
		if !tooLong {
			l.buf = append(l.buf, chunk...)
			// 줄바꿈 한 바이트는 한도에서 제외
			if len(l.buf) > l.limit+1 || (err != nil && len(l.buf) > l.limit) {
				tooLong = true
				l.buf = l.buf[:0]
			}
		}

		switch {
		case err == nil:
			if tooLong {
				return "", errLineTooLong
			}
			line := bytes.TrimSuffix(l.buf[:len(l.buf)-1], []byte{'\r'})
			return string(line), nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF) && len(l.buf) > 0:
			// 줄바꿈 없는 마지막 줄
			return string(bytes.TrimSuffix(l.buf, []byte{'\r'})), nil
		default:
			return "", err
		}
	}
}

// handleRequest 요청 한 줄을 처리하고 응답 줄을 반환
func (s *Server) handleRequest(ctx context.Context, log *slog.Logger, line string) string {
	req, err := protocol.ParseRequest(line)
	if err != nil {
		s.metrics.requestError("invalid")
		log.Warn("bad request", "err", err)
		return protocol.FormatError(err)
	}

	cmd := req.Command.String()
	s.metrics.request(cmd)

	switch req.Command {
	case protocol.CommandDone:
		log.Info("client finished work")
		return protocol.FormatAck()

	case protocol.CommandSort:
		start := time.Now()
		if err := mergesort.SortParallel(ctx, req.Data, s.sortConfig(req.Depth)); err != nil {
			return s.failed(log, cmd, err)
		}
		elapsed := time.Since(start)
		s.metrics.observeSort("parallel", elapsed.Seconds())
		log.Debug("sorted", "size", len(req.Data), "depth", req.Depth, "elapsed", elapsed)
		return protocol.FormatSortComplete(req.Data)

	case protocol.CommandSpeedup:
		sorted, m, err := mergesort.Speedup(ctx, req.Data, s.sortConfig(req.Depth))
		if err != nil {
			return s.failed(log, cmd, err)
		}
		s.metrics.observeSort("sequential", m.Sequential.Seconds())
		s.metrics.observeSort("parallel", m.Parallel.Seconds())
		log.Info("speedup measured",
			"size", len(req.Data),
			"depth", m.Depth,
			"sequential", m.Sequential,
			"parallel", m.Parallel,
			"speedup", m.Ratio())
		return protocol.FormatSpeedupComplete(sorted, m.SequentialMillis(), m.ParallelMillis(), m.Ratio())

	default:
		return s.failed(log, cmd, errors.AssertionFailedf("unhandled command %d", req.Command))
	}
}

func (s *Server) failed(log *slog.Logger, cmd string, err error) string {
	s.metrics.requestError(cmd)
	log.Error("request failed", "command", cmd, "err", err)
	return protocol.FormatError(err)
}

func (s *Server) sortConfig(depth int) mergesort.Config {
	return mergesort.Config{
		Threshold: s.cfg.Threshold,
		Depth:     depth,
		Strategy:  s.cfg.Strategy,
		Pool:      s.pool,
	}
}

func writeLine(w *bufio.Writer, line string) error {
	if _, err := w.WriteString(line); err != nil {
		return errors.Wrap(err, "write")
	}
	if err := w.WriteByte('\n'); err != nil {
		return errors.Wrap(err, "write")
	}
	return errors.Wrap(w.Flush(), "flush")
}
