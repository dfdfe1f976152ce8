// Package client 정렬 서버용 줄 단위 클라이언트
package client

import (
	"bufio"
	"context"
	"math/rand"
	"net"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/rlaau/prlsort/protocol"
)

// ServerError 서버가 ERROR 줄로 응답한 경우
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return "server error: " + e.Message
}

// SpeedupResult 속도 측정 응답
type SpeedupResult struct {
	Sorted           []int
	SequentialMillis int64
	ParallelMillis   int64
	Ratio            string
}

// Client 서버 접속 하나. 동시에 여러 고루틴에서 쓰면 안 됨
type Client struct {
	conn    net.Conn
	scanner *bufio.Scanner
	w       *bufio.Writer
	id      int64
}

// Dial 접속 후 서버가 보내는 CLIENT_ID 줄을 읽음
func Dial(ctx context.Context, addr string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", addr)
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 64<<20)
	c := &Client{
		conn:    conn,
		scanner: scanner,
		w:       bufio.NewWriterSize(conn, 64*1024),
	}

	resp, err := c.read(ctx)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if resp.Kind != protocol.ResponseClientID {
		conn.Close()
		return nil, errors.Newf("expected %s handshake, got kind %d", protocol.TagClientID, resp.Kind)
	}
	c.id = resp.ClientID
	return c, nil
}

// ID 서버가 부여한 클라이언트 번호
func (c *Client) ID() int64 {
	return c.id
}

// Sort 정렬 요청
func (c *Client) Sort(ctx context.Context, depth int, data []int) ([]int, error) {
	resp, err := c.roundTrip(ctx, protocol.FormatSortRequest(depth, data), protocol.ResponseSortComplete)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Speedup 순차 / 병렬 비교 요청
func (c *Client) Speedup(ctx context.Context, depth int, data []int) (SpeedupResult, error) {
	resp, err := c.roundTrip(ctx, protocol.FormatSpeedupRequest(depth, data), protocol.ResponseSpeedupComplete)
	if err != nil {
		return SpeedupResult{}, err
	}
	return SpeedupResult{
		Sorted:           resp.Data,
		SequentialMillis: resp.SequentialMillis,
		ParallelMillis:   resp.ParallelMillis,
		Ratio:            resp.Ratio,
	}, nil
}

// Done 작업 완료 알림. 서버는 ACK로 응답
func (c *Client) Done(ctx context.Context) error {
	_, err := c.roundTrip(ctx, protocol.FormatDone(), protocol.ResponseAck)
	return err
}

// Close 접속 종료
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) roundTrip(ctx context.Context, line string, want protocol.ResponseKind) (protocol.Response, error) {
	c.setDeadline(ctx)
	if _, err := c.w.WriteString(line + "\n"); err != nil {
		return protocol.Response{}, errors.Wrap(err, "write request")
	}
	if err := c.w.Flush(); err != nil {
		return protocol.Response{}, errors.Wrap(err, "write request")
	}

	resp, err := c.read(ctx)
	if err != nil {
		return protocol.Response{}, err
	}
	if resp.Kind == protocol.ResponseError {
		return protocol.Response{}, &ServerError{Message: resp.Message}
	}
	if resp.Kind != want {
		return protocol.Response{}, errors.Newf("unexpected response kind %d, want %d", resp.Kind, want)
	}
	return resp, nil
}

func (c *Client) read(ctx context.Context) (protocol.Response, error) {
	c.setDeadline(ctx)
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return protocol.Response{}, errors.Wrap(err, "read response")
		}
		return protocol.Response{}, errors.New("connection closed by server")
	}
	resp, err := protocol.ParseResponse(c.scanner.Text())
	if err != nil {
		return protocol.Response{}, errors.Wrap(err, "parse response")
	}
	return resp, nil
}

// setDeadline ctx 마감 시간을 접속 마감 시간으로. 없으면 해제
func (c *Client) setDeadline(ctx context.Context) {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Time{}
	}
	_ = c.conn.SetDeadline(deadline)
}

// RandomArray [0, 10000) 범위 난수 배열
func RandomArray(rng *rand.Rand, size int) []int {
	arr := make([]int, size)
	for i := range arr {
		arr[i] = rng.Intn(10000)
	}
	return arr
}
