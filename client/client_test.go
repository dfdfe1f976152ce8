package client

import (
	"bufio"
	"context"
	"math/rand"
	"net"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer 첫 줄로 greeting을 보내고, 이후 요청마다 replies를 차례로 돌려줌
func fakeServer(t *testing.T, greeting string, replies ...string) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		w := bufio.NewWriter(conn)
		w.WriteString(greeting + "\n")
		w.Flush()

		r := bufio.NewScanner(conn)
		for _, reply := range replies {
			if !r.Scan() {
				return
			}
			w.WriteString(reply + "\n")
			w.Flush()
		}
		// 이후 요청은 응답 없이 읽기만 함
		for r.Scan() {
		}
	}()
	return ln.Addr().String()
}

func TestDialReadsClientID(t *testing.T) {
	addr := fakeServer(t, "CLIENT_ID:42")
	c, err := Dial(context.Background(), addr)
	require.NoError(t, err)
	defer c.Close()
	assert.EqualValues(t, 42, c.ID())
}

func TestDialRejectsBadHandshake(t *testing.T) {
	addr := fakeServer(t, "ACK")
	_, err := Dial(context.Background(), addr)
	assert.Error(t, err)
}

func TestServerErrorReply(t *testing.T) {
	addr := fakeServer(t, "CLIENT_ID:1", "ERROR:malformed payload")
	c, err := Dial(context.Background(), addr)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Sort(context.Background(), 1, []int{1})
	var serr *ServerError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "malformed payload", serr.Message)
}

func TestUnexpectedReplyKind(t *testing.T) {
	addr := fakeServer(t, "CLIENT_ID:1", "ACK")
	c, err := Dial(context.Background(), addr)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Speedup(context.Background(), 1, []int{1})
	assert.Error(t, err)
}

func TestSpeedupReply(t *testing.T) {
	addr := fakeServer(t, "CLIENT_ID:1", "TEST_SPEEDUP_COMPLETE:1,2,3;9;3;3.00")
	c, err := Dial(context.Background(), addr)
	require.NoError(t, err)
	defer c.Close()

	res, err := c.Speedup(context.Background(), -1, []int{3, 2, 1})
	require.NoError(t, err)
	assert.Equal(t, SpeedupResult{Sorted: []int{1, 2, 3}, SequentialMillis: 9, ParallelMillis: 3, Ratio: "3.00"}, res)
}

func TestDeadlineFromContext(t *testing.T) {
	addr := fakeServer(t, "CLIENT_ID:1")
	c, err := Dial(context.Background(), addr)
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err = c.Done(ctx)
	require.Error(t, err)
	var nerr net.Error
	require.True(t, errors.As(err, &nerr))
	assert.True(t, nerr.Timeout())
}

func TestRandomArrayRange(t *testing.T) {
	arr := RandomArray(rand.New(rand.NewSource(1)), 1000)
	assert.Len(t, arr, 1000)
	for _, v := range arr {
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 10000)
	}
}
