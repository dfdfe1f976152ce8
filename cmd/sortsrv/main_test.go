package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlaau/prlsort/mergesort"
	"github.com/rlaau/prlsort/server"
)

func TestFlagDefaults(t *testing.T) {
	cmd := newCommand()
	require.NoError(t, cmd.ParseFlags(nil))

	addr, err := cmd.Flags().GetString("addr")
	require.NoError(t, err)
	assert.Equal(t, server.DefaultAddr, addr)

	threshold, err := cmd.Flags().GetInt("threshold")
	require.NoError(t, err)
	assert.Equal(t, mergesort.DefaultThreshold, threshold)
}

func TestRunRejectsBadOptions(t *testing.T) {
	err := run(context.Background(), options{strategy: "threads", logLevel: "info"})
	assert.Error(t, err)

	err = run(context.Background(), options{strategy: "fork", logLevel: "loud"})
	assert.Error(t, err)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// 취소된 컨텍스트면 listen이 실패하거나 리스너가 바로 닫힘
	err := run(ctx, options{addr: "127.0.0.1:0", strategy: "pool", logLevel: "error"})
	if err != nil {
		assert.Contains(t, err.Error(), "listen")
	}
}
