package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Command 요청 종류
type Command int

const (
	CommandSort Command = iota + 1
	CommandSpeedup
	CommandDone
)

func (c Command) String() string {
	switch c {
	case CommandSort:
		return "sort"
	case CommandSpeedup:
		return "speedup"
	case CommandDone:
		return "done"
	default:
		return "unknown"
	}
}

// Request 해석된 요청 한 줄
type Request struct {
	Command Command
	Depth   int
	Data    []int
}

// ParseRequest 요청 한 줄 해석.
// depth 접두어가 없으면 ("SORT_REQUEST:1,2,3") AutoDepth로 간주.
func ParseRequest(line string) (Request, error) {
	tag, payload, _ := splitTag(line)
	switch tag {
	case TagDone:
		return Request{Command: CommandDone}, nil
	case TagSortRequest:
		return parseWork(CommandSort, payload)
	case TagSpeedupRequest:
		return parseWork(CommandSpeedup, payload)
	default:
		return Request{}, errors.Wrapf(ErrUnknownCommand, "%q", tag)
	}
}

func parseWork(cmd Command, payload string) (Request, error) {
	req := Request{Command: cmd, Depth: AutoDepth}

	data := payload
	if depthStr, rest, ok := strings.Cut(payload, ";"); ok {
		depth, err := strconv.Atoi(strings.TrimSpace(depthStr))
		if err != nil {
			return Request{}, errors.Wrapf(ErrMalformed, "depth %q is not an integer", depthStr)
		}
		req.Depth = depth
		data = rest
	}

	arr, err := ParseInts(data)
	if err != nil {
		return Request{}, err
	}
	req.Data = arr
	return req, nil
}

// FormatSortRequest SORT_REQUEST 줄 생성
func FormatSortRequest(depth int, data []int) string {
	return fmt.Sprintf("%s:%d;%s", TagSortRequest, depth, FormatInts(data))
}

// FormatSpeedupRequest TEST_SPEEDUP 줄 생성
func FormatSpeedupRequest(depth int, data []int) string {
	return fmt.Sprintf("%s:%d;%s", TagSpeedupRequest, depth, FormatInts(data))
}

// FormatDone DONE 줄
func FormatDone() string {
	return TagDone
}
