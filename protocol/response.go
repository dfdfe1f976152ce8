package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ResponseKind 응답 종류
type ResponseKind int

const (
	ResponseClientID ResponseKind = iota + 1
	ResponseSortComplete
	ResponseSpeedupComplete
	ResponseAck
	ResponseError
)

// Response 해석된 응답 한 줄
type Response struct {
	Kind             ResponseKind
	ClientID         int64
	Data             []int
	SequentialMillis int64
	ParallelMillis   int64
	Ratio            string
	Message          string
}

// FormatClientID 접속 직후 보내는 아이디 줄
func FormatClientID(id int64) string {
	return fmt.Sprintf("%s:%d", TagClientID, id)
}

// FormatSortComplete 정렬 결과 줄
func FormatSortComplete(data []int) string {
	return TagSortComplete + ":" + FormatInts(data)
}

// FormatSpeedupComplete 속도 측정 결과 줄. 필드는 세미콜론으로 구분
func FormatSpeedupComplete(data []int, seqMillis, parMillis int64, ratio string) string {
	return fmt.Sprintf("%s:%s;%d;%d;%s", TagSpeedupComplete, FormatInts(data), seqMillis, parMillis, ratio)
}

// FormatAck DONE에 대한 응답
func FormatAck() string {
	return TagAck
}

// FormatError 에러 줄. 메시지 안의 개행은 공백으로 바꿈
func FormatError(err error) string {
	msg := strings.NewReplacer("\r", " ", "\n", " ").Replace(err.Error())
	return TagError + ":" + msg
}

// ParseResponse 응답 한 줄 해석
func ParseResponse(line string) (Response, error) {
	tag, payload, _ := splitTag(line)
	switch tag {
	case TagAck:
		return Response{Kind: ResponseAck}, nil

	case TagError:
		return Response{Kind: ResponseError, Message: payload}, nil

	case TagClientID:
		id, err := strconv.ParseInt(strings.TrimSpace(payload), 10, 64)
		if err != nil {
			return Response{}, errors.Wrapf(ErrMalformed, "client id %q", payload)
		}
		return Response{Kind: ResponseClientID, ClientID: id}, nil

	case TagSortComplete:
		arr, err := ParseInts(payload)
		if err != nil {
			return Response{}, err
		}
		return Response{Kind: ResponseSortComplete, Data: arr}, nil

	case TagSpeedupComplete:
		return parseSpeedupComplete(payload)

	default:
		return Response{}, errors.Wrapf(ErrUnknownCommand, "%q", tag)
	}
}

func parseSpeedupComplete(payload string) (Response, error) {
	parts := strings.Split(payload, ";")
	if len(parts) != 4 {
		return Response{}, errors.Wrapf(ErrMalformed, "speedup result has %d fields, want 4", len(parts))
	}

	arr, err := ParseInts(parts[0])
	if err != nil {
		return Response{}, err
	}
	seq, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Response{}, errors.Wrapf(ErrMalformed, "sequential time %q", parts[1])
	}
	par, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Response{}, errors.Wrapf(ErrMalformed, "parallel time %q", parts[2])
	}
	if _, err := strconv.ParseFloat(parts[3], 64); err != nil {
		return Response{}, errors.Wrapf(ErrMalformed, "ratio %q", parts[3])
	}

	return Response{
		Kind:             ResponseSpeedupComplete,
		Data:             arr,
		SequentialMillis: seq,
		ParallelMillis:   par,
		Ratio:            parts[3],
	}, nil
}
