// Package protocol 정렬 서버의 한 줄 단위 요청 / 응답 인코딩.
//
// 요청:
//
//	SORT_REQUEST:<depth>;<csv>
//	TEST_SPEEDUP:<depth>;<csv>
//	DONE
//
// 응답:
//
//	CLIENT_ID:<n>
//	SORT_COMPLETE:<csv>
//	TEST_SPEEDUP_COMPLETE:<csv>;<seqMs>;<parMs>;<ratio>
//	ACK
//	ERROR:<message>
package protocol

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// 명령 / 응답 태그
const (
	TagSortRequest     = "SORT_REQUEST"
	TagSpeedupRequest  = "TEST_SPEEDUP"
	TagDone            = "DONE"
	TagClientID        = "CLIENT_ID"
	TagSortComplete    = "SORT_COMPLETE"
	TagSpeedupComplete = "TEST_SPEEDUP_COMPLETE"
	TagAck             = "ACK"
	TagError           = "ERROR"
)

// AutoDepth 하드웨어 병렬도로 깊이를 정하라는 값
const AutoDepth = -1

var (
	// ErrMalformed 숫자가 아닌 토큰 등 잘못된 페이로드
	ErrMalformed = errors.New("malformed payload")
	// ErrUnknownCommand 알 수 없는 태그
	ErrUnknownCommand = errors.New("unknown command")
)

// ParseInts 쉼표로 구분된 10진 정수 해석. 빈 문자열은 빈 슬라이스
func ParseInts(data string) ([]int, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return []int{}, nil
	}

	tokens := strings.Split(data, ",")
	arr := make([]int, len(tokens))
	for i, tok := range tokens {
		n, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil {
			return nil, errors.Wrapf(ErrMalformed, "token %d %q is not an integer", i, tok)
		}
		arr[i] = n
	}
	return arr, nil
}

// FormatInts 정수들을 쉼표로 이어 붙임
func FormatInts(arr []int) string {
	return strings.Join(lo.Map(arr, func(n int, _ int) string {
		return strconv.Itoa(n)
	}), ",")
}

// splitTag "TAG:payload"를 태그와 페이로드로 분리
func splitTag(line string) (tag, payload string, hasPayload bool) {
	line = strings.TrimRight(line, "\r\n")
	tag, payload, hasPayload = strings.Cut(line, ":")
	return strings.TrimSpace(tag), payload, hasPayload
}
