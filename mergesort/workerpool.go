package mergesort

import (
	"runtime"
)

// Pool 정렬 한 번 또는 여러 번이 공유하는 제한된 슬롯 풀.
// * 채널 통한 세마포 구현. 슬롯 하나 = 동시에 돌 수 있는 자식 태스크 하나.
type Pool struct {
	slots chan struct{}
}

// NewPool 워커 풀 생성. size <= 0 이면 GOMAXPROCS 사용
func NewPool(size int) *Pool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	return &Pool{slots: make(chan struct{}, size)}
}

// tryAcquire 슬롯 획득 시도. 없으면 즉시 false
func (p *Pool) tryAcquire() bool {
	select {
	case p.slots <- struct{}{}:
		return true
	default:
		return false
	}
}

func (p *Pool) release() {
	<-p.slots
}

// Status 사용 중인 슬롯 수와 전체 용량
func (p *Pool) Status() (used int, capacity int) {
	return len(p.slots), cap(p.slots)
}
