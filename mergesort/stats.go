package mergesort

import "sync/atomic"

// Stats 디스패처 호출 횟수 훅. 여러 고루틴에서 동시에 갱신됨
type Stats struct {
	splits atomic.Int64
	tasks  atomic.Int64
	leaves atomic.Int64
	merges atomic.Int64

	onLeaf func(left, right int) // 테스트용. 순차 정렬 직전에 호출
}

// StatsSnapshot Stats의 특정 시점 값
type StatsSnapshot struct {
	Splits int64 // 두 자식으로 나눈 횟수
	Tasks  int64 // 분할로 생성된 자식 태스크 수
	Leaves int64 // 순차 엔진에 위임한 횟수
	Merges int64 // 디스패처 단계의 병합 횟수
}

// Snapshot 현재 카운터 값 복사
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Splits: s.splits.Load(),
		Tasks:  s.tasks.Load(),
		Leaves: s.leaves.Load(),
		Merges: s.merges.Load(),
	}
}

// Reset 모든 카운터 0으로
func (s *Stats) Reset() {
	s.splits.Store(0)
	s.tasks.Store(0)
	s.leaves.Store(0)
	s.merges.Store(0)
}

func (s *Stats) split() {
	if s == nil {
		return
	}
	s.splits.Add(1)
	s.tasks.Add(2)
}

func (s *Stats) leaf(left, right int) {
	if s == nil {
		return
	}
	s.leaves.Add(1)
	if s.onLeaf != nil {
		s.onLeaf(left, right)
	}
}

func (s *Stats) merged() {
	if s == nil {
		return
	}
	s.merges.Add(1)
}
