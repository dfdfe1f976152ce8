// Package mergesort 깊이 제한 병렬 머지소트와 속도 향상 측정 하네스.
//
// 모든 범위는 닫힌 구간 [left, right]로 다룬다. left >= right 인 범위는 정렬할 것이 없다.
package mergesort

import (
	"github.com/cockroachdb/errors"
)

// SortSequential 슬라이스 전체를 순차 머지소트로 정렬
func SortSequential(arr []int) {
	if len(arr) <= 1 {
		return
	}
	Sequential(arr, 0, len(arr)-1)
}

// Sequential arr[left..right]를 하향식 재귀 머지소트로 정렬
func Sequential(arr []int, left, right int) {
	if left >= right {
		return
	}
	checkRange(arr, left, right)
	sequential(arr, left, right)
}

func sequential(arr []int, left, right int) {
	if left >= right {
		return
	}
	mid := left + (right-left)/2
	sequential(arr, left, mid)
	sequential(arr, mid+1, right)
	merge(arr, left, mid, right)
}

// Merge 정렬된 두 인접 구간 [left, mid]와 [mid+1, right]를 하나로 병합
func Merge(arr []int, left, mid, right int) {
	if left > mid || mid >= right {
		// 한쪽이 비어 있으면 이미 정렬된 상태
		return
	}
	checkRange(arr, left, right)
	merge(arr, left, mid, right)
}

// merge 두 구간을 임시 버퍼에 복사한 뒤 투 포인터로 되써넣음.
// 같은 값이면 왼쪽 버퍼를 먼저 가져가므로 안정적.
func merge(arr []int, left, mid, right int) {
	leftBuf := make([]int, mid-left+1)
	rightBuf := make([]int, right-mid)
	copy(leftBuf, arr[left:mid+1])
	copy(rightBuf, arr[mid+1:right+1])

	i, j, k := 0, 0, left
	for i < len(leftBuf) && j < len(rightBuf) {
		if leftBuf[i] <= rightBuf[j] {
			arr[k] = leftBuf[i]
			i++
		} else {
			arr[k] = rightBuf[j]
			j++
		}
		k++
	}

	// 남은 요소들 한 번에 복사
	k += copy(arr[k:], leftBuf[i:])
	copy(arr[k:], rightBuf[j:])
}

// checkRange 인덱스 전제조건 위반은 분할 로직의 버그이므로 패닉
func checkRange(arr []int, left, right int) {
	if left < 0 || right >= len(arr) {
		panic(errors.AssertionFailedf("range [%d, %d] out of bounds for length %d", left, right, len(arr)))
	}
}
