package bench

import (
	"bufio"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// GenerateRandomData 고정 시드로 재현 가능한 랜덤 데이터 생성
func GenerateRandomData(size int, seed int64) []int {
	rng := rand.New(rand.NewSource(seed))
	data := make([]int, size)
	for i := range size {
		data[i] = rng.Intn(1000000)
	}
	return data
}

// WriteDataFile 한 줄에 하나씩 숫자 기록 (64KB 버퍼)
func WriteDataFile(data []int, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "create %s", filename)
	}
	defer file.Close()

	writer := bufio.NewWriterSize(file, 64*1024)
	for i, num := range data {
		if i > 0 {
			writer.WriteByte('\n')
		}
		writer.WriteString(strconv.Itoa(num))
	}
	if err := writer.Flush(); err != nil {
		return errors.Wrapf(err, "write %s", filename)
	}
	return errors.Wrapf(file.Close(), "close %s", filename)
}

// ReadDataFile WriteDataFile 형식 읽기. 빈 줄은 건너뜀
func ReadDataFile(filename string) ([]int, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", filename)
	}
	defer file.Close()

	// 파일 크기 기반으로 슬라이스 미리 할당 (평균 6자리 + 개행)
	var data []int
	if info, err := file.Stat(); err == nil {
		data = make([]int, 0, info.Size()/7)
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), bufio.MaxScanTokenSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		num, err := strconv.Atoi(line)
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d", filename, lineNo)
		}
		data = append(data, num)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "read %s", filename)
	}
	return data, nil
}
