package sat2d

import "sync"

// task splits data in workersCount contiguous chunks, and calls fn on each element.
// It returns once every element is processed.
func task[T any](workersCount int, data []T, fn func(data T)) {
	dataSize := len(data)
	if workersCount <= 1 || dataSize <= 1 {
		for _, d := range data {
			fn(d)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := (dataSize + workersCount - 1) / workersCount

	for workerID := 0; workerID < workersCount; workerID++ {
		start, end := workerID*chunkSize, min((workerID+1)*chunkSize, dataSize)
		if start >= end {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(data[i])
			}
		}(start, end)
	}
	wg.Wait()
}
