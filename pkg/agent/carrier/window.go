package carrier

import "sync"

// window 固定容量的探测结果滑动窗口
// 容量满时淘汰最旧的结果，读写都在锁内完成。
type window struct {
	mu      sync.Mutex
	results []bool
	cap     int
}

func newWindow(capacity int) *window {
	return &window{
		results: make([]bool, 0, capacity),
		cap:     capacity,
	}
}

// Push 追加一次探测结果，超出容量时淘汰最旧的一条
func (w *window) Push(ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.results) >= w.cap {
		w.results = w.results[1:]
	}
	w.results = append(w.results, ok)
}

// Snapshot 返回当前窗口内容的副本
func (w *window) Snapshot() []bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	snapshot := make([]bool, len(w.results))
	copy(snapshot, w.results)
	return snapshot
}
