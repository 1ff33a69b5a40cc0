package service

import "sync"

// keyedMutex 按实体 ID 串行化状态字段的读改写
// 两次并发评估不能同时读到同一份旧状态，否则会重复通知
type keyedMutex struct {
	locks sync.Map // entityID -> *sync.Mutex
}

// Lock 锁定指定实体，返回解锁函数
func (k *keyedMutex) Lock(id string) func() {
	value, _ := k.locks.LoadOrStore(id, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
