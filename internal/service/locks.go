package service

import "sync"

// KeyMutex 按字符串键串行化临界区。同一次尝试的所有写操作
// （提交答案、交卷、人工评分）共用同一把锁，保证单写者。
type KeyMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewKeyMutex() *KeyMutex {
	return &KeyMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock 锁住指定键并返回对应的解锁函数。
func (k *KeyMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
