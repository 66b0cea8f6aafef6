package logic

import "sync"

// keyedMutex 按记录ID串行化资金操作
//
// 条目引用计数归零即回收，不随历史记录数量增长。
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uint]*keyedLockEntry
}

type keyedLockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[uint]*keyedLockEntry)}
}

// Lock 获取id对应的锁
func (k *keyedMutex) Lock(id uint) {
	k.mu.Lock()
	entry, ok := k.locks[id]
	if !ok {
		entry = &keyedLockEntry{}
		k.locks[id] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
}

// Unlock 释放id对应的锁，没有持有者和等待者时回收条目
func (k *keyedMutex) Unlock(id uint) {
	k.mu.Lock()
	entry := k.locks[id]
	entry.refs--
	if entry.refs == 0 {
		delete(k.locks, id)
	}
	k.mu.Unlock()

	entry.mu.Unlock()
}

// size 当前在用的条目数
func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
