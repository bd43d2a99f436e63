package service

import "sync"

// JobRegistry 记录正在执行的后台任务（taskID -> 存活标记）。
// 仅作诊断用途：注册表里的缺席不影响持久化状态的权威性。
type JobRegistry struct {
	mu sync.RWMutex
	m  map[string]struct{}
}

func NewJobRegistry() *JobRegistry {
	return &JobRegistry{m: make(map[string]struct{})}
}

func (r *JobRegistry) Add(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[id] = struct{}{}
}

func (r *JobRegistry) Done(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, id)
}

func (r *JobRegistry) Running(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.m[id]
	return ok
}

// Jobs 由 Processor 维护、状态查询接口只读访问
var Jobs = NewJobRegistry()

// keyedMutex 按 taskID 提供互斥锁，串行化对同一任务 shots 列的读改写
type keyedMutex struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{m: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) get(id string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	l, ok := k.m[id]
	if !ok {
		l = &sync.Mutex{}
		k.m[id] = l
	}
	return l
}

func (k *keyedMutex) Lock(id string) func() {
	l := k.get(id)
	l.Lock()
	return l.Unlock
}
