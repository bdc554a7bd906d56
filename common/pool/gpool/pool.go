package gpool

import (
	"context"
	"log/slog"
	"math/rand"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"maybe_list/common/container"
)

var (
	// 协程池ID生成器
	poolIDGenerator atomic.Uint64
)

const (
	PoolStatusOpen  = 0 // 协程池状态 打开
	PoolStatusClose = 1 // 协程池状态 关闭
)

// Job 任务
type Job struct {
	WorkerID int
	Ctx      context.Context
	Handler  func(context.Context) error
}

// 协程池
type Pool struct {
	id       uint64         // 协程池ID
	status   atomic.Int32   // 协程池状态
	capacity int            // 最大协程数
	workers  []*worker      // 工人列表
	wg       sync.WaitGroup // 等待组
}

// NewPool 创建协程池
// @param capacity 最大协程数
// @param jobQueueSize 任务队列大小
// @return *Pool
func NewPool(capacity int, jobQueueSize int) *Pool {
	pool := &Pool{
		id:       poolIDGenerator.Add(1),
		capacity: capacity,
		workers:  make([]*worker, capacity),
	}
	for i := range capacity {
		pool.workers[i] = newWorker(pool.id, i, jobQueueSize)
		pool.wg.Add(1)
		go func() {
			defer pool.wg.Done()
			defer func() {
				if err := recover(); err != nil {
					slog.Error("[Pool] process worker panic", slog.Uint64("poolID", pool.id), slog.Int("workerID", i), slog.Any("error", err), slog.String("stack", string(debug.Stack())))
				}
			}()
			pool.workers[i].process()
		}()
	}

	return pool
}

// Close 关闭协程池
func (p *Pool) Close() {
	slog.Info("[Pool] Close starting", slog.Uint64("poolID", p.id))
	if !p.status.CompareAndSwap(PoolStatusOpen, PoolStatusClose) {
		// 已经关闭了
		return
	}
	for _, worker := range p.workers {
		close(worker.stopChan)
	}
	p.wg.Wait()
	slog.Info("[Pool] Close success", slog.Uint64("poolID", p.id))
}

// Submit 提交任务
func (p *Pool) Submit(job Job) {
	if p.status.Load() == PoolStatusClose {
		slog.Error("[Pool] Submit pool already closed", slog.Uint64("poolID", p.id))
		return
	}
	// workerID < 0 无序负载均衡
	if job.WorkerID < 0 {
		index := rand.Intn(p.capacity)
		p.workers[index].jobChan <- job
	} else {
		// workerID >= 0 有序负载均衡
		index := job.WorkerID % p.capacity
		p.workers[index].jobChan <- job
	}
}

// SubmitEach 批量提交任务
// 消费传入的容器 单个任务直接走 Submit 的路径
func (p *Pool) SubmitEach(jobs container.MaybeList[Job]) {
	for job := range jobs.Iter() {
		p.Submit(job)
	}
}
