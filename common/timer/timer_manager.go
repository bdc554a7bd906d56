package timer

import (
	"container/heap"
	"log/slog"
	"runtime/debug"
	"sync/atomic"

	"maybe_list/common/container"
)

const (
	DefaultTimerQueueSize = 1024
)

type TimerManager struct {
	id    atomic.Int64             // 定时器唯一ID
	tq    TimerQueue               // 定时器队列
	queue *container.Queue[*Timer] // 定时器执行队列
}

// NewTimerManager 创建定时器管理器
func NewTimerManager(size int) *TimerManager {
	if size <= 0 {
		size = DefaultTimerQueueSize
	}
	return &TimerManager{
		tq:    make(TimerQueue, 0, size),
		queue: container.NewQueue[*Timer](),
	}
}

// AddTimer 添加定时器
// @param timeOuter 定时器回调
// @param end 定时器结束时间
// @param interval 定时器间隔时间
// @return 定时器ID 队列已满返回0
func (tm *TimerManager) AddTimer(timeOuter TimeOuter, end int64, interval int64) int64 {
	if cap(tm.tq) <= len(tm.tq) {
		slog.Warn("[TimerManager] AddTimer timer is full", "timerOuter", timeOuter, "end", end, "interval", interval)
		return 0
	}
	timer := &Timer{
		TimeOuter: timeOuter,
		end:       end,
		id:        tm.id.Add(1),
		interval:  interval,
	}

	heap.Push(&tm.tq, timer)
	return timer.id
}

// RemoveTimer 移除定时器
func (tm *TimerManager) RemoveTimer(timerId int64) {
	if timerId <= 0 {
		return
	}
	for _, timer := range tm.tq {
		if timer.id == timerId {
			heap.Remove(&tm.tq, timer.index)
			break
		}
	}
}

// Size 待触发的定时器数量
func (tm *TimerManager) Size() int {
	return tm.tq.Len()
}

// Run 执行定时器
// @param nowTm 当前时间
// @param limit 最大执行次数
// @return 检查数量, 执行数量
func (tm *TimerManager) Run(nowTm int64, limit int) (uint32, uint32) {
	defer func() {
		if err := recover(); err != nil {
			slog.Error("[TimerManager] Run panic", "err", err, "stack", string(debug.Stack()))
		}
	}()

	checkCount := uint32(0)
	callCount := uint32(0)

	for {
		// 小根堆 根节点最早到期
		head := tm.tq.Peek()
		if head == nil {
			break
		}
		checkCount++
		if head.end > nowTm {
			// 未到触发时间
			break
		}
		timer := heap.Pop(&tm.tq).(*Timer)
		tm.queue.Push(timer)
		// 存在 间隔执行时间
		if timer.interval > 0 {
			// 以当前时间为基准重新入队
			// 避免不停止服务修改服务器时间导致频繁触发
			timer.end = nowTm + timer.interval
			heap.Push(&tm.tq, timer)
		}
		if limit > 0 && tm.queue.Size() >= limit {
			// 执行数量达到上限
			break
		}
	}

	// 按到期先后顺序执行回调
	for tm.queue.Size() > 0 {
		callCount++
		timer := tm.queue.Pop()
		timer.TimeOut(nowTm)
	}

	return checkCount, callCount
}
