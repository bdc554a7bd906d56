package timer

import "container/heap"

var (
	// 断言 检查实现 heap.Interface
	_ heap.Interface = (*TimerQueue)(nil)
)

// TimeOuter 定时器回调接口
type TimeOuter interface {
	TimeOut(nowTm int64)
}

// Timer 定时器结构体
type Timer struct {
	TimeOuter
	id       int64 // 定时器ID
	end      int64 // 结束时间
	interval int64 // 间隔时间
	index    int   // 索引
}

// TimerQueue 定时器队列 按结束时间构成小根堆
type TimerQueue []*Timer

// Len 长度
func (tq TimerQueue) Len() int {
	return len(tq)
}

// Less 比较
func (tq TimerQueue) Less(i, j int) bool {
	return tq[i].end < tq[j].end
}

// Swap 交换
func (tq TimerQueue) Swap(i, j int) {
	tq[i], tq[j] = tq[j], tq[i]
	tq[i].index = i
	tq[j].index = j
}

// Push 插入
func (tq *TimerQueue) Push(x any) {
	timer, ok := x.(*Timer)
	if !ok {
		return
	}
	// append 扩容会整体搬迁底层数组
	// 队列创建时已预分配cap 直接在底层数组上扩展 slice
	tmp := *tq
	length := len(tmp)
	tmp = tmp[:length+1]
	timer.index = length
	tmp[length] = timer
	*tq = tmp
}

// Pop 弹出
func (tq *TimerQueue) Pop() any {
	tmp := *tq
	length := len(tmp)
	if length == 0 {
		return nil
	}
	timer := tmp[length-1]
	tmp[length-1] = nil
	// 标记失效
	timer.index = -1
	*tq = tmp[:length-1]

	return timer
}

// Peek 查看堆顶定时器 不弹出 空队列返回nil
func (tq TimerQueue) Peek() *Timer {
	if len(tq) == 0 {
		return nil
	}
	return tq[0]
}
