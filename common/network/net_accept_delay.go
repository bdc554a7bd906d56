package network

import "time"

const (
	// 初始延迟时间
	initialDelay = 5 * time.Millisecond
	// 最大延迟时间
	maxDelay = 1 * time.Second
)

// AcceptDelay 全局接入退避对象
// accept 失败时按指数退避 成功后重置
var AcceptDelay *delay

func init() {
	AcceptDelay = &delay{duration: 0}
}

type delay struct {
	duration time.Duration
}

// Delay 延迟
func (d *delay) Delay() {
	d.increment()
	if d.duration > 0 {
		time.Sleep(d.duration)
	}
}

// increment 增加延迟
func (d *delay) increment() {
	if d.duration <= 0 {
		d.duration = initialDelay
		return
	}
	d.duration = d.duration * 2
	if d.duration > maxDelay {
		d.duration = maxDelay
	}
}

// Reset 重置延迟
func (d *delay) Reset() {
	d.duration = 0
}
