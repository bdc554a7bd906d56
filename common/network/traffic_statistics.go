package network

import (
	"fmt"
	"sync/atomic"
)

// TrafficStatistics 流量统计
// 统计所有连接读写的消息条数和字节数
type TrafficStatistics struct {
	readMsgCount  atomic.Uint32
	writeMsgCount atomic.Uint32
	readMsgSize   atomic.Uint64
	writeMsgSize  atomic.Uint64
}

// NewTrafficStatistics 创建流量统计对象
func NewTrafficStatistics() *TrafficStatistics {
	return &TrafficStatistics{}
}

// IncrRead 增加读取消息
func (ts *TrafficStatistics) IncrRead(msgSize uint32) {
	ts.readMsgCount.Add(1)
	ts.readMsgSize.Add(uint64(msgSize))
}

// IncrWrite 增加写入消息
func (ts *TrafficStatistics) IncrWrite(msgSize uint32) {
	ts.writeMsgCount.Add(1)
	ts.writeMsgSize.Add(uint64(msgSize))
}

// Reset 重置
func (ts *TrafficStatistics) Reset() {
	ts.readMsgCount.Store(0)
	ts.readMsgSize.Store(0)
	ts.writeMsgCount.Store(0)
	ts.writeMsgSize.Store(0)
}

// Get 获取当前统计值
func (ts *TrafficStatistics) Get() (readMsgCount uint32, writeMsgCount uint32, readMsgSize uint64, writeMsgSize uint64) {
	readMsgCount = ts.readMsgCount.Load()
	writeMsgCount = ts.writeMsgCount.Load()
	readMsgSize = ts.readMsgSize.Load()
	writeMsgSize = ts.writeMsgSize.Load()
	return
}

// String 调试输出
func (ts *TrafficStatistics) String() string {
	readMsgCount, writeMsgCount, readMsgSize, writeMsgSize := ts.Get()
	return fmt.Sprintf("TrafficStatistics{readCount: %d, readSize: %d, writeCount: %d, writeSize: %d}",
		readMsgCount, readMsgSize, writeMsgCount, writeMsgSize)
}

// TS 全局流量统计对象
var TS = NewTrafficStatistics()
