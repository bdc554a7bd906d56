package ltv

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	"maybe_list/common/container"
	"maybe_list/common/network"
)

var (
	// 断言 检查是否实现 network.IHandler
	_ network.IHandler = (LTVHandlerFunc)(nil)
)

// LTVHandlerFunc 函数式消息处理器
// 把普通函数适配成 network.IHandler
type LTVHandlerFunc func(ctx context.Context, conn network.IConnection, packet network.IPacket) container.MaybeList[network.IPacket]

// Execute 实现 network.IHandler
func (fn LTVHandlerFunc) Execute(ctx context.Context, conn network.IConnection, packet network.IPacket) container.MaybeList[network.IPacket] {
	return fn(ctx, conn, packet)
}

// LTVDispatcher 消息分发器
// 按包类型把消息路由到处理器 再把处理器产出的应答包发回连接
// 处理器的返回值是单值或多值容器 多数命令恰好一个应答
// 广播/分片类命令返回 Many 心跳类命令返回空的 Many
type LTVDispatcher struct {
	allHandler     map[uint32]network.IHandler // 命令集合
	maxExecuteTime int64                       // 命令执行超时时间 单位 纳秒
	idBegin        uint32                      // 命令ID开始
	idEnd          uint32                      // 命令ID结束
	idPause        *container.Set[uint32]      // 暂停的命令ID
}

// Register 注册处理器
// 重复注册或者命令ID越界直接panic 注册只应发生在启动阶段
func (ltv *LTVDispatcher) Register(id uint32, handler network.IHandler) {
	slog.Debug("[LTVDispatcher] register handler", "id", id)
	if _, ok := ltv.allHandler[id]; ok {
		panic(ErrRepeatRegisterHandler)
	}
	if id < ltv.idBegin || id > ltv.idEnd {
		panic(ErrInvalidCommandID)
	}
	ltv.allHandler[id] = handler
}

// RegisterFunc 注册函数式处理器
func (ltv *LTVDispatcher) RegisterFunc(id uint32, fn LTVHandlerFunc) {
	ltv.Register(id, fn)
}

// DispatchMsg 分发消息
// 找到对应处理器执行 再消费返回的应答容器逐包投递回连接
// Many 变体按容器的消费顺序(插入逆序)发出
func (ltv *LTVDispatcher) DispatchMsg(ctx context.Context, conn network.IConnection, packet network.IPacket) {
	defer func() {
		if err := recover(); err != nil {
			slog.Error("[LTVDispatcher] DispatchMsg panic", "err", err, "stack", string(debug.Stack()))
		}
	}()
	header, ok := packet.GetHeader().(LTVHeader)
	if !ok {
		slog.Error("[LTVDispatcher] DispatchMsg packet get invalid header", "packet", packet)
		return
	}
	// invalid
	if header.Type < ltv.idBegin || header.Type > ltv.idEnd {
		slog.Error("[LTVDispatcher] DispatchMsg get invalid command id", "packet", packet)
		return
	}
	// is paused
	if ltv.idPause.Contains(header.Type) {
		slog.Warn("[LTVDispatcher] DispatchMsg get pause command", "header", header)
		return
	}
	// handler
	handler, exist := ltv.allHandler[header.Type]
	if !exist {
		slog.Error("[LTVDispatcher] DispatchMsg not find handler", "header", header)
		return
	}
	// 开始时间
	startAt := time.Now().UnixNano()
	replies := handler.Execute(ctx, conn, packet)
	for reply := range replies.Iter() {
		if reply == nil {
			continue
		}
		if err := conn.SendPacketToQueue(reply); err != nil {
			slog.Error("[LTVDispatcher] DispatchMsg send reply failed", "header", header, "err", err)
		}
	}
	// 超时处理
	if time.Now().UnixNano()-startAt > ltv.maxExecuteTime {
		slog.Warn("[LTVDispatcher] DispatchMsg handler execute timeout", "header", header)
	}
}

// Pause 暂停命令
func (ltv *LTVDispatcher) Pause(id uint32) {
	slog.Info("[LTVDispatcher] Pause", "id", id)
	if ltv.idPause.Contains(id) {
		return
	}
	ltv.idPause.Add(id)
}

// Resume 恢复命令
func (ltv *LTVDispatcher) Resume(id uint32) {
	slog.Info("[LTVDispatcher] Resume", "id", id)
	if !ltv.idPause.Contains(id) {
		return
	}
	ltv.idPause.Remove(id)
}

// NewLTVDispatcher 实例化
func NewLTVDispatcher(idBegin, idEnd uint32, maxExecuteTime int64) *LTVDispatcher {
	return &LTVDispatcher{
		allHandler:     make(map[uint32]network.IHandler),
		maxExecuteTime: maxExecuteTime,
		idBegin:        idBegin,
		idEnd:          idEnd,
		idPause:        container.NewSet[uint32](),
	}
}
