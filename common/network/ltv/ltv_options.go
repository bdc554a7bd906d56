package ltv

import (
	"time"

	"maybe_list/common/network"
	"maybe_list/common/options"
)

// WithServerProtocolCoder 替换服务器协议编码器Options
func WithServerProtocolCoder(coder network.IProtocolCoder) options.Option[LTVServer] {
	return options.WrapperOptions[LTVServer](func(srv *LTVServer) {
		srv.protocolCoder = coder
	})
}

// WithServerDispatcher 替换服务器消息分发器Options
// 用于自定义命令ID区间和执行超时阈值
func WithServerDispatcher(dispatcher *LTVDispatcher) options.Option[LTVServer] {
	return options.WrapperOptions[LTVServer](func(srv *LTVServer) {
		srv.dispatcher = dispatcher
	})
}

// WithServerExecuteTimeout 设置处理器执行超时告警阈值Options
func WithServerExecuteTimeout(timeout time.Duration) options.Option[LTVServer] {
	return options.WrapperOptions[LTVServer](func(srv *LTVServer) {
		srv.dispatcher.maxExecuteTime = int64(timeout)
	})
}

// WithClientProtocolCoder 替换客户端协议编码器Options
func WithClientProtocolCoder(coder network.IProtocolCoder) options.Option[LTVClient] {
	return options.WrapperOptions[LTVClient](func(cli *LTVClient) {
		cli.protocolCoder = coder
	})
}
