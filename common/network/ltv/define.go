package ltv

// NetMode 网络模式
type NetMode int

const (
	NetMode_Default   NetMode = iota // 默认 server默认同时监听Tcp和Websocket 客户端默认TCP
	NetMode_Tcp                      // tcp
	NetMode_Websocket                // websocket
)

// NetSide 网络端
type NetSide int

const (
	NodeSide_Invalid NetSide = iota // 无效
	NodeSide_Server                 // 服务端
	NodeSide_Client                 // 客户端
)
