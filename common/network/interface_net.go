package network

import (
	"context"
	"net"

	"maybe_list/common/container"
)

// IProtocolCoder 网络协议编码器
type IProtocolCoder interface {
	GetHeaderSize() int
	// Decode 解析缓冲区数据
	// 返回解析的数据，解析的长度，可能的错误
	Decode(buffer []byte) (IPacket, uint32, error)
	// Encode 编码数据
	// 返回编码后的数据，可能的错误
	Encode(data IPacket) ([]byte, error)
}

// IPacket 网络数据包
type IPacket interface {
	// GetData 获取数据域
	GetData() []byte
	// GetLength 获取数据域长度
	GetLength() uint32
	// GetHeader 获取头部域
	GetHeader() any
	// GetTotalLength 获取数据包总长度
	GetTotalLength() uint32
}

// IConnection 网络连接
type IConnection interface {
	// Start 启动连接
	Start()
	// Close 关闭连接
	Close() error
	// GetConnectionID 获取连接ID
	GetConnectionID() uint64
	// RemoteAddr 获取远程地址
	RemoteAddr() net.Addr
	// LocalAddr 获取本地地址
	LocalAddr() net.Addr
	// RemoteAddrString 获取远程地址字符串
	RemoteAddrString() string
	// LocalAddrString 获取本地地址字符串
	LocalAddrString() string
	// IsAlive 判断当前连接是否存活
	IsAlive() bool
	// SendToQueue 投递已编码数据到发送队列
	SendToQueue(data []byte) error
	// SendPacketToQueue 编码数据包并投递到发送队列
	SendPacketToQueue(packet IPacket) error
}

// IConnectionManager 连接管理器
type IConnectionManager interface {
	// Add 添加连接
	Add(conn IConnection)
	// Remove 移除连接
	Remove(conn IConnection)
	// RemoveByConnectionID 根据连接ID移除连接
	RemoveByConnectionID(connID uint64)
	// Get 根据连接ID获取连接
	Get(connID uint64) IConnection
	// Count 连接数量
	Count() int
	// GetAllConnID 获取所有连接ID
	GetAllConnID() []uint64
	// Range 遍历所有连接
	Range(fn func(connID uint64, conn IConnection) error) error
}

// IHandler 消息处理器
// 处理一个数据包 返回要回给连接的应答包
// 多数处理只产生一个应答 偶尔产生零个或多个 返回值用单值或多值容器表达
// 分发器消费返回的容器逐包发送 Many 变体按容器约定的逆序发出
type IHandler interface {
	Execute(ctx context.Context, conn IConnection, packet IPacket) container.MaybeList[IPacket]
}

type IServer interface {
	// Serve 启动服务
	Serve()
	// Close 关闭服务
	Close() error
	// GetConnectionManager 获取连接管理器
	GetConnectionManager() IConnectionManager
	// SetOnConnect 设置连接回调
	SetOnConnect(fn func(conn IConnection))
	// OnConnect 获取连接回调
	OnConnect() func(conn IConnection)
	// SetOnDisconnect 设置断开连接回调
	SetOnDisconnect(fn func(conn IConnection))
	// OnDisconnect 获取断开连接回调
	OnDisconnect() func(conn IConnection)
	// ProtocolCoder 获取协议编码器
	ProtocolCoder() IProtocolCoder
	// HeartbeatFunc 获取心跳回调
	HeartbeatFunc() func(conn IConnection)
	// SetHeartbeatFunc 设置心跳回调
	SetHeartbeatFunc(fn func(conn IConnection))
	// SetDispatchMsg 设置消息分发
	SetDispatchMsg(fn func(conn IConnection, packet IPacket))
	// GetDispatchMsg 获取消息分发
	GetDispatchMsg() func(conn IConnection, packet IPacket)
}

// IClient 网络客户端
type IClient interface {
	// Start 启动客户端
	Start()
	// Close 关闭客户端
	Close() error
	// Restart 重启客户端
	Restart()
	// Connection 获取连接
	Connection() IConnection
	// SetConnection 设置连接
	SetConnection(conn IConnection)
	// SetOnConnect 设置连接回调
	SetOnConnect(fn func(conn IConnection))
	// OnConnect 获取连接回调
	OnConnect() func(conn IConnection)
	// SetOnDisconnect 设置断开连接回调
	SetOnDisconnect(fn func(conn IConnection))
	// OnDisconnect 获取断开连接回调
	OnDisconnect() func(conn IConnection)
	// ProtocolCoder 获取协议编码器
	ProtocolCoder() IProtocolCoder
	// HeartbeatFunc 获取心跳回调
	HeartbeatFunc() func(conn IConnection)
	// SetHeartbeatFunc 设置心跳回调
	SetHeartbeatFunc(fn func(conn IConnection))
	// SetDispatchMsg 设置消息分发
	SetDispatchMsg(fn func(conn IConnection, packet IPacket))
	// GetDispatchMsg 获取消息分发
	GetDispatchMsg() func(conn IConnection, packet IPacket)
}
