package ltv

import (
	"bytes"
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"maybe_list/common/container"
	"maybe_list/common/network"
)

const (
	CmdEcho  = 10 // 回声命令 应答一个包
	CmdBurst = 20 // 广播命令 应答多个包
	CmdDrop  = 30 // 丢弃命令 无应答
)

// fakeConn 仅记录发送内容的连接
type fakeConn struct {
	sentPackets []network.IPacket
	sentData    [][]byte
}

func (f *fakeConn) Start()                   {}
func (f *fakeConn) Close() error             { return nil }
func (f *fakeConn) GetConnectionID() uint64  { return 1 }
func (f *fakeConn) RemoteAddr() net.Addr     { return nil }
func (f *fakeConn) LocalAddr() net.Addr      { return nil }
func (f *fakeConn) RemoteAddrString() string { return "fake" }
func (f *fakeConn) LocalAddrString() string  { return "fake" }
func (f *fakeConn) IsAlive() bool            { return true }

func (f *fakeConn) SendToQueue(data []byte) error {
	f.sentData = append(f.sentData, data)
	return nil
}

func (f *fakeConn) SendPacketToQueue(packet network.IPacket) error {
	f.sentPackets = append(f.sentPackets, packet)
	return nil
}

func TestLTVProtocolCoderRoundTrip(t *testing.T) {
	coder := NewLTVProtocolCoder(true)
	packet := NewLTVPacket(7, []byte("hello"))

	data, err := coder.Encode(packet)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(data) != LTVHeaderSize+5 {
		t.Fatalf("Encode length = %d, want %d", len(data), LTVHeaderSize+5)
	}

	decoded, totalLen, err := coder.Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if totalLen != uint32(LTVHeaderSize+5) {
		t.Errorf("Decode totalLen = %d, want %d", totalLen, LTVHeaderSize+5)
	}
	header, ok := decoded.GetHeader().(LTVHeader)
	if !ok {
		t.Fatalf("Decode header type = %T, want LTVHeader", decoded.GetHeader())
	}
	if header.Type != 7 || header.Length != 5 {
		t.Errorf("Decode header = %+v, want Type=7 Length=5", header)
	}
	if string(decoded.GetData()) != "hello" {
		t.Errorf("Decode data = %q, want %q", decoded.GetData(), "hello")
	}
}

func TestLTVProtocolCoderPartialBuffer(t *testing.T) {
	coder := NewLTVProtocolCoder(false)
	full, err := coder.Encode(NewLTVPacket(1, []byte("abcdef")))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	// 只给一半头部
	if packet, n, err := coder.Decode(full[:4]); packet != nil || n != 0 || err != nil {
		t.Errorf("Decode half header = (%v, %d, %v), want (nil, 0, nil)", packet, n, err)
	}
	// 头部完整 数据不足
	if packet, n, err := coder.Decode(full[:LTVHeaderSize+2]); packet != nil || n != 0 || err != nil {
		t.Errorf("Decode partial body = (%v, %d, %v), want (nil, 0, nil)", packet, n, err)
	}
	// 完整包外加多余字节 只消费一个包
	padded := append(append([]byte{}, full...), 0xff, 0xfe)
	packet, n, err := coder.Decode(padded)
	if err != nil || packet == nil {
		t.Fatalf("Decode padded = (%v, %d, %v), want packet", packet, n, err)
	}
	if n != uint32(len(full)) {
		t.Errorf("Decode padded consumed = %d, want %d", n, len(full))
	}
}

func TestLTVProtocolCoderMaxPacketSize(t *testing.T) {
	coder := NewLTVProtocolCoder(true)
	full, err := coder.Encode(NewLTVPacket(1, []byte("oversized")))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	coder.SetMaxPacketSize(4)
	if _, _, err = coder.Decode(full); !errors.Is(err, ErrInvalidPacket) {
		t.Errorf("Decode oversized err = %v, want ErrInvalidPacket", err)
	}
}

func TestLTVDispatcherSingleReply(t *testing.T) {
	dispatcher := NewLTVDispatcher(1, 100, int64(100*time.Millisecond))
	dispatcher.RegisterFunc(CmdEcho, func(ctx context.Context, conn network.IConnection, packet network.IPacket) container.MaybeList[network.IPacket] {
		return container.NewOne(NewLTVPacket(CmdEcho+1, packet.GetData()))
	})

	conn := &fakeConn{}
	dispatcher.DispatchMsg(context.Background(), conn, NewLTVPacket(CmdEcho, []byte("ping")))

	if len(conn.sentPackets) != 1 {
		t.Fatalf("sent %d packets, want 1", len(conn.sentPackets))
	}
	reply := conn.sentPackets[0]
	if header := reply.GetHeader().(LTVHeader); header.Type != CmdEcho+1 {
		t.Errorf("reply type = %d, want %d", header.Type, CmdEcho+1)
	}
	if string(reply.GetData()) != "ping" {
		t.Errorf("reply data = %q, want %q", reply.GetData(), "ping")
	}
}

func TestLTVDispatcherManyReplies(t *testing.T) {
	dispatcher := NewLTVDispatcher(1, 100, int64(100*time.Millisecond))
	dispatcher.RegisterFunc(CmdBurst, func(ctx context.Context, conn network.IConnection, packet network.IPacket) container.MaybeList[network.IPacket] {
		return container.NewMany[network.IPacket](
			NewLTVPacket(21, []byte("a")),
			NewLTVPacket(22, []byte("b")),
			NewLTVPacket(23, []byte("c")),
		)
	})

	conn := &fakeConn{}
	dispatcher.DispatchMsg(context.Background(), conn, NewLTVPacket(CmdBurst, nil))

	// 多值应答按容器消费顺序发出 即插入逆序
	wantTypes := []uint32{23, 22, 21}
	if len(conn.sentPackets) != len(wantTypes) {
		t.Fatalf("sent %d packets, want %d", len(conn.sentPackets), len(wantTypes))
	}
	for i, want := range wantTypes {
		header := conn.sentPackets[i].GetHeader().(LTVHeader)
		if header.Type != want {
			t.Errorf("sent[%d] type = %d, want %d", i, header.Type, want)
		}
	}
}

func TestLTVDispatcherNoReply(t *testing.T) {
	dispatcher := NewLTVDispatcher(1, 100, int64(100*time.Millisecond))
	executed := 0
	dispatcher.RegisterFunc(CmdDrop, func(ctx context.Context, conn network.IConnection, packet network.IPacket) container.MaybeList[network.IPacket] {
		executed++
		return container.NewMany[network.IPacket]()
	})

	conn := &fakeConn{}
	dispatcher.DispatchMsg(context.Background(), conn, NewLTVPacket(CmdDrop, nil))
	if executed != 1 {
		t.Fatalf("handler executed %d times, want 1", executed)
	}
	if len(conn.sentPackets) != 0 {
		t.Errorf("sent %d packets, want 0", len(conn.sentPackets))
	}

	// 未注册的命令不应崩溃也不应发包
	dispatcher.DispatchMsg(context.Background(), conn, NewLTVPacket(CmdEcho, nil))
	if len(conn.sentPackets) != 0 {
		t.Errorf("unregistered command sent %d packets, want 0", len(conn.sentPackets))
	}
}

func TestLTVDispatcherPauseResume(t *testing.T) {
	dispatcher := NewLTVDispatcher(1, 100, int64(100*time.Millisecond))
	dispatcher.RegisterFunc(CmdEcho, func(ctx context.Context, conn network.IConnection, packet network.IPacket) container.MaybeList[network.IPacket] {
		return container.NewOne(NewLTVPacket(CmdEcho+1, nil))
	})

	conn := &fakeConn{}
	dispatcher.Pause(CmdEcho)
	dispatcher.DispatchMsg(context.Background(), conn, NewLTVPacket(CmdEcho, nil))
	if len(conn.sentPackets) != 0 {
		t.Fatalf("paused command sent %d packets, want 0", len(conn.sentPackets))
	}

	dispatcher.Resume(CmdEcho)
	dispatcher.DispatchMsg(context.Background(), conn, NewLTVPacket(CmdEcho, nil))
	if len(conn.sentPackets) != 1 {
		t.Fatalf("resumed command sent %d packets, want 1", len(conn.sentPackets))
	}
}

func TestLTVDispatcherRegisterConflict(t *testing.T) {
	dispatcher := NewLTVDispatcher(1, 100, int64(100*time.Millisecond))
	noop := LTVHandlerFunc(func(ctx context.Context, conn network.IConnection, packet network.IPacket) container.MaybeList[network.IPacket] {
		return container.NewMany[network.IPacket]()
	})
	dispatcher.Register(CmdEcho, noop)

	mustPanic := func(name string, fn func()) {
		defer func() {
			if recover() == nil {
				t.Errorf("%s did not panic", name)
			}
		}()
		fn()
	}
	mustPanic("repeat register", func() { dispatcher.Register(CmdEcho, noop) })
	mustPanic("out of range register", func() { dispatcher.Register(101, noop) })
}

func TestLoadLTVServerConfig(t *testing.T) {
	content := []byte(`server_id: 7
ip: 127.0.0.1
port: 30101
ws_port: 30102
ws_path: /ws
mode: 1
max_conn: 64
max_packet_size: 65536
max_msg_q_size: 256
used_little_endian: true
timer_queue_size: 128
frequency: 100
connection:
  heartbeat: 5000
  max_heartbeat: 10000
  read_timeout: 1000
  write_timeout: 1000
  max_io_read_size: 4096
  send_queue_size: 32
`)
	path := filepath.Join(t.TempDir(), "server.yaml")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}

	srvConf, err := LoadLTVServerConfig(path)
	if err != nil {
		t.Fatalf("LoadLTVServerConfig failed: %v", err)
	}
	if srvConf.ServerID != 7 || srvConf.IP != "127.0.0.1" || srvConf.Port != 30101 {
		t.Errorf("server fields = %+v", srvConf)
	}
	if srvConf.Mode != NetMode_Tcp {
		t.Errorf("mode = %v, want %v", srvConf.Mode, NetMode_Tcp)
	}
	if srvConf.MaxPacketSize != 65536 || !srvConf.UsedLittleEndian {
		t.Errorf("packet fields = %+v", srvConf)
	}
	if srvConf.Connection == nil || srvConf.Connection.Heartbeat != 5000 || srvConf.Connection.SendQueueSize != 32 {
		t.Errorf("connection fields = %+v", srvConf.Connection)
	}

	if _, err = LoadLTVServerConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadLTVServerConfig on missing file did not fail")
	}
}

// freePort 申请一个空闲端口
func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func testServerConfig(port int) *LTVServerConfig {
	return &LTVServerConfig{
		IP:               "127.0.0.1",
		Port:             port,
		WsPath:           "/",
		Mode:             NetMode_Tcp,
		MaxConn:          10,
		MaxMsgQSize:      16,
		UsedLittleEndian: true,
		TimerQueueSize:   100,
		Frequency:        50,
		Connection: &LTVConnectionConfig{
			Heartbeat:     1000,
			MaxHeartbeat:  60000,
			ReadTimeout:   1000,
			WriteTimeout:  1000,
			MaxIOReadSize: 4096,
			SendQueueSize: 100,
		},
	}
}

// waitListen 等待服务器开始监听
func waitListen(t *testing.T, addr string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 100*time.Millisecond)
		if err == nil {
			conn.Close()
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("server %s not listening", addr)
}

// readPacket 从连接读取一个完整数据包
func readPacket(t *testing.T, conn net.Conn, coder network.IProtocolCoder, buffer *bytes.Buffer) network.IPacket {
	t.Helper()
	readBuf := make([]byte, 4096)
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		packet, totalLen, err := coder.Decode(buffer.Bytes())
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if packet != nil {
			buffer.Next(int(totalLen))
			return packet
		}
		n, err := conn.Read(readBuf)
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		buffer.Write(readBuf[:n])
	}
}

func TestLTVServerEcho(t *testing.T) {
	port := freePort(t)
	server := NewLTVServer(1, testServerConfig(port))
	server.RegisterHandlerFunc(CmdEcho, func(ctx context.Context, conn network.IConnection, packet network.IPacket) container.MaybeList[network.IPacket] {
		return container.NewOne(NewLTVPacket(CmdEcho+1, packet.GetData()))
	})
	server.RegisterHandlerFunc(CmdBurst, func(ctx context.Context, conn network.IConnection, packet network.IPacket) container.MaybeList[network.IPacket] {
		return container.NewMany[network.IPacket](
			NewLTVPacket(21, []byte("a")),
			NewLTVPacket(22, []byte("b")),
			NewLTVPacket(23, []byte("c")),
		)
	})
	server.Serve()
	defer server.Close()

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	waitListen(t, addr)

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	coder := NewLTVProtocolCoder(true)
	buffer := bytes.NewBuffer(nil)

	// 单应答
	request, err := coder.Encode(NewLTVPacket(CmdEcho, []byte("ping")))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if _, err = conn.Write(request); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	reply := readPacket(t, conn, coder, buffer)
	if header := reply.GetHeader().(LTVHeader); header.Type != CmdEcho+1 {
		t.Errorf("echo reply type = %d, want %d", header.Type, CmdEcho+1)
	}
	if string(reply.GetData()) != "ping" {
		t.Errorf("echo reply data = %q, want %q", reply.GetData(), "ping")
	}

	// 多应答 按容器消费顺序到达
	request, err = coder.Encode(NewLTVPacket(CmdBurst, nil))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if _, err = conn.Write(request); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	wantTypes := []uint32{23, 22, 21}
	wantData := []string{"c", "b", "a"}
	for i := range wantTypes {
		reply = readPacket(t, conn, coder, buffer)
		header := reply.GetHeader().(LTVHeader)
		if header.Type != wantTypes[i] {
			t.Errorf("burst reply[%d] type = %d, want %d", i, header.Type, wantTypes[i])
		}
		if string(reply.GetData()) != wantData[i] {
			t.Errorf("burst reply[%d] data = %q, want %q", i, reply.GetData(), wantData[i])
		}
	}
}

func TestLTVClientEcho(t *testing.T) {
	port := freePort(t)
	server := NewLTVServer(2, testServerConfig(port))
	server.RegisterHandlerFunc(CmdEcho, func(ctx context.Context, conn network.IConnection, packet network.IPacket) container.MaybeList[network.IPacket] {
		return container.NewOne(NewLTVPacket(CmdEcho+1, packet.GetData()))
	})
	server.Serve()
	defer server.Close()

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	waitListen(t, addr)

	cliConf := &LTVClientConfig{
		IP:               "127.0.0.1",
		Port:             port,
		Mode:             NetMode_Tcp,
		UsedLittleEndian: true,
		Connection: &LTVConnectionConfig{
			Heartbeat:     1000,
			MaxHeartbeat:  60000,
			ReadTimeout:   1000,
			WriteTimeout:  1000,
			MaxIOReadSize: 4096,
			SendQueueSize: 100,
		},
	}
	client := NewLTVClient(cliConf)
	received := make(chan network.IPacket, 1)
	client.SetDispatchMsg(func(conn network.IConnection, packet network.IPacket) {
		received <- packet
	})
	client.SetOnConnect(func(conn network.IConnection) {
		if err := conn.SendPacketToQueue(NewLTVPacket(CmdEcho, []byte("ping"))); err != nil {
			t.Errorf("send failed: %v", err)
		}
	})
	client.Start()
	defer client.Close()

	select {
	case reply := <-received:
		if header := reply.GetHeader().(LTVHeader); header.Type != CmdEcho+1 {
			t.Errorf("reply type = %d, want %d", header.Type, CmdEcho+1)
		}
		if string(reply.GetData()) != "ping" {
			t.Errorf("reply data = %q, want %q", reply.GetData(), "ping")
		}
	case err := <-client.ErrChan:
		t.Fatalf("client error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for reply")
	}
}

func TestLTVWebsocketEcho(t *testing.T) {
	port := freePort(t)
	srvConf := testServerConfig(port)
	srvConf.Mode = NetMode_Websocket
	srvConf.WsPort = port
	server := NewLTVServer(3, srvConf)
	server.RegisterHandlerFunc(CmdEcho, func(ctx context.Context, conn network.IConnection, packet network.IPacket) container.MaybeList[network.IPacket] {
		return container.NewOne(NewLTVPacket(CmdEcho+1, packet.GetData()))
	})
	server.RegisterHandlerFunc(CmdBurst, func(ctx context.Context, conn network.IConnection, packet network.IPacket) container.MaybeList[network.IPacket] {
		return container.NewMany[network.IPacket](
			NewLTVPacket(21, []byte("a")),
			NewLTVPacket(22, []byte("b")),
		)
	})
	server.Serve()
	defer server.Close()

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	waitListen(t, addr)

	cliConf := &LTVClientConfig{
		IP:               "127.0.0.1",
		Port:             port,
		Mode:             NetMode_Websocket,
		UsedLittleEndian: true,
		Connection: &LTVConnectionConfig{
			Heartbeat:     1000,
			MaxHeartbeat:  60000,
			ReadTimeout:   1000,
			WriteTimeout:  1000,
			MaxIOReadSize: 4096,
			SendQueueSize: 100,
		},
	}
	client := NewLTVClient(cliConf)
	received := make(chan network.IPacket, 4)
	client.SetDispatchMsg(func(conn network.IConnection, packet network.IPacket) {
		received <- packet
	})
	client.SetOnConnect(func(conn network.IConnection) {
		if err := conn.SendPacketToQueue(NewLTVPacket(CmdEcho, []byte("ping"))); err != nil {
			t.Errorf("send failed: %v", err)
		}
	})
	client.Start()
	defer client.Close()

	waitReply := func() network.IPacket {
		t.Helper()
		select {
		case reply := <-received:
			return reply
		case err := <-client.ErrChan:
			t.Fatalf("client error: %v", err)
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for reply")
		}
		return nil
	}

	// 单应答
	reply := waitReply()
	if header := reply.GetHeader().(LTVHeader); header.Type != CmdEcho+1 {
		t.Errorf("echo reply type = %d, want %d", header.Type, CmdEcho+1)
	}
	if string(reply.GetData()) != "ping" {
		t.Errorf("echo reply data = %q, want %q", reply.GetData(), "ping")
	}

	// 多应答 同一条websocket连接 按容器消费顺序逐帧到达
	if err := client.Connection().SendPacketToQueue(NewLTVPacket(CmdBurst, nil)); err != nil {
		t.Fatalf("send burst failed: %v", err)
	}
	wantTypes := []uint32{22, 21}
	wantData := []string{"b", "a"}
	for i := range wantTypes {
		reply = waitReply()
		header := reply.GetHeader().(LTVHeader)
		if header.Type != wantTypes[i] {
			t.Errorf("burst reply[%d] type = %d, want %d", i, header.Type, wantTypes[i])
		}
		if string(reply.GetData()) != wantData[i] {
			t.Errorf("burst reply[%d] data = %q, want %q", i, reply.GetData(), wantData[i])
		}
	}
}
