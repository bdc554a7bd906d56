package profile

import (
	"fmt"
	"log/slog"
	"net/http"
	httppprof "net/http/pprof"
	"os"
	"runtime"
	"runtime/debug"
	"runtime/pprof"
	"strings"
	"sync"
	"text/tabwriter"
	"time"
)

// ProfileManager 性能分析管理器
type ProfileManager struct {
	lock             sync.Mutex
	inMemoryAnalysis bool     // 是否内存分析中
	profileIndex     int      // 文件索引
	filename         string   // 文件名
	memoryFile       *os.File // 内存导出文件
}

// NewProfileManager 构造函数
func NewProfileManager() *ProfileManager {
	return &ProfileManager{}
}

// ProcessForceGC 强制调用一次GC
func (p *ProfileManager) ProcessForceGC(w http.ResponseWriter, r *http.Request) {
	runtime.GC()

	memoryStats := p.getMemoryStats()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "The forced call to GC was successful, memory trace:\n%s\nTry /debug/pprof/memory/open to start memory analysis", memoryStats)
}

// ProcessMemoryStats 查看当前内存状态
func (p *ProfileManager) ProcessMemoryStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, p.getMemoryStats())
}

// ProcessMemoryAnalysis 开始内存分析 导出一份堆profile文件
func (p *ProfileManager) ProcessMemoryAnalysis(w http.ResponseWriter, r *http.Request) {
	p.lock.Lock()
	defer p.lock.Unlock()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	// WEB 界面显示结果 避免重复开启
	if p.inMemoryAnalysis {
		fmt.Fprintf(w, "Memory analysis already open... Try /debug/pprof/memory/stop to stop")
		return
	}
	p.profileIndex++
	// 内存文件导出
	filename := fmt.Sprintf("memory.profile.%s.%d", time.Now().Format("2006-01-02"), p.profileIndex)
	memoryFile, err := os.OpenFile(filename, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		fmt.Fprintf(w, "create memory analysis profile failed, err:%v", err)
		return
	}
	if err = pprof.WriteHeapProfile(memoryFile); err != nil {
		memoryFile.Close()
		fmt.Fprintf(w, "generate memory analysis profile failed, err:%v", err)
		return
	}
	p.inMemoryAnalysis = true
	p.filename = filename
	p.memoryFile = memoryFile
	fmt.Fprintf(w, "pprof memory analysis is start, profile: %s, Try /debug/pprof/memory/stop to stop", filename)
}

// ProcessMemoryAnalysisStop 停止内存分析
func (p *ProfileManager) ProcessMemoryAnalysisStop(w http.ResponseWriter, r *http.Request) {
	p.lock.Lock()
	defer p.lock.Unlock()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if !p.inMemoryAnalysis {
		fmt.Fprintf(w, "Memory analysis is not open... Try /debug/pprof/memory/open to start")
		return
	}
	p.inMemoryAnalysis = false
	if p.memoryFile != nil {
		p.memoryFile.Close()
		p.memoryFile = nil
	}
	memStats := p.getMemoryStats()
	fmt.Fprintf(w, "memory analysis is stop, memory trace:\n%s\nTry /debug/pprof/memory/open to start again", memStats)
}

// getMemoryStats 获取内存状态字符串
func (p *ProfileManager) getMemoryStats() string {
	var (
		memStats      runtime.MemStats
		memTabBuilder strings.Builder
	)

	runtime.ReadMemStats(&memStats)

	// 使用 tabWriter 对齐列
	tabWriter := tabwriter.NewWriter(&memTabBuilder, 0, 0, 2, ' ', 0)
	// 表头
	fmt.Fprintf(tabWriter, "字段名\t字段值\t说明\n")
	// 添加字段内容
	fmt.Fprintf(tabWriter, "Alloc\t %d \t当前正在使用的堆内存字节数(≈ HeapAlloc)\n", memStats.Alloc)
	fmt.Fprintf(tabWriter, "TotalAlloc\t %d \t程序运行以来累计分配的堆内存总量\n", memStats.TotalAlloc)
	fmt.Fprintf(tabWriter, "Sys\t %d \t向操作系统申请的内存总量 (堆+栈+runtime)\n", memStats.Sys)
	fmt.Fprintf(tabWriter, "Mallocs\t %d \t累计分配的堆对象数\n", memStats.Mallocs)
	fmt.Fprintf(tabWriter, "Frees\t %d \t累计释放的堆对象数\n", memStats.Frees)
	fmt.Fprintf(tabWriter, "HeapAlloc\t %d \t堆上已分配、仍存活的对象字节数\n", memStats.HeapAlloc)
	fmt.Fprintf(tabWriter, "HeapSys\t %d \t堆向操作系统申请的总字节数\n", memStats.HeapSys)
	fmt.Fprintf(tabWriter, "HeapIdle\t %d \t空闲(未使用)的堆内存字节数\n", memStats.HeapIdle)
	fmt.Fprintf(tabWriter, "HeapInuse\t %d \t正在使用的堆内存字节数\n", memStats.HeapInuse)
	fmt.Fprintf(tabWriter, "HeapReleased\t %d \t已释放回操作系统的堆内存字节数\n", memStats.HeapReleased)
	fmt.Fprintf(tabWriter, "HeapObjects\t %d \t当前存活的堆对象数\n", memStats.HeapObjects)
	fmt.Fprintf(tabWriter, "NumGC\t %d \t完成的垃圾回收次数\n", memStats.NumGC)
	fmt.Fprintf(tabWriter, "PauseTotalNs\t %d \t垃圾回收累计暂停时间(纳秒)\n", memStats.PauseTotalNs)
	fmt.Fprintf(tabWriter, "GCCPUFraction\t %f \tGC 占用 CPU 时间的比例 (0~1)\n", memStats.GCCPUFraction)

	// 写入
	tabWriter.Flush()
	// 以字符串形式返回
	return memTabBuilder.String()
}

// ListenProfile 开始监听
// pprof相关路由注册在独立mux上
func (p *ProfileManager) ListenProfile(addr string) {
	go func() {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("[ProfileManager] ListenProfile critical", slog.Any("err", err), slog.String("stack", string(debug.Stack())))
			}
		}()
		mux := http.NewServeMux()
		// 标准pprof入口
		mux.HandleFunc("/debug/pprof/", httppprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", httppprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", httppprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", httppprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", httppprof.Trace)
		// 内存分析扩展入口
		mux.HandleFunc("/debug/pprof/memory/gc", p.ProcessForceGC)
		mux.HandleFunc("/debug/pprof/memory/stats", p.ProcessMemoryStats)
		mux.HandleFunc("/debug/pprof/memory/open", p.ProcessMemoryAnalysis)
		mux.HandleFunc("/debug/pprof/memory/stop", p.ProcessMemoryAnalysisStop)

		// start service
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("[ProfileManager] ListenProfile serve failed", slog.String("addr", addr), slog.Any("err", err))
		}
	}()
}
