package gpool

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"

	"maybe_list/common/container"
)

// RunCollect 并发执行一组计算并收集结果
// 结果按任务下标顺序保存 收集语义决定返回值永远是 Many 变体
// 某个任务 panic 时记录日志 该位置保留零值
func RunCollect[T any](ctx context.Context, tasks []func(ctx context.Context) T) container.MaybeList[T] {
	results := make([]T, len(tasks))
	wg := sync.WaitGroup{}
	for i, task := range tasks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if err := recover(); err != nil {
					slog.Error("[RunCollect] task panic", slog.Int("index", i), slog.Any("error", err), slog.String("stack", string(debug.Stack())))
				}
			}()
			results[i] = task(ctx)
		}()
	}
	wg.Wait()
	return container.NewMany(results...)
}
