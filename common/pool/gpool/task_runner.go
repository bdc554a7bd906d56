package gpool

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"

	"maybe_list/common/container"
)

var (
	ErrTaskRunnerBusy = errors.New("task runner is busy")
)

type PanicHandler func(ctx context.Context, throwValue any)

// TaskFunc 任务函数
type TaskFunc func(ctx context.Context)

// Task 任务
type Task struct {
	Ctx      context.Context // 上下文
	TaskFunc TaskFunc        // 任务函数
}

// TaskRunner 任务执行器
type TaskRunner struct {
	panicHandler PanicHandler        // 异常处理函数
	limitChan    chan container.None // 任务队列
	wg           sync.WaitGroup      // 等待组
}

// NewTaskRunner 创建任务执行器
// @param taskQueueSize 任务队列大小
// @param panicHandler 异常处理函数
// @return *TaskRunner
func NewTaskRunner(taskQueueSize int, panicHandler PanicHandler) *TaskRunner {
	if panicHandler == nil {
		panicHandler = func(ctx context.Context, throwValue any) {
			slog.Error("[TaskRunner] panic", "throwValue", throwValue)
		}
	}

	return &TaskRunner{
		panicHandler: panicHandler,
		limitChan:    make(chan container.None, taskQueueSize),
		wg:           sync.WaitGroup{},
	}
}

// Submit 提交任务
// 并发任务数达到上限时阻塞到有空位
func (tr *TaskRunner) Submit(task Task) {
	tr.wg.Add(1)
	tr.limitChan <- container.None{}

	go func() {
		defer func() {
			tr.wg.Done()
			<-tr.limitChan
		}()
		defer func() {
			if err := recover(); err != nil {
				tr.panicHandler(task.Ctx, err)
			}
		}()
		task.TaskFunc(task.Ctx)
	}()
}

// SubmitEach 批量提交任务
// 消费传入的容器 提交顺序为容器的消费顺序
func (tr *TaskRunner) SubmitEach(tasks container.MaybeList[Task]) {
	for task := range tasks.Iter() {
		tr.Submit(task)
	}
}

// SubmitImmediately 提交任务 队列已满时不阻塞 返回 ErrTaskRunnerBusy
func (tr *TaskRunner) SubmitImmediately(task Task) error {
	tr.wg.Add(1)
	select {
	case tr.limitChan <- container.None{}:
	default:
		tr.wg.Done()
		return ErrTaskRunnerBusy
	}

	go func() {
		defer func() {
			tr.wg.Done()
			<-tr.limitChan
		}()
		defer func() {
			if err := recover(); err != nil {
				slog.Error("[TaskRunner] SubmitImmediately panic", "throwValue", err, "stack", string(debug.Stack()))
				tr.panicHandler(task.Ctx, err)
			}
		}()
		task.TaskFunc(task.Ctx)
	}()

	return nil
}

// Close 关闭任务执行器
func (tr *TaskRunner) Close() {
	close(tr.limitChan)
	tr.wg.Wait()
}
