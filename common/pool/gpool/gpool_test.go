package gpool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"maybe_list/common/container"
)

func TestPoolSubmit(t *testing.T) {
	pool := NewPool(4, 16)
	defer pool.Close()

	var counter int64
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		pool.Submit(Job{
			WorkerID: i,
			Ctx:      context.Background(),
			Handler: func(ctx context.Context) error {
				defer wg.Done()
				atomic.AddInt64(&counter, 1)
				return nil
			},
		})
	}
	wg.Wait()
	if got := atomic.LoadInt64(&counter); got != 32 {
		t.Errorf("executed = %d, want 32", got)
	}
}

func TestPoolSubmitEach(t *testing.T) {
	pool := NewPool(2, 8)
	defer pool.Close()

	var counter int64
	var wg sync.WaitGroup
	wg.Add(3)
	job := func(ctx context.Context) error {
		defer wg.Done()
		atomic.AddInt64(&counter, 1)
		return nil
	}
	pool.SubmitEach(container.NewMany(
		Job{WorkerID: 0, Ctx: context.Background(), Handler: job},
		Job{WorkerID: 1, Ctx: context.Background(), Handler: job},
		Job{WorkerID: 2, Ctx: context.Background(), Handler: job},
	))
	wg.Wait()
	if got := atomic.LoadInt64(&counter); got != 3 {
		t.Errorf("executed = %d, want 3", got)
	}
}

func TestTaskRunnerSubmit(t *testing.T) {
	runner := NewTaskRunner(4, nil)

	var counter int64
	var wg sync.WaitGroup
	// 提交数量超过并发上限 验证空位会被释放
	for i := 0; i < 16; i++ {
		wg.Add(1)
		runner.Submit(Task{
			Ctx: context.Background(),
			TaskFunc: func(ctx context.Context) {
				defer wg.Done()
				atomic.AddInt64(&counter, 1)
			},
		})
	}
	wg.Wait()
	runner.Close()
	if got := atomic.LoadInt64(&counter); got != 16 {
		t.Errorf("executed = %d, want 16", got)
	}
}

func TestTaskRunnerSubmitImmediately(t *testing.T) {
	runner := NewTaskRunner(1, nil)

	block := make(chan container.None)
	done := make(chan container.None)
	err := runner.SubmitImmediately(Task{
		Ctx: context.Background(),
		TaskFunc: func(ctx context.Context) {
			<-block
			close(done)
		},
	})
	if err != nil {
		t.Fatalf("first submit err: %v", err)
	}

	// 队列已满 立即返回忙
	err = runner.SubmitImmediately(Task{
		Ctx:      context.Background(),
		TaskFunc: func(ctx context.Context) {},
	})
	if err != ErrTaskRunnerBusy {
		t.Errorf("second submit err = %v, want ErrTaskRunnerBusy", err)
	}

	close(block)
	<-done
	runner.Close()
}

func TestTaskRunnerPanicHandler(t *testing.T) {
	caught := make(chan any, 1)
	runner := NewTaskRunner(2, func(ctx context.Context, throwValue any) {
		caught <- throwValue
	})

	runner.Submit(Task{
		Ctx: context.Background(),
		TaskFunc: func(ctx context.Context) {
			panic("boom")
		},
	})

	select {
	case got := <-caught:
		if got != "boom" {
			t.Errorf("panic value = %v, want boom", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("panic handler not called")
	}
	runner.Close()
}

func TestRunCollect(t *testing.T) {
	tasks := make([]func(ctx context.Context) int, 4)
	for i := range tasks {
		tasks[i] = func(ctx context.Context) int {
			return i * i
		}
	}
	results := RunCollect(context.Background(), tasks)
	// 收集语义 永远是 Many
	if !results.IsMany() || results.Size() != 4 {
		t.Fatalf("results = %v", results)
	}
	var got []int
	for v := range results.Iter() {
		got = append(got, v)
	}
	// 消费顺序为下标逆序
	want := []int{9, 4, 1, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %d, want %d", i, got[i], want[i])
		}
	}

	// 空任务组
	empty := RunCollect[int](context.Background(), nil)
	if !empty.IsMany() || !empty.Empty() {
		t.Errorf("empty results = %v", empty)
	}
}
