package container

import "testing"

func TestQueuePushPop(t *testing.T) {
	q := NewQueue[int]()
	if !q.Empty() || q.Size() != 0 {
		t.Fatal("new queue should be empty")
	}

	for i := 1; i <= 100; i++ {
		q.Push(i)
	}
	if q.Size() != 100 {
		t.Fatalf("size = %d, want 100", q.Size())
	}
	// 先进先出
	for i := 1; i <= 100; i++ {
		if val := q.Pop(); val != i {
			t.Fatalf("pop = %d, want %d", val, i)
		}
	}
	if !q.Empty() {
		t.Error("queue should be empty after draining")
	}
	// 空队列弹出零值
	if val := q.Pop(); val != 0 {
		t.Errorf("pop on empty = %d, want 0", val)
	}
}

func TestQueueValueAndClear(t *testing.T) {
	q := NewQueue[string]()
	q.Push("a")
	q.Push("b")
	values := q.Value()
	if len(values) != 2 || values[0] != "a" || values[1] != "b" {
		t.Errorf("value = %v", values)
	}
	// Value 不出队
	if q.Size() != 2 {
		t.Errorf("size after value = %d, want 2", q.Size())
	}
	q.Clear()
	if !q.Empty() {
		t.Error("queue should be empty after clear")
	}
}

func TestQueuePopN(t *testing.T) {
	q := NewQueue[int]()
	for i := 1; i <= 5; i++ {
		q.Push(i)
	}

	// 恰好弹出一个 One 变体
	one := q.PopN(1)
	if !one.IsOne() || one.Size() != 1 {
		t.Errorf("popn(1) = %v", one)
	}
	if val, _ := NewMaybeListIter(one).Next(); val != 1 {
		t.Errorf("popn(1) yields %d, want 1", val)
	}

	// 弹出多个 Many 变体 队列顺序保存 消费时逆序
	many := q.PopN(3)
	if !many.IsMany() || many.Size() != 3 {
		t.Errorf("popn(3) = %v", many)
	}
	var got []int
	for v := range many.Iter() {
		got = append(got, v)
	}
	if got[0] != 4 || got[1] != 3 || got[2] != 2 {
		t.Errorf("popn(3) yields %v, want [4 3 2]", got)
	}

	// 超出剩余个数 只弹出剩余的
	rest := q.PopN(10)
	if !rest.IsOne() || rest.Size() != 1 {
		t.Errorf("popn beyond size = %v", rest)
	}

	// 空队列或非法个数 空的 Many
	if empty := q.PopN(3); !empty.IsMany() || !empty.Empty() {
		t.Errorf("popn on empty = %v", empty)
	}
	q.Push(9)
	if invalid := q.PopN(0); !invalid.Empty() {
		t.Errorf("popn(0) = %v", invalid)
	}
}

func TestQueueIter(t *testing.T) {
	q := NewQueue[int]()
	for i := 1; i <= 3; i++ {
		q.Push(i)
	}
	var got []int
	for v := range q.Iter() {
		got = append(got, v)
	}
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Errorf("iter yields %v, want [1 2 3]", got)
	}
	// 迭代不出队
	if q.Size() != 3 {
		t.Errorf("size after iter = %d, want 3", q.Size())
	}
}

func TestQueueExpand(t *testing.T) {
	q := NewQueue[int]()
	// 超过初始容量触发扩容
	for i := 0; i < initCapacity*4; i++ {
		q.Push(i)
	}
	if q.Size() != initCapacity*4 {
		t.Fatalf("size = %d, want %d", q.Size(), initCapacity*4)
	}
	for i := 0; i < initCapacity*4; i++ {
		if val := q.Pop(); val != i {
			t.Fatalf("pop = %d, want %d", val, i)
		}
	}
}
