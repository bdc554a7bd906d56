package timer

import "testing"

type recordOuter struct {
	fired []int64
}

func (r *recordOuter) TimeOut(nowTm int64) {
	r.fired = append(r.fired, nowTm)
}

func TestTimerManagerRunOnce(t *testing.T) {
	tm := NewTimerManager(16)
	outer := &recordOuter{}

	id := tm.AddTimer(outer, 100, 0)
	if id == 0 {
		t.Fatal("add timer failed")
	}

	// 未到触发时间
	check, call := tm.Run(50, 0)
	if check != 1 || call != 0 {
		t.Errorf("early run = (%d, %d), want (1, 0)", check, call)
	}
	if len(outer.fired) != 0 {
		t.Error("timer fired early")
	}

	// 到期触发 一次性定时器不会再次触发
	_, call = tm.Run(100, 0)
	if call != 1 || len(outer.fired) != 1 || outer.fired[0] != 100 {
		t.Errorf("run = call %d fired %v", call, outer.fired)
	}
	_, call = tm.Run(200, 0)
	if call != 0 {
		t.Errorf("one-shot timer fired again, call = %d", call)
	}
}

func TestTimerManagerInterval(t *testing.T) {
	tm := NewTimerManager(16)
	outer := &recordOuter{}

	tm.AddTimer(outer, 10, 10)
	for now := int64(10); now <= 40; now += 10 {
		tm.Run(now, 0)
	}
	// 周期定时器按间隔重复触发
	if len(outer.fired) != 4 {
		t.Errorf("interval timer fired %d times, want 4", len(outer.fired))
	}
}

func TestTimerManagerEarliestFirst(t *testing.T) {
	tm := NewTimerManager(16)
	outer := &recordOuter{}

	// 乱序添加 按到期时间先后触发
	tm.AddTimer(&fixedOuter{outer, 3}, 30, 0)
	tm.AddTimer(&fixedOuter{outer, 1}, 10, 0)
	tm.AddTimer(&fixedOuter{outer, 2}, 20, 0)

	tm.Run(100, 0)
	if len(outer.fired) != 3 || outer.fired[0] != 1 || outer.fired[1] != 2 || outer.fired[2] != 3 {
		t.Errorf("fire order = %v, want [1 2 3]", outer.fired)
	}
}

type fixedOuter struct {
	sink *recordOuter
	mark int64
}

func (f *fixedOuter) TimeOut(nowTm int64) {
	f.sink.fired = append(f.sink.fired, f.mark)
}

func TestTimerManagerRemove(t *testing.T) {
	tm := NewTimerManager(16)
	outer := &recordOuter{}

	id := tm.AddTimer(outer, 10, 0)
	tm.AddTimer(outer, 20, 0)
	tm.RemoveTimer(id)

	tm.Run(100, 0)
	if len(outer.fired) != 1 {
		t.Errorf("fired %d times after remove, want 1", len(outer.fired))
	}
}

func TestTimerManagerLimit(t *testing.T) {
	tm := NewTimerManager(16)
	outer := &recordOuter{}
	for i := int64(1); i <= 5; i++ {
		tm.AddTimer(outer, i, 0)
	}

	// 单次执行上限
	_, call := tm.Run(100, 2)
	if call != 2 {
		t.Errorf("limited run call = %d, want 2", call)
	}
	_, call = tm.Run(100, 0)
	if call != 3 {
		t.Errorf("follow-up run call = %d, want 3", call)
	}
}

func TestTimerManagerFull(t *testing.T) {
	tm := NewTimerManager(2)
	outer := &recordOuter{}
	if id := tm.AddTimer(outer, 1, 0); id == 0 {
		t.Fatal("first add failed")
	}
	if id := tm.AddTimer(outer, 2, 0); id == 0 {
		t.Fatal("second add failed")
	}
	// 队列已满 拒绝并返回 0
	if id := tm.AddTimer(outer, 3, 0); id != 0 {
		t.Errorf("overflow add id = %d, want 0", id)
	}
}
