package container

import "testing"

func TestSortedMapInsertOrder(t *testing.T) {
	m := NewSortedMap[int, string]()
	m.Insert(3, "c")
	m.Insert(1, "a")
	m.Insert(2, "b")
	m.Insert(1, "a2") // 重复键只更新值

	if m.Size() != 3 {
		t.Fatalf("size = %d, want 3", m.Size())
	}
	if m.Get(1) != "a2" {
		t.Errorf("get(1) = %q, want a2", m.Get(1))
	}

	var keys []int
	for k := range m.Iter() {
		keys = append(keys, k)
	}
	if len(keys) != 3 || keys[0] != 1 || keys[1] != 2 || keys[2] != 3 {
		t.Errorf("iter keys = %v, want [1 2 3]", keys)
	}
}

func TestSortedMapDelete(t *testing.T) {
	m := NewSortedMap[int, int]()
	for _, k := range []int{5, 2, 8} {
		m.Insert(k, k*10)
	}
	m.Delete(2) // 头节点
	m.Delete(9) // 不存在
	if m.Exist(2) || m.Size() != 2 {
		t.Error("delete head failed")
	}
	if m.Begin().Key != 5 {
		t.Errorf("begin = %v, want 5", m.Begin().Key)
	}
	m.Delete(8)
	if m.Find(8) != nil {
		t.Error("find should miss deleted key")
	}
}

func TestSortedMapValuesBetween(t *testing.T) {
	m := NewSortedMap[int, string]()
	for k, v := range map[int]string{10: "x", 20: "y", 30: "z"} {
		m.Insert(k, v)
	}

	// 区间只命中一个键 One 变体
	one := m.ValuesBetween(15, 25)
	if !one.IsOne() || one.Size() != 1 {
		t.Errorf("single hit = %v", one)
	}
	if val, _ := NewMaybeListIter(one).Next(); val != "y" {
		t.Errorf("single hit yields %q, want y", val)
	}

	// 命中多个 Many 变体 键升序保存
	many := m.ValuesBetween(10, 30)
	if !many.IsMany() || many.Size() != 3 {
		t.Errorf("multi hit = %v", many)
	}

	// 无命中 空的 Many
	miss := m.ValuesBetween(40, 50)
	if !miss.IsMany() || !miss.Empty() {
		t.Errorf("miss = %v", miss)
	}
}
