package container

import (
	"fmt"
	"iter"
)

// MaybeList 单值或多值容器
// 针对大多数情况只产生一个结果 偶尔产生多个结果的调用场景
// One 变体把唯一元素内联在结构体里 容器本身不额外分配堆内存
// Many 变体持有保持插入顺序的切片 元素个数可以是 0 1 或多个
// 两个变体只区分存储方式 不约束元素个数
// 零值等价于空的 Many
type MaybeList[T any] struct {
	item T    // One 变体的唯一元素
	list []T  // Many 变体的有序数据
	one  bool // 变体标签
}

// NewOne 用单个值构造 One 变体
// 即从单值到容器的转换 不发生内存分配 永远成功
func NewOne[T any](item T) MaybeList[T] {
	return MaybeList[T]{item: item, one: true}
}

// NewMany 用已物化的序列构造 Many 变体
// 直接持有传入的切片 保持原有顺序 不做额外拷贝
// 展开传参时切片所有权转移给容器 调用方不应继续使用原切片
// 不传元素得到空的 Many 永远成功
func NewMany[T any](items ...T) MaybeList[T] {
	return MaybeList[T]{list: items}
}

// CollectSeq 收集惰性序列构造 Many 变体
// 按产出顺序排空有限序列到新分配的切片
// 无论收集到 0 个 1 个还是多个元素 结果都是 Many
// 这是流水线式计算在不知道元素个数时产出容器的标准方式
func CollectSeq[T any](seq iter.Seq[T]) MaybeList[T] {
	var items []T
	for item := range seq {
		items = append(items, item)
	}
	return MaybeList[T]{list: items}
}

// Size 获取元素个数
// One 恒为 1 Many 为切片长度
func (ml MaybeList[T]) Size() int {
	if ml.one {
		return 1
	}
	return len(ml.list)
}

// Empty 判断容器是否为空
// 定义为 Size() == 0 只有空的 Many 变体满足
func (ml MaybeList[T]) Empty() bool {
	return ml.Size() == 0
}

// IsOne 判断是否为 One 变体
func (ml MaybeList[T]) IsOne() bool {
	return ml.one
}

// IsMany 判断是否为 Many 变体
func (ml MaybeList[T]) IsMany() bool {
	return !ml.one
}

// String 调试输出 呈现变体标签和内容
// 仅用于诊断 不承诺格式兼容
func (ml MaybeList[T]) String() string {
	if ml.one {
		return fmt.Sprintf("MaybeList{one: %v}", ml.item)
	}
	return fmt.Sprintf("MaybeList{many: %v}", ml.list)
}

// Iter 消费式迭代器
// 进入迭代即消费容器 原值不应再使用 产出顺序与 MaybeListIter 一致
func (ml MaybeList[T]) Iter() iter.Seq[T] {
	return func(yield func(T) bool) {
		it := NewMaybeListIter(ml)
		for {
			item, ok := it.Next()
			if !ok {
				return
			}
			if !yield(item) {
				return
			}
		}
	}
}

// MaybeListIter 消费式迭代器
// 持有容器的全部内容 逐个转移元素
type MaybeListIter[T any] struct {
	item  T    // One 变体的唯一元素
	list  []T  // Many 变体的剩余数据
	one   bool // 变体标签
	taken bool // One 变体的元素是否已取走
}

// NewMaybeListIter 创建消费式迭代器
// 容器内容转移给迭代器 原容器值不应再使用 也不能二次迭代
func NewMaybeListIter[T any](ml MaybeList[T]) *MaybeListIter[T] {
	return &MaybeListIter[T]{
		item: ml.item,
		list: ml.list,
		one:  ml.one,
	}
}

// Next 产出下一个元素
// One 变体产出唯一元素
// Many 变体从尾部弹出 即按插入顺序的逆序产出 单步 O(1) 不搬移剩余元素
// 耗尽后每次调用都返回 false 不会复活也不会报错
func (it *MaybeListIter[T]) Next() (val T, ok bool) {
	if it.one {
		if it.taken {
			return
		}
		it.taken = true
		return it.item, true
	}
	index := len(it.list) - 1
	if index < 0 {
		return
	}
	val = it.list[index]
	it.list = it.list[:index]
	return val, true
}

// Size 获取剩余元素个数
// 任意时刻都精确等于尚未产出的元素个数
func (it *MaybeListIter[T]) Size() int {
	if it.one {
		if it.taken {
			return 0
		}
		return 1
	}
	return len(it.list)
}
