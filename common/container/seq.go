package container

import "iter"

// SeqOf 把若干值包装成惰性序列
// 按传入顺序产出 配合 CollectSeq 使用
func SeqOf[T any](items ...T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, item := range items {
			if !yield(item) {
				return
			}
		}
	}
}
