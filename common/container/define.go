package container

type None struct{}

// Measurable 只读规模接口 只暴露是否为空和元素个数
type Measurable interface {
	Empty() bool
	Size() int
}

// Container 容器接口
type Container[T any] interface {
	Measurable
	Clear()
	Value() []T
}

var (
	_ Container[int] = (*Queue[int])(nil)
	_ Container[int] = (*Set[int])(nil)
	_ Measurable     = MaybeList[int]{}
)
