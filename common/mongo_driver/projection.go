package mongo_driver

// Projection 投影 用于控制文档返回字段的内容
type Projection D

// ProjectionBuilder 投影构建器
type ProjectionBuilder struct {
	fields      map[string]struct{} // 已出现的字段 重复设置无效
	projections Projection
}

// NewProjectionBuilder 创建投影构建器
func NewProjectionBuilder() *ProjectionBuilder {
	return &ProjectionBuilder{
		fields:      make(map[string]struct{}),
		projections: Projection{},
	}
}

// Build 构建投影
func (pb *ProjectionBuilder) Build() Projection {
	return pb.projections
}

// addField 记录字段投影 重复字段忽略
func (pb *ProjectionBuilder) addField(field string, value any) *ProjectionBuilder {
	if _, ok := pb.fields[field]; ok {
		return pb
	}
	pb.fields[field] = struct{}{}
	pb.projections = append(pb.projections, E{Key: field, Value: value})
	return pb
}

// Fields 指定返回哪些字段 重复设置无效
func (pb *ProjectionBuilder) Fields(fields ...string) *ProjectionBuilder {
	for _, field := range fields {
		pb.addField(field, 1)
	}
	return pb
}

// Excludes 指定不返回哪些字段
func (pb *ProjectionBuilder) Excludes(fields ...string) *ProjectionBuilder {
	for _, field := range fields {
		pb.addField(field, 0)
	}
	return pb
}

// Only 指定返回单个字段 会排除 '_id'
func (pb *ProjectionBuilder) Only(field string) *ProjectionBuilder {
	pb.Fields(field).Excludes("_id")
	return pb
}

// FirstMatchSliceElem 仅返回数组中第一个匹配的元素
func (pb *ProjectionBuilder) FirstMatchSliceElem(field string) *ProjectionBuilder {
	pb.Only(field + ".$")
	return pb
}

// ElementMatch 仅返回数组中匹配的元素
func (pb *ProjectionBuilder) ElementMatch(field string, filter Filter) *ProjectionBuilder {
	return pb.addField(field, filter)
}

// Slice 返回数组指定位置开始的指定个数元素
func (pb *ProjectionBuilder) Slice(field string, offset int, count int) *ProjectionBuilder {
	return pb.addField(field, Filter{E{Key: "$slice", Value: []int{offset, count}}})
}
