package mongo_driver

import (
	"context"
	"errors"
	"slices"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"maybe_list/common/container"
)

// CollectionBase 集合基类
// 业务集合内嵌该类型获得类型化的文档操作
type CollectionBase[T any] struct {
	NodeName   string            // 节点名
	DBName     string            // 数据库名
	TableName  string            // 表名
	Collection *mongo.Collection // 集合
}

// CreateCollectionBase 创建集合
func CreateCollectionBase[T any](nodeName, dbName, tableName string) (*CollectionBase[T], error) {
	mongoDBManager := GetMongoDBManager(nodeName)
	if mongoDBManager == nil {
		return nil, ErrMongoManagerNotExist
	}
	collection := mongoDBManager.Database(dbName).Collection(tableName)

	return &CollectionBase[T]{
		NodeName:   nodeName,
		DBName:     dbName,
		TableName:  tableName,
		Collection: collection,
	}, nil
}

// ToObjectID 转换为ObjectID
func (cb *CollectionBase[T]) ToObjectID(_id string) bson.ObjectID {
	objectId, err := bson.ObjectIDFromHex(_id)
	if err != nil {
		return bson.NilObjectID
	}
	return objectId
}

// ObjectIDToHex 获取ObjectID的Hex
func (cb *CollectionBase[T]) ObjectIDToHex(objectId bson.ObjectID) string {
	return objectId.Hex()
}

// FindOne 查询单个文档
// 无匹配文档时返回 nil, nil
func (cb *CollectionBase[T]) FindOne(ctx context.Context, filter Filter, opts ...FindOneOptions) (*T, error) {
	doc := new(T)
	err := cb.Collection.FindOne(ctx, filter, opts...).Decode(doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return doc, nil
}

// Find 查询多个文档
func (cb *CollectionBase[T]) Find(ctx context.Context, filter Filter, opts ...FindOptions) ([]T, error) {
	cursor, err := cb.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	var docs []T
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// FindMaybe 查询并按结果个数收窄
// 恰好命中一个文档返回 One 变体 其余情况返回 Many 变体
func (cb *CollectionBase[T]) FindMaybe(ctx context.Context, filter Filter, opts ...FindOptions) (container.MaybeList[T], error) {
	docs, err := cb.Find(ctx, filter, opts...)
	if err != nil {
		return container.NewMany[T](), err
	}
	if len(docs) == 1 {
		return container.NewOne(docs[0]), nil
	}
	return container.NewMany(docs...), nil
}

// InsertOne 插入单个文档
func (cb *CollectionBase[T]) InsertOne(ctx context.Context, doc *T, opts ...InsertOneOptions) (*InsertOneResult, error) {
	return cb.Collection.InsertOne(ctx, doc, opts...)
}

// InsertMany 插入多个文档
func (cb *CollectionBase[T]) InsertMany(ctx context.Context, docs []T, opts ...InsertManyOptions) (*InsertManyResult, error) {
	return cb.Collection.InsertMany(ctx, docs, opts...)
}

// InsertMaybe 按容器变体选择插入方式
// One 走 InsertOne Many 走 InsertMany 空容器不产生任何写入
// 传入的容器被消费 Many 变体按插入顺序写库
func (cb *CollectionBase[T]) InsertMaybe(ctx context.Context, docs container.MaybeList[T]) error {
	if docs.Empty() {
		return nil
	}
	isOne := docs.IsOne()
	items := make([]T, 0, docs.Size())
	for item := range docs.Iter() {
		items = append(items, item)
	}
	if isOne {
		_, err := cb.Collection.InsertOne(ctx, items[0])
		return err
	}
	// 消费顺序是插入逆序 还原为插入顺序再写库
	slices.Reverse(items)
	_, err := cb.Collection.InsertMany(ctx, items)
	return err
}

// UpdateOne 更新单个文档
func (cb *CollectionBase[T]) UpdateOne(ctx context.Context, filter Filter, operator Operator, opts ...UpdateOneOptions) (*UpdateResult, error) {
	return cb.Collection.UpdateOne(ctx, filter, operator, opts...)
}

// UpdateMany 更新多个文档
func (cb *CollectionBase[T]) UpdateMany(ctx context.Context, filter Filter, operator Operator, opts ...UpdateManyOptions) (*UpdateResult, error) {
	return cb.Collection.UpdateMany(ctx, filter, operator, opts...)
}

// DeleteOne 删除单个文档
func (cb *CollectionBase[T]) DeleteOne(ctx context.Context, filter Filter, opts ...DeleteOneOptions) (*DeleteResult, error) {
	return cb.Collection.DeleteOne(ctx, filter, opts...)
}

// DeleteMany 删除多个文档
func (cb *CollectionBase[T]) DeleteMany(ctx context.Context, filter Filter, opts ...DeleteManyOptions) (*DeleteResult, error) {
	return cb.Collection.DeleteMany(ctx, filter, opts...)
}

// Count 统计匹配文档数
func (cb *CollectionBase[T]) Count(ctx context.Context, filter Filter, opts ...CountOptions) (int64, error) {
	return cb.Collection.CountDocuments(ctx, filter, opts...)
}
