package http_utils

import (
	"context"
	"net/http"
	"sync"

	"maybe_list/common/container"
)

var (
	once    = sync.Once{}
	session *Session
)

func init() {
	once.Do(func() {
		session = NewSession()
	})
}

// Get 请求
func Get(ctx context.Context, url string, options *RequestOptions) (*http.Request, *Response, error) {
	return session.Get(ctx, url, options)
}

// Post 请求
func Post(ctx context.Context, url string, options *RequestOptions) (*http.Request, *Response, error) {
	return session.Post(ctx, url, options)
}

// Delete 删除请求
func Delete(ctx context.Context, url string, options *RequestOptions) (*http.Request, *Response, error) {
	return session.Delete(ctx, url, options)
}

// Put 请求
func Put(ctx context.Context, url string, options *RequestOptions) (*http.Request, *Response, error) {
	return session.Put(ctx, url, options)
}

// Patch 请求
func Patch(ctx context.Context, url string, options *RequestOptions) (*http.Request, *Response, error) {
	return session.Patch(ctx, url, options)
}

// Head 请求
func Head(ctx context.Context, url string, options *RequestOptions) (*http.Request, *Response, error) {
	return session.Head(ctx, url, options)
}

// Options 请求
func Options(ctx context.Context, url string, options *RequestOptions) (*http.Request, *Response, error) {
	return session.Options(ctx, url, options)
}

// PostEach 将同一份数据投递到每个端点
func PostEach(ctx context.Context, endpoints container.MaybeList[string], contentType string, body []byte) container.MaybeList[*Response] {
	return session.PostEach(ctx, endpoints, contentType, body)
}
