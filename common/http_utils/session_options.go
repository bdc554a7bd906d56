package http_utils

import (
	"net/http"

	"maybe_list/common/options"
)

// WithSessionClient 替换底层http客户端Options
func WithSessionClient(client *http.Client) options.Option[Session] {
	return options.WrapperOptions[Session](func(s *Session) {
		s.Client = client
	})
}

// WithSessionRequestHooks 注册请求钩子函数Options
func WithSessionRequestHooks(hooks ...RequestHookFunc) options.Option[Session] {
	return options.WrapperOptions[Session](func(s *Session) {
		s.beforeRequestHooks = append(s.beforeRequestHooks, hooks...)
	})
}

// WithSessionResponseHooks 注册响应钩子函数Options
func WithSessionResponseHooks(hooks ...ResponseHookFunc) options.Option[Session] {
	return options.WrapperOptions[Session](func(s *Session) {
		s.afterResponseHooks = append(s.afterResponseHooks, hooks...)
	})
}
