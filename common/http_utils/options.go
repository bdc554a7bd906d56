package http_utils

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RequestOptions for request options
type RequestOptions struct {
	Params             map[string]string // URL 查询参数
	Data               map[string]string // 表单数据
	Headers            map[string]string // 自定义请求头
	Cookies            map[string]string // Cookie设置
	Auth               map[string]string // Basic Auth 认证
	JSON               map[string]any    // JSON 数据体
	RawData            []byte            // 原始请求体
	DisableRedirect    bool              // 是否阻止重定向 返回最后一次响应
	Timeout            int64             // 请求超时时间 单位-秒
	DisableKeepalives  bool              // 是否禁用 Keep-Alive
	DisableCompression bool              // 是否禁用压缩
	SkipVerifyTLS      bool              // 是否跳过 TLS 验证
}

// isConflict 检查冲突 Data/RawData/JSON 只能同时存在一个
func (h *RequestOptions) isConflict() bool {
	count := 0
	if len(h.Data) > 0 {
		count++
	}
	if len(h.RawData) > 0 {
		count++
	}
	if len(h.JSON) > 0 {
		count++
	}
	return count > 1
}

// applyRequestOpt 应用请求选项
func (h *RequestOptions) applyRequestOpt(r *http.Request) error {
	if h.isConflict() {
		return errors.New("Data/RawData/JSON 只能同时存在一个")
	}
	var err error
	if len(h.Params) > 0 {
		if err = setQuery(r, h.Params); err != nil {
			return err
		}
	}

	if len(h.Data) > 0 {
		if err = setData(r, h.Data); err != nil {
			return err
		}
	}

	if len(h.JSON) > 0 {
		if err = setJSON(r, h.JSON); err != nil {
			return err
		}
	}

	if len(h.RawData) > 0 {
		if err = setRawData(r, h.RawData); err != nil {
			return err
		}
	}

	if len(h.Headers) > 0 {
		if err = setHeaders(r, h.Headers); err != nil {
			return err
		}
	}

	if len(h.Cookies) > 0 {
		if err = setCookies(r, h.Cookies); err != nil {
			return err
		}
	}

	if len(h.Auth) > 0 {
		if err = setAuth(r, h.Auth); err != nil {
			return err
		}
	}

	return nil
}

// applyClientOpt 应用客户端选项
func (h *RequestOptions) applyClientOpt(client *http.Client) error {
	if h.DisableRedirect {
		// 阻止跳转并返回最后一次的响应结果
		client.CheckRedirect = disableRedirect
	}
	// 设置超时时间
	if h.Timeout > 0 {
		client.Timeout = time.Duration(h.Timeout) * time.Second
	}

	transport, ok := client.Transport.(*http.Transport)
	if ok {
		// 是否禁用 Keep-Alive
		transport.DisableKeepAlives = h.DisableKeepalives
		// 是否禁用压缩
		transport.DisableCompression = h.DisableCompression

		// 跳过 TLS 验证
		if h.SkipVerifyTLS {
			if transport.TLSClientConfig == nil {
				transport.TLSClientConfig = &tls.Config{}
			}
			transport.TLSClientConfig.InsecureSkipVerify = true
		}
	}

	return nil
}

// setQuery 设置查询参数 与URL已有参数合并
func setQuery(r *http.Request, params map[string]string) error {
	query := r.URL.Query()
	for key, value := range params {
		query.Set(key, value)
	}
	r.URL.RawQuery = query.Encode()

	return nil
}

// setData 设置表单数据
func setData(r *http.Request, allData map[string]string) error {
	form := make(url.Values, len(allData))
	for key, val := range allData {
		form.Set(key, val)
	}

	reader := strings.NewReader(form.Encode())
	r.Body = io.NopCloser(reader)
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ContentLength = reader.Size()
	return nil
}

// setJSON 设置 JSON 数据体
func setJSON(r *http.Request, jsonData map[string]any) error {
	data, err := json.Marshal(jsonData)
	if err != nil {
		return err
	}
	reader := bytes.NewReader(data)
	r.Body = io.NopCloser(reader)
	r.Header.Set("Content-Type", "application/json")
	r.ContentLength = reader.Size()
	return nil
}

// setRawData 设置原始请求体 Content-Type由调用方通过Headers指定
func setRawData(r *http.Request, rawData []byte) error {
	reader := bytes.NewReader(rawData)
	r.Body = io.NopCloser(reader)
	r.ContentLength = reader.Size()
	return nil
}

// setHeaders 设置请求头
func setHeaders(r *http.Request, headers map[string]string) error {
	for headerKey, headerVal := range headers {
		r.Header.Set(headerKey, headerVal)
	}
	return nil
}

// setCookies 设置 Cookie
func setCookies(r *http.Request, cookies map[string]string) error {
	for cookieKey, cookieVal := range cookies {
		cookie := http.Cookie{
			Name:  cookieKey,
			Value: cookieVal,
		}
		r.AddCookie(&cookie)
	}
	return nil
}

// setAuth 设置认证信息
func setAuth(r *http.Request, auth map[string]string) error {
	for authKey, authVal := range auth {
		r.SetBasicAuth(authKey, authVal)
	}
	return nil
}
