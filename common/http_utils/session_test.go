package http_utils

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"

	"maybe_list/common/container"
	"maybe_list/common/encode_utils"
)

// recordingServer 记录收到的请求 按到达顺序
type recordingServer struct {
	server *httptest.Server
	lock   sync.Mutex
	paths  []string
	bodies []string
	types  []string
}

func newRecordingServer() *recordingServer {
	rs := &recordingServer{}
	rs.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		rs.lock.Lock()
		rs.paths = append(rs.paths, r.URL.Path)
		rs.bodies = append(rs.bodies, string(data))
		rs.types = append(rs.types, r.Header.Get("Content-Type"))
		rs.lock.Unlock()
		_, _ = w.Write([]byte(r.URL.Path))
	}))
	return rs
}

func (rs *recordingServer) seenPaths() []string {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	return append([]string(nil), rs.paths...)
}

func TestSessionGetMergesQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.URL.RawQuery))
	}))
	defer server.Close()

	session := NewSession()
	_, resp, err := session.Get(context.Background(), server.URL+"/echo?a=1", &RequestOptions{
		Params: map[string]string{"b": "2"},
	})
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if resp.Text != "a=1&b=2" {
		t.Errorf("query = %q, want %q", resp.Text, "a=1&b=2")
	}
}

func TestSessionPostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", got)
		}
		data, _ := io.ReadAll(r.Body)
		_, _ = w.Write(data)
	}))
	defer server.Close()

	session := NewSession()
	_, resp, err := session.Post(context.Background(), server.URL, &RequestOptions{
		JSON: map[string]any{"name": "tester", "level": 3},
	})
	if err != nil {
		t.Fatalf("Post error: %v", err)
	}
	var decoded map[string]any
	if err = resp.JSON(&decoded); err != nil {
		t.Fatalf("JSON decode error: %v", err)
	}
	if decoded["name"] != "tester" {
		t.Errorf("name = %v, want tester", decoded["name"])
	}
}

func TestSessionRequestUnsupportedMethod(t *testing.T) {
	session := NewSession()
	_, _, err := session.Request(context.Background(), "TRACE", "http://127.0.0.1", nil)
	if err == nil {
		t.Fatal("expected error for unsupported method")
	}
}

func TestSessionHooks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.Header.Get("X-Trace-Id")))
	}))
	defer server.Close()

	session := NewSession(WithSessionRequestHooks(func(r *http.Request) error {
		r.Header.Set("X-Trace-Id", "42")
		return nil
	}))
	responseHookCalled := false
	if err := session.AddResponseHooks(func(r *http.Response) error {
		responseHookCalled = true
		return nil
	}); err != nil {
		t.Fatalf("AddResponseHooks error: %v", err)
	}

	_, resp, err := session.Get(context.Background(), server.URL, nil)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if resp.Text != "42" {
		t.Errorf("trace header = %q, want 42", resp.Text)
	}
	if !responseHookCalled {
		t.Error("response hook not called")
	}

	hookErr := errors.New("reject")
	session.ResetRequestHooks()
	if err = session.AddRequestHooks(func(r *http.Request) error {
		return hookErr
	}); err != nil {
		t.Fatalf("AddRequestHooks error: %v", err)
	}
	_, _, err = session.Get(context.Background(), server.URL, nil)
	if !errors.Is(err, hookErr) {
		t.Errorf("err = %v, want %v", err, hookErr)
	}
}

func TestSessionCookieJar(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/set":
			http.SetCookie(w, &http.Cookie{Name: "sid", Value: "abc", Path: "/"})
		case "/check":
			cookie, err := r.Cookie("sid")
			if err != nil {
				http.Error(w, "no cookie", http.StatusBadRequest)
				return
			}
			_, _ = w.Write([]byte(cookie.Value))
		}
	}))
	defer server.Close()

	session := NewSession()
	if _, _, err := session.Get(context.Background(), server.URL+"/set", nil); err != nil {
		t.Fatalf("Get /set error: %v", err)
	}
	_, resp, err := session.Get(context.Background(), server.URL+"/check", nil)
	if err != nil {
		t.Fatalf("Get /check error: %v", err)
	}
	if resp.Text != "abc" {
		t.Errorf("cookie value = %q, want abc", resp.Text)
	}
}

func TestPostEachSingleEndpoint(t *testing.T) {
	rs := newRecordingServer()
	defer rs.server.Close()

	session := NewSession()
	endpoints := container.NewOne(rs.server.URL + "/solo")
	responses := session.PostEach(context.Background(), endpoints, "application/json", []byte(`{"ping":1}`))

	if !responses.IsMany() {
		t.Error("responses should always be Many")
	}
	if responses.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", responses.Size())
	}
	for resp := range responses.Iter() {
		if resp.Text != "/solo" {
			t.Errorf("response text = %q, want /solo", resp.Text)
		}
	}
	rs.lock.Lock()
	defer rs.lock.Unlock()
	if rs.bodies[0] != `{"ping":1}` {
		t.Errorf("body = %q", rs.bodies[0])
	}
	if rs.types[0] != "application/json" {
		t.Errorf("content type = %q", rs.types[0])
	}
}

func TestPostEachManyEndpoints(t *testing.T) {
	rs := newRecordingServer()
	defer rs.server.Close()

	session := NewSession()
	base := rs.server.URL
	endpoints := container.NewMany(base+"/a", base+"/b", base+"/c")
	responses := session.PostEach(context.Background(), endpoints, "text/plain", []byte("ping"))

	if !responses.IsMany() {
		t.Error("responses should always be Many")
	}
	if responses.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", responses.Size())
	}
	// 端点按消费顺序投递 即插入顺序的逆序
	if got, want := rs.seenPaths(), []string{"/c", "/b", "/a"}; !reflect.DeepEqual(got, want) {
		t.Errorf("delivery order = %v, want %v", got, want)
	}
	var texts []string
	for resp := range responses.Iter() {
		texts = append(texts, resp.Text)
	}
	if want := []string{"/a", "/b", "/c"}; !reflect.DeepEqual(texts, want) {
		t.Errorf("drained responses = %v, want %v", texts, want)
	}
}

func TestPostEachSkipsFailedEndpoint(t *testing.T) {
	rs := newRecordingServer()
	defer rs.server.Close()

	session := NewSession()
	endpoints := container.NewMany(rs.server.URL+"/ok", "://bad")
	responses := session.PostEach(context.Background(), endpoints, "text/plain", []byte("ping"))

	if responses.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", responses.Size())
	}
	for resp := range responses.Iter() {
		if resp.Text != "/ok" {
			t.Errorf("response text = %q, want /ok", resp.Text)
		}
	}
}

func TestResponseSetEncoding(t *testing.T) {
	const plain = "你好 世界"
	encoder := encode_utils.NewEncoder(encode_utils.EncodingGBK)
	if encoder == nil {
		t.Fatal("GBK encoder unavailable")
	}
	raw, err := encoder.Bytes([]byte(plain))
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(raw)
	}))
	defer server.Close()

	session := NewSession()
	_, resp, err := session.Get(context.Background(), server.URL, nil)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if resp.GetEncoding() != encode_utils.EncodingUTF8 {
		t.Errorf("default encoding = %q", resp.GetEncoding())
	}
	if err = resp.SetEncoding("gbk"); err != nil {
		t.Fatalf("SetEncoding error: %v", err)
	}
	if resp.Text != plain {
		t.Errorf("decoded text = %q, want %q", resp.Text, plain)
	}
	if resp.GetEncoding() != encode_utils.EncodingGBK {
		t.Errorf("encoding = %q, want %q", resp.GetEncoding(), encode_utils.EncodingGBK)
	}
	if err = resp.SetEncoding("EBCDIC"); !errors.Is(err, ErrUnrecognizedEncoding) {
		t.Errorf("err = %v, want ErrUnrecognizedEncoding", err)
	}
}
