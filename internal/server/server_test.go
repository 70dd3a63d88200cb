package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/effective-security/gogentic-mermaid/callbacks"
	"github.com/effective-security/gogentic-mermaid/chatmodel"
	"github.com/effective-security/gogentic-mermaid/internal/server"
	"github.com/effective-security/gogentic-mermaid/pkg/mermaid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	lock     sync.Mutex
	requests []*mermaid.Request
	chatIDs  []string
	url      string
	err      error
}

func (f *fakeRenderer) Render(ctx context.Context, req *mermaid.Request) (string, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.requests = append(f.requests, req)
	f.chatIDs = append(f.chatIDs, chatmodel.GetChatID(ctx))
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func newServer(t *testing.T, r *fakeRenderer, opts ...server.Option) *server.Server {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "mermaid"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "mermaid", "a.png"), []byte("PNG"), 0o600))

	s, err := server.New(&server.Config{
		Mermaid: mermaid.Config{StorageRoot: root},
	}, r, opts...)
	require.NoError(t, err)
	return s
}

func do(t *testing.T, s *server.Server, method, target, body string) (int, string) {
	resp, res := doWithHeaders(t, s, method, target, body, nil)
	return resp.StatusCode, res
}

func doWithHeaders(t *testing.T, s *server.Server, method, target, body string, headers map[string]string) (*http.Response, string) {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	bs, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(bs)
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := server.New(nil, nil)
	assert.EqualError(t, err, "renderer is required")

	s := newServer(t, &fakeRenderer{})
	assert.Equal(t, []string{"render_mermaid"}, s.Registry().Names())
}

func TestStatus(t *testing.T) {
	t.Parallel()

	s := newServer(t, &fakeRenderer{})
	code, body := do(t, s, http.MethodGet, "/v1/status", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok"}`, body)

	code, body = do(t, s, http.MethodGet, "/v1/missing", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.JSONEq(t, `{"error":{"code":404,"message":"Not Found"}}`, body)
}

func TestStatic(t *testing.T) {
	t.Parallel()

	s := newServer(t, &fakeRenderer{})
	code, body := do(t, s, http.MethodGet, "/storage/mermaid/a.png", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "PNG", body)
}

func TestListTools(t *testing.T) {
	t.Parallel()

	s := newServer(t, &fakeRenderer{})
	code, body := do(t, s, http.MethodGet, "/v1/tools", "")
	require.Equal(t, http.StatusOK, code)

	var list []server.ProviderInfo
	require.NoError(t, json.Unmarshal([]byte(body), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "mermaid", list[0].Name)
	assert.True(t, list[0].IsIntegration)
	require.Len(t, list[0].Tools, 1)
	assert.Equal(t, "render_mermaid", list[0].Tools[0].Name)
	assert.Equal(t, "Render Mermaid", list[0].Tools[0].DisplayName)

	params := list[0].Tools[0].Parameters
	require.NotNil(t, params)
	assert.Equal(t, "object", params.Type)
	assert.Equal(t, []string{"syntax"}, params.Required)
	syntax, ok := params.Properties.Get("syntax")
	require.True(t, ok)
	assert.Equal(t, "string", syntax.Type)
}

func TestToolDescriptions(t *testing.T) {
	t.Parallel()

	s := newServer(t, &fakeRenderer{})
	code, body := do(t, s, http.MethodGet, "/v1/tools/descriptions", "")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, strings.HasPrefix(body, "\n```json\n"), body)
	assert.Contains(t, body, `"Name": "render_mermaid"`)
	assert.Contains(t, body, "Render a Mermaid diagram to a PNG image.")
}

func TestCallTool_ChatContext(t *testing.T) {
	t.Parallel()

	r := &fakeRenderer{url: "/storage/mermaid/a.png"}
	s := newServer(t, r)

	resp, body := doWithHeaders(t, s, http.MethodPost, "/v1/tools/render_mermaid",
		`{"syntax":"graph TD\n  A --> B"}`,
		map[string]string{server.HeaderChatID: "chat-123"})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "chat-123", resp.Header.Get(server.HeaderChatID))
	assert.NotEmpty(t, resp.Header.Get(server.HeaderRequestID))
	assert.Equal(t, "1", resp.Header.Get(server.HeaderToolCalls))
	assert.Equal(t, "0", resp.Header.Get(server.HeaderToolCallsFailed))

	// without the chat header, the request ID is used
	resp, body = doWithHeaders(t, s, http.MethodPost, "/v1/tools/render_mermaid",
		`{"syntax":"graph TD\n  A --> B"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	rid := resp.Header.Get(server.HeaderRequestID)
	require.NotEmpty(t, rid)
	assert.Equal(t, rid, resp.Header.Get(server.HeaderChatID))

	r.lock.Lock()
	assert.Equal(t, []string{"chat-123", rid}, r.chatIDs)
	r.lock.Unlock()

	// the input error is counted as failed call
	resp, body = doWithHeaders(t, s, http.MethodPost, "/v1/tools/render_mermaid", `not json`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "1", resp.Header.Get(server.HeaderToolCalls))
	assert.Equal(t, "1", resp.Header.Get(server.HeaderToolCallsFailed))
}

func TestCallTool_Printer(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	s := newServer(t, &fakeRenderer{url: "/storage/mermaid/a.png"},
		server.WithCallback(callbacks.NewPrinter(&out, callbacks.ModeVerbose)))

	code, _ := do(t, s, http.MethodPost, "/v1/tools/render_mermaid", `{"syntax":"graph TD\n  A --> B","title":"Flow"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Tool Start: render_mermaid\n"+
		"Input: {\"syntax\":\"graph TD\\n  A --> B\",\"title\":\"Flow\"}\n"+
		"Tool End: render_mermaid\n"+
		"Output: ![Flow](/storage/mermaid/a.png)\n", out.String())
}

func TestCallTool(t *testing.T) {
	t.Parallel()

	r := &fakeRenderer{url: "/storage/mermaid/a.png"}
	s := newServer(t, r)

	code, body := do(t, s, http.MethodPost, "/v1/tools/render_mermaid", `{"syntax":"graph TD\n  A --> B","title":"Flow"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "![Flow](/storage/mermaid/a.png)", body)

	// the tool name is case insensitive
	code, _ = do(t, s, http.MethodPost, "/v1/tools/Render_Mermaid", `{"syntax":"graph TD\n  A --> B"}`)
	assert.Equal(t, http.StatusOK, code)

	// errors are returned as text for LLM
	code, body = do(t, s, http.MethodPost, "/v1/tools/render_mermaid", `{"syntax":" "}`)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, strings.HasPrefix(body, "Error: Mermaid syntax is required."), body)

	code, body = do(t, s, http.MethodPost, "/v1/tools/render_mermaid", `not json`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Failed to unmarshal input, check the JSON schema and try again.", body)

	code, body = do(t, s, http.MethodPost, "/v1/tools/render_plantuml", `{}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.JSONEq(t, `{"error":{"code":404,"message":"tool not found: render_plantuml"}}`, body)
}

func TestRender(t *testing.T) {
	t.Parallel()

	r := &fakeRenderer{url: "/storage/mermaid/a.png"}
	s := newServer(t, r)

	code, body := do(t, s, http.MethodPost, "/v1/render", `{"syntax":"sequenceDiagram\n  A->>B: hi","width":800,"theme":"dark"}`)
	assert.Equal(t, http.StatusCreated, code)
	assert.JSONEq(t, `{"url":"/storage/mermaid/a.png","title":"Diagram"}`, body)

	require.Len(t, r.requests, 1)
	assert.Equal(t, 800, r.requests[0].Width)
	assert.NotEmpty(t, r.chatIDs[0])
	assert.Equal(t, "dark", r.requests[0].Theme)

	code, body = do(t, s, http.MethodPost, "/v1/render", `{"syntax":""}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body, "Mermaid syntax is required.")
}

func TestRender_Errors(t *testing.T) {
	t.Parallel()

	tcases := []struct {
		name string
		err  error
		code int
	}{
		{name: "invalid_input", err: mermaid.ErrInvalidInput, code: http.StatusBadRequest},
		{name: "execution", err: &mermaid.Error{Kind: mermaid.KindExecution, Message: "Parse error on line 2"}, code: http.StatusUnprocessableEntity},
		{name: "empty_output", err: mermaid.ErrEmptyOutput, code: http.StatusBadGateway},
		{name: "storage", err: mermaid.ErrStorage, code: http.StatusInternalServerError},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			s := newServer(t, &fakeRenderer{err: tc.err})
			code, body := do(t, s, http.MethodPost, "/v1/render", `{"syntax":"graph TD\n  A --> B"}`)
			assert.Equal(t, tc.code, code)
			assert.Contains(t, body, `"error"`)
		})
	}

	s := newServer(t, &fakeRenderer{})
	code, body := do(t, s, http.MethodPost, "/v1/render", `{"syntax":`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body, "invalid request: ")
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	cfg, err := server.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.WithDefaults().ListenAddr)

	file := filepath.Join(t.TempDir(), "mermaidd.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
listen_addr: 127.0.0.1:9090
mermaid:
  storage_root: /srv/public
  timeout_msec: 5000
`), 0o600))

	cfg, err = server.LoadConfig(file)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9090", cfg.ListenAddr)
	assert.Equal(t, "/srv/public", cfg.Mermaid.StorageRoot)
	assert.Equal(t, 5000, cfg.Mermaid.TimeoutMsec)

	c := cfg.WithDefaults()
	assert.Equal(t, "/storage/", c.Mermaid.PublicPrefix)
	assert.Equal(t, 1024*1024, c.BodyLimit)

	_, err = server.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
