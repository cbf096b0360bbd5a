package server

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/tbxark/formpilot/agent"
	"github.com/tbxark/formpilot/docs"
	"github.com/tbxark/formpilot/types"
)

type failingDocs struct{ docs.Demo }

func (f *failingDocs) ExtractFields(ctx context.Context, url string) ([]types.Field, error) {
	return nil, &docs.UpstreamError{Op: "extract fields", StatusCode: 401, Message: "invalid api key"}
}

type recordingDocs struct {
	docs.Demo
	url    string
	values map[string]string
}

func (r *recordingDocs) Fill(ctx context.Context, url string, values map[string]string) (*docs.Filled, error) {
	r.url, r.values = url, values
	return r.Demo.Fill(ctx, url, values)
}

func newTestServer(t *testing.T, documents docs.Service) (http.Handler, *agent.Engine) {
	t.Helper()
	engine := agent.NewEngine(agent.NewMemorySessionStore())
	h := NewHandler(engine, documents, Info{Model: "test-model"}, 1<<10)
	return NewRouter(h, []string{"*"}), engine
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	var got map[string]any
	if err := sonic.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("%s %s: invalid JSON %q: %v", method, path, w.Body.String(), err)
	}
	return w, got
}

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusOK, map[string]string{"foo": "bar"})
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("unexpected response %d %q", w.Code, w.Header().Get("Content-Type"))
	}
	if strings.TrimSpace(w.Body.String()) != `{"foo":"bar"}` {
		t.Errorf("unexpected body %q", w.Body.String())
	}
}

func TestHealth(t *testing.T) {
	h, _ := newTestServer(t, docs.NewDemo())
	w, got := do(t, h, http.MethodGet, "/api/health", "")
	if w.Code != http.StatusOK || got["status"] != "online" || got["model"] != "test-model" {
		t.Errorf("unexpected health: %d %v", w.Code, got)
	}
}

func TestExtractChatAndStatus(t *testing.T) {
	h, _ := newTestServer(t, docs.NewDemo())

	w, got := do(t, h, http.MethodPost, "/api/extract-fields", `{"url":"https://files.example/a.pdf","sessionId":"s1"}`)
	if w.Code != http.StatusOK || got["totalFields"] != float64(2) || got["prompt"] == "" {
		t.Fatalf("unexpected extract response: %d %v", w.Code, got)
	}

	w, got = do(t, h, http.MethodPost, "/api/chat", `{"sessionId":"s1","message":"Max"}`)
	if w.Code != http.StatusOK || got["action"] != string(agent.ActionFieldSaved) || got["nextCursor"] != float64(1) {
		t.Fatalf("unexpected chat response: %d %v", w.Code, got)
	}
	values, _ := got["collectedValues"].(map[string]any)
	if values["Demo_Field_1"] != "Max" {
		t.Errorf("unexpected collected values: %v", got["collectedValues"])
	}

	w, got = do(t, h, http.MethodPost, "/api/chat", `{"sessionId":"s1","messages":[{"role":"user","content":"status"}]}`)
	if w.Code != http.StatusOK || got["action"] != string(agent.ActionStatus) {
		t.Fatalf("messages[] must be accepted: %d %v", w.Code, got)
	}
	if _, ok := got["nextCursor"]; ok {
		t.Error("status response must not carry a cursor")
	}

	w, got = do(t, h, http.MethodGet, "/api/session/s1", "")
	if w.Code != http.StatusOK || got["cursor"] != float64(1) || got["totalCompleted"] != float64(1) || got["totalFields"] != float64(2) {
		t.Fatalf("unexpected status: %d %v", w.Code, got)
	}
}

func TestSessionNotFound(t *testing.T) {
	h, _ := newTestServer(t, docs.NewDemo())
	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/api/session/missing", ""},
		{http.MethodPatch, "/api/session/missing/values", `[]`},
		{http.MethodPost, "/api/update-field", `{"sessionId":"missing","fieldName":"a","value":"b"}`},
		{http.MethodPost, "/api/fill-pdf", `{"sessionId":"missing"}`},
	} {
		w, got := do(t, h, tc.method, tc.path, tc.body)
		if w.Code != http.StatusNotFound || got["success"] != false {
			t.Errorf("%s %s: got %d %v", tc.method, tc.path, w.Code, got)
		}
	}
}

func TestUpdateValuesAndFill(t *testing.T) {
	h, engine := newTestServer(t, docs.NewDemo())
	if _, err := engine.CreateSession(context.Background(), "s1", "https://files.example/a.pdf", docs.NewDemo().Fields); err != nil {
		t.Fatal(err)
	}

	w, got := do(t, h, http.MethodPatch, "/api/session/s1/values", `[{"op":"add","path":"/Demo_Field_2","value":"max@beispiel.de"}]`)
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected patch response: %d %v", w.Code, got)
	}

	w, _ = do(t, h, http.MethodPatch, "/api/session/s1/values", `[{"op":"add","path":"/Unknown","value":"x"}]`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown path must be rejected, got %d", w.Code)
	}

	w, got = do(t, h, http.MethodPost, "/api/update-field", `{"sessionId":"s1","fieldName":"Demo_Field_1","value":"Max"}`)
	values, _ := got["collectedValues"].(map[string]any)
	if w.Code != http.StatusOK || values["Demo_Field_1"] != "Max" || values["Demo_Field_2"] != "max@beispiel.de" {
		t.Fatalf("unexpected update-field response: %d %v", w.Code, got)
	}

	w, got = do(t, h, http.MethodPost, "/api/fill-pdf", `{"sessionId":"s1"}`)
	if w.Code != http.StatusOK || got["url"] != docs.DemoFilledURL {
		t.Fatalf("unexpected fill response: %d %v", w.Code, got)
	}
}

func TestFillUsesSessionValues(t *testing.T) {
	rec := &recordingDocs{Demo: *docs.NewDemo()}
	h, engine := newTestServer(t, rec)
	if _, err := engine.CreateSession(context.Background(), "s1", "https://files.example/a.pdf", rec.Fields); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.HandleMessage(context.Background(), "s1", "Max", agent.ClientHints{}); err != nil {
		t.Fatal(err)
	}

	w, got := do(t, h, http.MethodPost, "/api/fill-pdf", `{"sessionId":"s1","url":"https://files.example/other.pdf"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected fill response: %d %v", w.Code, got)
	}
	if rec.url != "https://files.example/other.pdf" || rec.values["Demo_Field_1"] != "Max" {
		t.Errorf("unexpected fill call: url=%q values=%v", rec.url, rec.values)
	}

	if w, _ := do(t, h, http.MethodPost, "/api/fill-pdf", `{"sessionId":"s1"}`); w.Code != http.StatusOK || rec.url != "https://files.example/a.pdf" {
		t.Errorf("fill without url must use the session document: %d %q", w.Code, rec.url)
	}
}

func TestUpdateSessionAndDelete(t *testing.T) {
	h, engine := newTestServer(t, docs.NewDemo())
	w, _ := do(t, h, http.MethodPost, "/api/update-session", `{"sessionId":"s2","fields":[{"fieldName":"Vorname"},{"FieldName":"Telefon","Type":"text"},{"type":"text"}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected update-session status %d", w.Code)
	}
	st, err := engine.Status(context.Background(), "s2")
	if err != nil || st.TotalFields != 2 {
		t.Fatalf("unexpected status after update: %+v %v", st, err)
	}

	w, _ = do(t, h, http.MethodDelete, "/api/session/s2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected delete status %d", w.Code)
	}
	if _, err := engine.Status(context.Background(), "s2"); err == nil {
		t.Error("session must be gone after delete")
	}
}

func TestUpstreamFailure(t *testing.T) {
	h, _ := newTestServer(t, &failingDocs{})
	w, got := do(t, h, http.MethodPost, "/api/extract-fields", `{"url":"u","sessionId":"s1"}`)
	if w.Code != http.StatusBadGateway || !strings.Contains(got["error"].(string), "invalid api key") {
		t.Errorf("unexpected response: %d %v", w.Code, got)
	}
}

func TestUploadPDF(t *testing.T) {
	h, _ := newTestServer(t, docs.NewDemo())

	upload := func(content []byte) *httptest.ResponseRecorder {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, _ := mw.CreateFormFile("file", "form.pdf")
		_, _ = part.Write(content)
		_ = mw.Close()
		req := httptest.NewRequest(http.MethodPost, "/api/upload-pdf", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	w := upload([]byte("%PDF-1.7"))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), docs.DemoUploadURL) {
		t.Fatalf("unexpected upload response: %d %s", w.Code, w.Body.String())
	}

	w = upload(bytes.Repeat([]byte("a"), 2<<10))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/upload-pdf", io.NopCloser(strings.NewReader("")))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without file, got %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	h, _ := newTestServer(t, docs.NewDemo())
	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "https://app.example")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Header().Get("Access-Control-Allow-Origin") != "https://app.example" {
		t.Errorf("unexpected preflight: %d %v", w.Code, w.Header())
	}
}
