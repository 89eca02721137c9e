package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/dasmlab/vartrans/pkg/service"
	"github.com/dasmlab/vartrans/pkg/translate"
)

type fakeEngine struct {
	mu    sync.Mutex
	out   string
	err   error
	calls int
}

func (f *fakeEngine) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.out, f.err
}

func (f *fakeEngine) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeEngine) CheckHealth(ctx context.Context) error { return nil }

func (f *fakeEngine) SupportedLanguages(ctx context.Context) ([]string, error) {
	return []string{"en", "zh"}, nil
}

func newTestServer(t *testing.T, engine *fakeEngine) (*httptest.Server, *service.TranslationService) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	registry := translate.NewRegistry(translate.DefaultEngine, logger)
	registry.Register(translate.DefaultEngine, engine)
	client := translate.NewClient(translate.ClientConfig{Registry: registry, Logger: logger})
	svc := service.NewTranslationService(client, nil, logger)

	ts := httptest.NewServer(NewHTTPServer(svc, logger, 0).Handler())
	t.Cleanup(ts.Close)
	return ts, svc
}

func postTranslate(t *testing.T, ts *httptest.Server, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(ts.URL+"/api/v1/translate", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	return resp, out
}

func TestTranslateEndpoint(t *testing.T) {
	engine := &fakeEngine{out: "用户名"}
	ts, _ := newTestServer(t, engine)

	resp, out := postTranslate(t, ts, `{"text":"userName"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %v", resp.StatusCode, out)
	}
	if out["text"] != "用户名" || out["target_lang"] != "zh" || out["cached"] != false {
		t.Errorf("reply = %v", out)
	}
	if id, _ := out["request_id"].(string); id == "" {
		t.Error("missing request_id")
	}

	_, out = postTranslate(t, ts, `{"text":"user_name"}`)
	if out["cached"] != true {
		t.Errorf("second reply = %v, want cached", out)
	}
	if engine.Calls() != 1 {
		t.Errorf("engine calls = %d, want 1", engine.Calls())
	}
}

func TestTranslateEndpointErrors(t *testing.T) {
	ts, _ := newTestServer(t, &fakeEngine{err: errors.New("offline")})

	if resp, _ := postTranslate(t, ts, `{"text":""}`); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("blank text status = %d", resp.StatusCode)
	}
	if resp, _ := postTranslate(t, ts, `{"text":`); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad json status = %d", resp.StatusCode)
	}
	if resp, _ := postTranslate(t, ts, `{"text":"orderId"}`); resp.StatusCode != http.StatusBadGateway {
		t.Errorf("engine failure status = %d", resp.StatusCode)
	}

	resp, err := http.Get(ts.URL + "/api/v1/translate")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET translate status = %d", resp.StatusCode)
	}
}

func TestCacheEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, &fakeEngine{out: "user name"})
	postTranslate(t, ts, `{"text":"用户名"}`)

	resp, err := http.Get(ts.URL + "/api/v1/cache")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var out struct {
		Count   int                    `json:"count"`
		Entries []translate.CacheEntry `json:"entries"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 1 || out.Entries[0].Key != "用户名" || out.Entries[0].Result != "user name" {
		t.Errorf("cache = %+v", out)
	}
}

func TestRequestEndpoints(t *testing.T) {
	ts, _ := newTestServer(t, &fakeEngine{out: "订单编号"})
	_, out := postTranslate(t, ts, `{"text":"orderId"}`)
	id := out["request_id"].(string)

	resp, err := http.Get(ts.URL + "/api/v1/requests/" + id)
	if err != nil {
		t.Fatal(err)
	}
	var rec service.RequestRecord
	err = json.NewDecoder(resp.Body).Decode(&rec)
	resp.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != service.RequestCompleted || rec.Result != "订单编号" {
		t.Errorf("record = %+v", rec)
	}

	resp, err = http.Get(ts.URL + "/api/v1/requests/" + id + "/events")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}
	sc := bufio.NewScanner(resp.Body)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if len(lines) < 2 || lines[0] != "event: status" || !strings.Contains(lines[1], `"status":"completed"`) {
		t.Errorf("events = %q", lines)
	}

	resp, err = http.Get(ts.URL + "/api/v1/requests/unknown")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown request status = %d", resp.StatusCode)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	ts, _ := newTestServer(t, &fakeEngine{out: "x"})

	for _, path := range []string{"/health", "/metrics"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s status = %d", path, resp.StatusCode)
		}
	}
}
