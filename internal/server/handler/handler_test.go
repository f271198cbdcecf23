package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/haojie06/canvas-relay/internal/chat"
	"github.com/haojie06/canvas-relay/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeGenerator struct {
	prompts []string
	image   []byte
	err     error
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) ([]byte, error) {
	f.prompts = append(f.prompts, prompt)
	return f.image, f.err
}

type putCall struct {
	loc         storage.Locator
	data        []byte
	contentType string
}

type fakeStore struct {
	puts   []putCall
	gets   []storage.Locator
	object *storage.Object
	putErr error
	getErr error
}

func (f *fakeStore) Put(ctx context.Context, loc storage.Locator, data []byte, contentType string) error {
	f.puts = append(f.puts, putCall{loc: loc, data: data, contentType: contentType})
	return f.putErr
}

func (f *fakeStore) Get(ctx context.Context, loc storage.Locator) (*storage.Object, error) {
	f.gets = append(f.gets, loc)
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.object, nil
}

type imagePost struct {
	text string
	file chat.File
}

type fakePoster struct {
	texts  []string
	images []imagePost
	err    error
}

func (f *fakePoster) PostText(ctx context.Context, text string) (*chat.Ack, error) {
	f.texts = append(f.texts, text)
	if f.err != nil {
		return nil, f.err
	}
	return &chat.Ack{OK: true, Channel: "C123", Timestamp: "1.1"}, nil
}

func (f *fakePoster) PostImage(ctx context.Context, text string, file chat.File) (*chat.Ack, error) {
	f.images = append(f.images, imagePost{text: text, file: file})
	if f.err != nil {
		return nil, f.err
	}
	return &chat.Ack{OK: true, Channel: "C123", Timestamp: "2.2", FileId: "F1"}, nil
}

func (f *fakePoster) calls() int {
	return len(f.texts) + len(f.images)
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	case nil:
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response %q is not json: %v", w.Body.String(), err)
	}
	return body
}

var errUpstream = errors.New("upstream exploded")
