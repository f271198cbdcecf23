package handler

import (
	"math/rand"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newGenerationRouter(gen *fakeGenerator, store *fakeStore) *gin.Engine {
	h := NewGenerationHandler(gen, store, "images", rand.New(rand.NewSource(1)))
	h.now = func() time.Time { return time.UnixMilli(1700000000000) }
	r := gin.New()
	r.POST("/generate", h.Generate)
	return r
}

func TestGenerateSuccess(t *testing.T) {
	gen := &fakeGenerator{image: []byte("png")}
	store := &fakeStore{}
	r := newGenerationRouter(gen, store)

	w := doJSON(t, r, http.MethodPost, "/generate", map[string]string{"prompt": "a red fox in snow"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if len(gen.prompts) != 1 || gen.prompts[0] != "a red fox in snow" {
		t.Errorf("generator prompts = %v", gen.prompts)
	}
	if len(store.puts) != 1 {
		t.Fatalf("store writes = %d, want 1", len(store.puts))
	}
	put := store.puts[0]
	if put.loc.Bucket != "images" || put.contentType != "image/png" || string(put.data) != "png" {
		t.Errorf("put = %+v", put)
	}

	body := decodeBody(t, w)
	if body["success"] != true || body["prompt"] != "a red fox in snow" {
		t.Errorf("body = %v", body)
	}
	pattern := regexp.MustCompile(`^s3://images/generated/1700000000000-[0-9a-z]+\.png$`)
	if url, _ := body["s3Url"].(string); !pattern.MatchString(url) {
		t.Errorf("s3Url = %q does not match %s", url, pattern)
	}
	if body["s3Url"] != put.loc.String() {
		t.Errorf("s3Url %v differs from written locator %s", body["s3Url"], put.loc)
	}
}

func TestGenerateRepeatedRequestsDiffer(t *testing.T) {
	store := &fakeStore{}
	r := newGenerationRouter(&fakeGenerator{image: []byte("png")}, store)
	for i := 0; i < 2; i++ {
		if w := doJSON(t, r, http.MethodPost, "/generate", map[string]string{"prompt": "fox"}); w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
	}
	if store.puts[0].loc == store.puts[1].loc {
		t.Errorf("identical requests wrote the same key %s", store.puts[0].loc)
	}
}

func TestGenerateRejectsMissingPrompt(t *testing.T) {
	tests := []struct {
		name string
		body interface{}
	}{
		{name: "empty object", body: map[string]string{}},
		{name: "empty prompt", body: map[string]string{"prompt": ""}},
		{name: "blank prompt", body: map[string]string{"prompt": "   "}},
		{name: "no body", body: nil},
		{name: "not json", body: "prompt=fox"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{image: []byte("png")}
			store := &fakeStore{}
			w := doJSON(t, newGenerationRouter(gen, store), http.MethodPost, "/generate", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			if len(gen.prompts) != 0 || len(store.puts) != 0 {
				t.Errorf("outbound calls made: generate %d, put %d", len(gen.prompts), len(store.puts))
			}
		})
	}

	w := doJSON(t, newGenerationRouter(&fakeGenerator{}, &fakeStore{}), http.MethodPost, "/generate", map[string]string{})
	if body := decodeBody(t, w); body["error"] != "prompt is required" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestGenerateUpstreamFailures(t *testing.T) {
	tests := []struct {
		name     string
		gen      *fakeGenerator
		store    *fakeStore
		wantPuts int
	}{
		{
			name:     "model fails",
			gen:      &fakeGenerator{err: errUpstream},
			store:    &fakeStore{},
			wantPuts: 0,
		},
		{
			name:     "store fails",
			gen:      &fakeGenerator{image: []byte("png")},
			store:    &fakeStore{putErr: errUpstream},
			wantPuts: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, newGenerationRouter(tt.gen, tt.store), http.MethodPost, "/generate", map[string]string{"prompt": "fox"})
			if w.Code != http.StatusInternalServerError {
				t.Fatalf("status = %d, want 500", w.Code)
			}
			body := decodeBody(t, w)
			if body["error"] != "Failed to generate image" || body["detail"] == nil {
				t.Errorf("body = %v", body)
			}
			if len(tt.store.puts) != tt.wantPuts {
				t.Errorf("puts = %d, want %d", len(tt.store.puts), tt.wantPuts)
			}
		})
	}
}
