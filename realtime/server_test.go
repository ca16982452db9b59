package realtime

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"

	"github.com/viant/firebridge/shared"
)

// restServer emulates the realtime database REST endpoint, query parameters are ignored
type restServer struct {
	*httptest.Server
	mu     sync.Mutex
	root   shared.Value
	denied []string
}

func newRESTServer() *restServer {
	ret := &restServer{}
	ret.Server = httptest.NewServer(http.HandlerFunc(ret.handle))
	return ret
}

// client returns HTTP client routing every request to the server
func (s *restServer) client() *http.Client {
	target, _ := url.Parse(s.URL)
	return &http.Client{Transport: &rewrite{target: target}}
}

func (s *restServer) deny(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.denied = append(s.denied, path)
}

func (s *restServer) get(path string) shared.Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	return shared.GetPath(s.root, path)
}

func (s *restServer) put(path string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.root = shared.SetPath(s.root, path, shared.MustValueOf(value))
}

func (s *restServer) handle(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(shared.JoinPath(r.URL.Path), ".json")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, denied := range s.denied {
		if path == denied || strings.HasPrefix(path, denied+"/") {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error": "Permission denied"}`))
			return
		}
	}
	var body interface{}
	if r.Body != nil {
		data, _ := io.ReadAll(r.Body)
		if len(data) > 0 {
			if err := json.Unmarshal(data, &body); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error": "Invalid data"}`))
				return
			}
		}
	}
	switch r.Method {
	case http.MethodGet:
		data, _ := json.Marshal(shared.GetPath(s.root, path))
		sum := sha1.Sum(data)
		etag := hex.EncodeToString(sum[:])
		w.Header().Set("ETag", etag)
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		_, _ = w.Write(data)
		return
	case http.MethodPut:
		s.root = shared.SetPath(s.root, path, shared.MustValueOf(body))
	case http.MethodPatch:
		fields, _ := body.(map[string]interface{})
		for key, value := range fields {
			s.root = shared.SetPath(s.root, shared.JoinPath(path, key), shared.MustValueOf(value))
		}
	case http.MethodDelete:
		s.root = shared.SetPath(s.root, path, shared.Null())
		body = nil
	}
	if r.URL.Query().Get("print") == "silent" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	data, _ := json.Marshal(body)
	_, _ = w.Write(data)
}

type rewrite struct {
	target *url.URL
}

func (t *rewrite) RoundTrip(r *http.Request) (*http.Response, error) {
	clone := r.Clone(r.Context())
	clone.URL.Scheme = t.target.Scheme
	clone.URL.Host = t.target.Host
	clone.Host = t.target.Host
	return http.DefaultTransport.RoundTrip(clone)
}
