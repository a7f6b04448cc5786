package engine

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// notesAPI is an in-memory JSON API used as the remote end in engine tests
type notesAPI struct {
	mu      sync.Mutex
	notes   map[int]map[string]interface{}
	nextID  int
	hits    map[string]int
	headers http.Header
	methods []string
}

func newNotesAPI(t *testing.T) (*notesAPI, *httptest.Server) {
	t.Helper()

	api := &notesAPI{
		notes:  make(map[int]map[string]interface{}),
		nextID: 1,
		hits:   make(map[string]int),
	}

	r := chi.NewRouter()
	r.Use(api.record)

	r.Get("/note/", api.list)
	r.Post("/note/", api.create)
	r.Get("/note/{id}", api.get)
	r.Put("/note/{id}", api.update)
	r.Patch("/note/{id}", api.update)
	r.Delete("/note/{id}", api.delete)

	r.Get("/wrapped/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"objects": []interface{}{
				map[string]interface{}{"id": 1, "title": "first"},
				map[string]interface{}{"id": 2, "title": "second"},
			},
			"total": 2,
		})
	})

	r.Get("/profile/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(chi.URLParam(r, "id"))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"id":   id,
			"name": "ann",
			"home_address": map[string]interface{}{
				"city":    "Oslo",
				"country": "NO",
			},
		})
	})

	r.Post("/blank/", writeNull)
	r.Put("/blank/{id}", writeNull)

	r.Put("/silent/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return api, srv
}

func (a *notesAPI) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		a.hits[r.Method+" "+r.URL.Path]++
		a.headers = r.Header.Clone()
		a.methods = append(a.methods, r.Method)
		a.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (a *notesAPI) hitCount(key string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hits[key]
}

func (a *notesAPI) lastHeader(name string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.headers.Get(name)
}

func (a *notesAPI) lastMethod() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.methods) == 0 {
		return ""
	}
	return a.methods[len(a.methods)-1]
}

func (a *notesAPI) list(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	title := r.URL.Query().Get("title")
	out := []interface{}{}
	for id := 1; id < a.nextID; id++ {
		note, ok := a.notes[id]
		if !ok {
			continue
		}
		if title != "" && note["title"] != title {
			continue
		}
		out = append(out, note)
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *notesAPI) create(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.nextID
	a.nextID++
	body["id"] = id
	body["created"] = "2024-01-01T00:00:00Z"
	a.notes[id] = body
	writeJSON(w, http.StatusCreated, body)
}

func (a *notesAPI) get(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	note, ok := a.notes[urlID(r)]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": "not found"})
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (a *notesAPI) update(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	id := urlID(r)
	note, exists := a.notes[id]
	if !exists {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": "not found"})
		return
	}
	for k, v := range body {
		note[k] = v
	}
	note["id"] = id
	writeJSON(w, http.StatusOK, note)
}

func (a *notesAPI) delete(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	delete(a.notes, urlID(r))
	w.WriteHeader(http.StatusNoContent)
}

func writeNull(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, nil)
}

func urlID(r *http.Request) int {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	return id
}

func readBody(w http.ResponseWriter, r *http.Request) (map[string]interface{}, bool) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	body := map[string]interface{}{}
	if err := json.Unmarshal(raw, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return body, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
