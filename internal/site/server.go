package site

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os/exec"
	"runtime"
	"strings"

	"github.com/ziadkadry99/kds-visual/internal/species"
)

// Serve starts a local HTTP file server for the generated atlas.
// If store is non-nil, an /api/search endpoint answers name prefix queries
// against the live species database.
func Serve(dir string, port int, open bool, store *species.Store) error {
	addr := fmt.Sprintf(":%d", port)
	url := fmt.Sprintf("http://localhost:%d", port)

	if open {
		go openBrowser(url)
	}

	slog.Info("serving atlas", "url", url, "dir", dir)
	return http.ListenAndServe(addr, NewHandler(dir, store))
}

// NewHandler serves the atlas directory, plus /api/search when store is set.
func NewHandler(dir string, store *species.Store) http.Handler {
	mux := http.NewServeMux()

	if store != nil {
		mux.HandleFunc("/api/search", func(w http.ResponseWriter, r *http.Request) {
			handleSearch(w, r, store)
		})
	}

	// Static files (must be registered after API routes).
	mux.Handle("/", http.FileServer(http.Dir(dir)))
	return mux
}

// searchRequest is the JSON body for the /api/search endpoint.
type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// searchResponse is the JSON response for the /api/search endpoint.
type searchResponse struct {
	Results []SearchEntry `json:"results"`
}

func handleSearch(w http.ResponseWriter, r *http.Request, store *species.Store) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		http.Error(w, `{"error":"query is required"}`, http.StatusBadRequest)
		return
	}
	if req.Limit <= 0 || req.Limit > 50 {
		req.Limit = 10
	}

	list, err := store.Search(r.Context(), req.Query, req.Limit)
	if err != nil {
		http.Error(w, `{"error":"search failed"}`, http.StatusInternalServerError)
		return
	}

	resp := searchResponse{Results: make([]SearchEntry, 0, len(list))}
	for _, sp := range list {
		resp.Results = append(resp.Results, SearchEntry{
			ScientificName: sp.ScientificName,
			CommonName:     sp.CommonName,
			Family:         sp.Family,
			Href:           pageHref(sp.ScientificName),
		})
	}
	json.NewEncoder(w).Encode(resp)
}

// openBrowser opens the given URL in the default browser.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	_ = cmd.Start()
}
