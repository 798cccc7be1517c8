package species

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// ChangeLog records dataset changes made through the API.
type ChangeLog interface {
	RecordChange(ctx context.Context, actor, action, subject, summary string) error
}

// RegisterRoutes mounts the species dataset endpoints on the given router.
// changes may be nil.
func RegisterRoutes(r chi.Router, store *Store, changes ChangeLog) {
	r.Get("/api/species", listSpeciesHandler(store))
	r.Post("/api/species", createSpeciesHandler(store, changes))
	r.Get("/api/species/{id}", getSpeciesHandler(store))
	r.Get("/api/locations", listLocationsHandler(store))
	r.Get("/api/locations/species", speciesAtHandler(store))
}

// listSpeciesHandler lists all species, or prefix matches when ?q is set.
// ?family filters by family.
func listSpeciesHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var (
			list []Species
			err  error
		)
		switch {
		case q.Get("q") != "":
			limit, _ := strconv.Atoi(q.Get("limit"))
			list, err = store.Search(r.Context(), q.Get("q"), limit)
		case q.Get("family") != "":
			list, err = store.ByFamily(r.Context(), q.Get("family"))
		default:
			list, err = store.List(r.Context())
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if list == nil {
			list = []Species{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// getSpeciesHandler accepts a numeric id or a scientific name.
func getSpeciesHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "id")
		var (
			d   *Detail
			err error
		)
		if id, convErr := strconv.ParseInt(key, 10, 64); convErr == nil {
			d, err = store.Get(r.Context(), id)
		} else {
			d, err = store.GetByName(r.Context(), key)
		}
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "species not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, d)
	}
}

func createSpeciesHandler(store *Store, changes ChangeLog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sp Species
		if err := json.NewDecoder(r.Body).Decode(&sp); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		sp.ScientificName = strings.TrimSpace(sp.ScientificName)
		if sp.ScientificName == "" {
			http.Error(w, "scientific_name is required", http.StatusBadRequest)
			return
		}
		created, err := store.Create(r.Context(), &sp)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if !created {
			writeJSON(w, http.StatusOK, sp)
			return
		}
		if changes != nil {
			summary := "created species " + sp.ScientificName
			if err := changes.RecordChange(r.Context(), r.RemoteAddr, "species_created", sp.ScientificName, summary); err != nil {
				slog.Warn("recording species change failed", "species", sp.ScientificName, "error", err)
			}
		}
		writeJSON(w, http.StatusCreated, sp)
	}
}

func listLocationsHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locs, err := store.AllLocations(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, locs)
	}
}

func speciesAtHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		if name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}
		list, err := store.SpeciesAt(r.Context(), name)
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "location not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if list == nil {
			list = []Species{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
