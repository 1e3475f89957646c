package server

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/atlas/pkg/buildinfo"
	"github.com/matzehuels/atlas/pkg/docstore"
	"github.com/matzehuels/atlas/pkg/document"
	"github.com/matzehuels/atlas/pkg/errors"
	"github.com/matzehuels/atlas/pkg/mapgraph"
	"github.com/matzehuels/atlas/pkg/render"
	"github.com/matzehuels/atlas/pkg/session"
)

// =============================================================================
// Health
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// =============================================================================
// Document
// =============================================================================

// documentLoadedResponse reports what a document replacement produced.
type documentLoadedResponse struct {
	Maps     int                `json:"maps"`
	Hotspots int                `json:"hotspots"`
	Root     string             `json:"root"`
	Warnings []mapgraph.Warning `json:"warnings,omitempty"`
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	data, err := s.sess.Export()
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) handlePutDocument(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.mu.Lock()
	warnings, err := s.sess.LoadDocument(body)
	g := s.sess.Graph()
	root := s.sess.CurrentMapID()
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, documentLoadedResponse{
		Maps:     g.Len(),
		Hotspots: g.HotspotCount(),
		Root:     root,
		Warnings: warnings,
	})
}

// =============================================================================
// Maps & Hotspots
// =============================================================================

type mapSummary struct {
	ID         string `json:"id"`
	ImageURL   string `json:"imageUrl"`
	Hotspots   int    `json:"hotspots"`
	References int    `json:"references"`
}

type mapsResponse struct {
	Root string       `json:"root"`
	Maps []mapSummary `json:"maps"`
}

func (s *Server) handleListMaps(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	g := s.sess.Graph()
	s.mu.Unlock()

	resp := mapsResponse{Root: g.InferRoot(), Maps: []mapSummary{}}
	for _, n := range g.Nodes() {
		resp.Maps = append(resp.Maps, mapSummary{
			ID:         n.ID,
			ImageURL:   n.ImageURL,
			Hotspots:   len(n.Hotspots),
			References: g.References(n.ID),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetMap(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	node, ok := s.sess.Graph().Node(id)
	s.mu.Unlock()
	if !ok {
		s.writeError(w, errors.New(errors.ErrCodeMapNotFound, "map %q not found", id))
		return
	}
	writeJSON(w, http.StatusOK, node)
}

// addHotspotRequest carries a hotspot plus the image for a map the link
// may create.
type addHotspotRequest struct {
	mapgraph.Hotspot
	NewMapImageURL string `json:"newMapImageUrl,omitempty"`
}

func (s *Server) handleAddHotspot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req addHotspotRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	s.mu.Lock()
	hid, err := s.sess.AddHotspot(id, req.Hotspot, req.NewMapImageURL)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": hid})
}

func (s *Server) handleUpdateHotspot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	hid := chi.URLParam(r, "hid")

	var patch mapgraph.HotspotPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.writeError(w, err)
		return
	}

	s.mu.Lock()
	err := s.sess.UpdateHotspot(id, hid, patch)
	var h mapgraph.Hotspot
	if err == nil {
		h, _ = s.sess.Graph().FindHotspot(id, hid)
	}
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

// deleteResponse reports a hotspot deletion, including a swept orphan map.
type deleteResponse struct {
	Deleted       bool              `json:"deleted"`
	OrphanRemoved string            `json:"orphanRemoved,omitempty"`
	Warning       *mapgraph.Warning `json:"warning,omitempty"`
}

func (s *Server) handleDeleteHotspot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	hid := chi.URLParam(r, "hid")

	s.mu.Lock()
	res, err := s.sess.DeleteHotspot(id, hid)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{
		Deleted:       res.Deleted,
		OrphanRemoved: res.OrphanRemoved,
		Warning:       res.Warning,
	})
}

type setImageRequest struct {
	ImageURL string `json:"imageUrl"`
}

func (s *Server) handleSetImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req setImageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	s.mu.Lock()
	err := s.sess.ChangeMapImage(id, req.ImageURL)
	var node mapgraph.MapNode
	if err == nil {
		node, _ = s.sess.Graph().Node(id)
	}
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, node)
}

// =============================================================================
// Navigation
// =============================================================================

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	frame, err := s.sess.Frame()
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, frame)
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	err := s.sess.NavigateToChild(id)
	var frame session.Frame
	if err == nil {
		frame, err = s.sess.Frame()
	}
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, frame)
}

// backResponse reports a back navigation. The frame is omitted when the
// session has no current map afterwards.
type backResponse struct {
	Moved bool           `json:"moved"`
	Frame *session.Frame `json:"frame,omitempty"`
}

func (s *Server) handleNavigateBack(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	moved, err := s.sess.NavigateBack()
	var frame *session.Frame
	if err == nil {
		if f, ferr := s.sess.Frame(); ferr == nil {
			frame = &f
		}
	}
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, backResponse{Moved: moved, Frame: frame})
}

// =============================================================================
// Rendering
// =============================================================================

func contentType(format render.Format) string {
	switch format {
	case render.FormatSVG:
		return "image/svg+xml"
	case render.FormatPNG:
		return "image/png"
	default:
		return "text/vnd.graphviz"
	}
}

// renderOptsFromQuery reads ?rankdir=LR&labels=false&orphans=true&urls=true.
func renderOptsFromQuery(q url.Values) render.Options {
	opts := render.Options{Rankdir: q.Get("rankdir"), Labels: true}
	if b, err := strconv.ParseBool(q.Get("labels")); err == nil {
		opts.Labels = b
	}
	if b, err := strconv.ParseBool(q.Get("orphans")); err == nil {
		opts.Orphans = b
	}
	if b, err := strconv.ParseBool(q.Get("urls")); err == nil {
		opts.URLs = b
	}
	return opts
}

func (s *Server) handleRender(format render.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.renderer == nil {
			s.writeError(w, errors.New(errors.ErrCodeUnsupported, "rendering is not configured"))
			return
		}

		// The graph is immutable; rendering happens outside the lock.
		s.mu.Lock()
		g := s.sess.Graph()
		s.mu.Unlock()

		data, hit, err := s.renderer.Overview(r.Context(), g, format, renderOptsFromQuery(r.URL.Query()))
		if err != nil {
			s.writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", contentType(format))
		if hit {
			w.Header().Set("X-Cache", "hit")
		}
		_, _ = w.Write(data)
	}
}

// =============================================================================
// Stored documents
// =============================================================================

// putDocResponse reports what was stored.
type putDocResponse struct {
	Name     string             `json:"name"`
	Maps     int                `json:"maps"`
	Hotspots int                `json:"hotspots"`
	Warnings []mapgraph.Warning `json:"warnings,omitempty"`
}

func (s *Server) handleListDocs(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if entries == nil {
		entries = []docstore.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleGetDoc(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	data, err := s.store.Get(r.Context(), name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

// handlePutDoc stores a document under the given name. A request body is
// normalized to canonical form first; an empty body snapshots the live
// session document instead.
func (s *Server) handlePutDoc(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	body, err := readBody(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var (
		g        *mapgraph.Graph
		warnings []mapgraph.Warning
		data     []byte
	)
	if len(body) == 0 {
		s.mu.Lock()
		g = s.sess.Graph()
		data, err = s.sess.Export()
		s.mu.Unlock()
	} else {
		g, warnings, err = document.Unmarshal(body)
		if err == nil {
			data, err = document.Marshal(g)
		}
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.store.Put(r.Context(), name, data); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, putDocResponse{
		Name:     name,
		Maps:     g.Len(),
		Hotspots: g.HotspotCount(),
		Warnings: warnings,
	})
}

func (s *Server) handleDeleteDoc(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.store.Delete(r.Context(), name); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
