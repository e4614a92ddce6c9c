package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/matzehuels/modelcanvas/pkg/errors"
	"github.com/matzehuels/modelcanvas/pkg/graph"
	"github.com/matzehuels/modelcanvas/pkg/model"
	"github.com/matzehuels/modelcanvas/pkg/pipeline"
	"github.com/matzehuels/modelcanvas/pkg/store"
	"github.com/matzehuels/modelcanvas/pkg/view"
)

// maxGraphBody caps uploaded graph payloads at 32 MiB.
const maxGraphBody = 32 << 20

// =============================================================================
// Request / Response Types
// =============================================================================

type createGraphRequest struct {
	Name  string      `json:"name,omitempty"`
	Graph graph.Graph `json:"graph"`
}

type createGraphResponse struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Hash string `json:"hash"`
}

type expansionStateRequest struct {
	Expanded []string `json:"expanded"`
}

type expansionStateResponse struct {
	Expanded []string `json:"expanded"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateGraph(w http.ResponseWriter, r *http.Request) {
	var req createGraphRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxGraphBody))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Name != "" {
		if err := apperrors.ValidateGraphName(req.Name); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	for _, n := range req.Graph.Nodes {
		if err := apperrors.ValidateElementID(n.ID); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
	}
	// Reject graphs the model layer would refuse, before they are
	// persisted.
	if _, err := graph.ToModel(req.Graph); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	rec, err := s.store.Put(r.Context(), req.Name, req.Graph)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.logger.Info("stored graph", "id", rec.ID, "name", rec.Name, "nodes", len(req.Graph.Nodes))
	writeJSON(w, http.StatusCreated, createGraphResponse{ID: rec.ID, Name: rec.Name, Hash: rec.Hash})
}

func (s *Server) handleListGraphs(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	// Strip graph payloads from the listing.
	type item struct {
		ID        string `json:"id"`
		Name      string `json:"name,omitempty"`
		Hash      string `json:"hash"`
		NodeCount int    `json:"node_count"`
	}
	items := make([]item, 0, len(recs))
	for _, rec := range recs {
		items = append(items, item{
			ID:        rec.ID,
			Name:      rec.Name,
			Hash:      rec.Hash,
			NodeCount: len(rec.Graph.Nodes),
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "graphID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteGraph(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "graphID")
	if err := s.store.Delete(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	s.dropBuilder(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	b, err := s.builderFor(r.Context(), chi.URLParam(r, "graphID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b.Summary())
}

func (s *Server) handleNodeDetails(w http.ResponseWriter, r *http.Request) {
	b, err := s.builderFor(r.Context(), chi.URLParam(r, "graphID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	details, ok := b.Details(chi.URLParam(r, "nodeID"))
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("node not found"))
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// handleLayout computes (or fetches from cache) the layout of a stored
// graph and returns it as JSON. With ?view=true the layout covers the
// currently visible expansion state instead of the full graph.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	g, opts, ok := s.layoutInputs(w, r)
	if !ok {
		return
	}
	l, err := s.runner.ComputeLayout(r.Context(), g, opts)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// handleRender runs the full pipeline and returns a single rendered
// artifact. The format query parameter selects svg (default), png, pdf,
// or json.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	g, opts, ok := s.layoutInputs(w, r)
	if !ok {
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	opts.Formats = []string{format}
	opts.Title = r.URL.Query().Get("title")
	if scale := r.URL.Query().Get("scale"); scale != "" {
		f, err := strconv.ParseFloat(scale, 64)
		if err != nil || f <= 0 {
			writeError(w, http.StatusBadRequest, errors.New("scale must be a positive number"))
			return
		}
		opts.Scale = f
	}

	result, err := s.runner.Execute(r.Context(), g, opts)
	if err != nil {
		writePipelineError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentTypeFor(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	b, err := s.builderFor(r.Context(), chi.URLParam(r, "graphID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b.Visible())
}

func (s *Server) handleExpand(w http.ResponseWriter, r *http.Request) {
	s.mutateView(w, r, func(b *view.Builder, id string) view.Graph { return b.Expand(id) })
}

func (s *Server) handleCollapse(w http.ResponseWriter, r *http.Request) {
	s.mutateView(w, r, func(b *view.Builder, id string) view.Graph { return b.Collapse(id) })
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	s.mutateView(w, r, func(b *view.Builder, id string) view.Graph { return b.Toggle(id) })
}

func (s *Server) mutateView(w http.ResponseWriter, r *http.Request, op func(*view.Builder, string) view.Graph) {
	b, err := s.builderFor(r.Context(), chi.URLParam(r, "graphID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, op(b, chi.URLParam(r, "elementID")))
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	b, err := s.builderFor(r.Context(), chi.URLParam(r, "graphID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expansionStateResponse{Expanded: b.ExpansionState()})
}

func (s *Server) handleSetState(w http.ResponseWriter, r *http.Request) {
	b, err := s.builderFor(r.Context(), chi.URLParam(r, "graphID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	var req expansionStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	b.SetExpansionState(req.Expanded)
	writeJSON(w, http.StatusOK, b.Visible())
}

// =============================================================================
// Helpers
// =============================================================================

// layoutInputs resolves the graph and pipeline options shared by the
// layout and render handlers. On failure it writes the error response
// and reports ok=false.
func (s *Server) layoutInputs(w http.ResponseWriter, r *http.Request) (*model.Graph, pipeline.Options, bool) {
	id := chi.URLParam(r, "graphID")
	q := r.URL.Query()

	opts := pipeline.Options{
		Engine:    q.Get("engine"),
		Direction: q.Get("direction"),
		Nested:    q.Get("nested") == "true",
		Refresh:   q.Get("refresh") == "true",
		Logger:    s.logger,
	}
	if err := opts.ValidateForLayout(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, pipeline.Options{}, false
	}

	if q.Get("view") == "true" {
		b, err := s.builderFor(r.Context(), id)
		if err != nil {
			writeStoreError(w, err)
			return nil, pipeline.Options{}, false
		}
		return viewModelGraph(b.Visible()), opts, true
	}

	rec, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return nil, pipeline.Options{}, false
	}
	g, err := graph.ToModel(rec.Graph)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return nil, pipeline.Options{}, false
	}
	return g, opts, true
}

// viewModelGraph flattens a visible view graph into a model graph so it
// can go through the layout pipeline. Collapsed containers become
// operation leaves; hierarchy and sequence edges become plain edges.
func viewModelGraph(vg view.Graph) *model.Graph {
	g := model.New(nil)
	for _, n := range vg.Nodes {
		kind := model.NodeKindOperation
		if n.Kind == view.KindTensor {
			kind = model.NodeKindTensor
		}
		_ = g.AddNode(model.Node{
			ID:        n.ID,
			Label:     n.Label,
			Kind:      kind,
			NumParams: n.NumParams,
		})
	}
	for _, e := range vg.Edges {
		_ = g.AddEdge(model.Edge{From: e.From, To: e.To})
	}
	return g
}

func contentTypeFor(format string) string {
	switch format {
	case pipeline.FormatSVG:
		return "image/svg+xml"
	case pipeline.FormatPNG:
		return "image/png"
	case pipeline.FormatPDF:
		return "application/pdf"
	default:
		return "application/json"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// writeStoreError maps store errors onto HTTP status codes.
func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeError(w, http.StatusInternalServerError, err)
}

// writePipelineError maps pipeline errors onto HTTP status codes.
// Validation failures read as client errors; everything else is a 500.
func writePipelineError(w http.ResponseWriter, err error) {
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeInvalidFormat,
		apperrors.ErrCodeInvalidEngine,
		apperrors.ErrCodeInvalidDirection,
		apperrors.ErrCodeInvalidScale:
		writeError(w, http.StatusBadRequest, err)
	case apperrors.ErrCodeGraphNotFound, apperrors.ErrCodeNodeNotFound:
		writeError(w, http.StatusNotFound, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
