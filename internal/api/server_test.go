package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/modelcanvas/pkg/graph"
	"github.com/matzehuels/modelcanvas/pkg/model"
	"github.com/matzehuels/modelcanvas/pkg/store"
	"github.com/matzehuels/modelcanvas/pkg/view"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return NewServer(Config{
		Store:  store.NewMemoryStore(),
		Logger: log.NewWithOptions(io.Discard, log.Options{}),
	})
}

func testGraph(t *testing.T) graph.Graph {
	t.Helper()
	g := model.New(nil)
	mustAdd := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	mustAdd(g.AddContainer(model.Container{ID: "block", Label: "Block", Depth: 1}))
	mustAdd(g.AddNode(model.Node{ID: "in", Label: "in", Kind: model.NodeKindTensor, IsInput: true}))
	mustAdd(g.AddNode(model.Node{ID: "linear", Label: "Linear", Depth: 1, Parent: "block", NumParams: 128}))
	mustAdd(g.AddNode(model.Node{ID: "relu", Label: "ReLU", Depth: 1, Parent: "block"}))
	mustAdd(g.AddNode(model.Node{ID: "out", Label: "out", Kind: model.NodeKindTensor, IsOutput: true}))
	mustAdd(g.AddEdge(model.Edge{From: "in", To: "linear"}))
	mustAdd(g.AddEdge(model.Edge{From: "linear", To: "relu"}))
	mustAdd(g.AddEdge(model.Edge{From: "relu", To: "out"}))
	return graph.FromModel(g)
}

// upload stores a graph through the API and returns its ID.
func upload(t *testing.T, s *Server, name string) string {
	t.Helper()
	body, err := json.Marshal(createGraphRequest{Name: name, Graph: testGraph(t)})
	if err != nil {
		t.Fatal(err)
	}
	rr := doRequest(s, http.MethodPost, "/api/graphs", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rr.Code, rr.Body)
	}
	var resp createGraphResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ID == "" || resp.Hash == "" {
		t.Fatalf("incomplete create response: %+v", resp)
	}
	return resp.ID
}

func doRequest(s *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rr := doRequest(s, http.MethodGet, "/healthz", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestGraphLifecycle(t *testing.T) {
	s := newTestServer(t)
	id := upload(t, s, "mlp")

	rr := doRequest(s, http.MethodGet, "/api/graphs/"+id, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get status = %d", rr.Code)
	}
	var rec store.Record
	if err := json.Unmarshal(rr.Body.Bytes(), &rec); err != nil {
		t.Fatal(err)
	}
	if rec.Name != "mlp" || len(rec.Graph.Nodes) != 4 {
		t.Errorf("record = %q with %d nodes, want mlp with 4", rec.Name, len(rec.Graph.Nodes))
	}

	rr = doRequest(s, http.MethodGet, "/api/graphs/", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d", rr.Code)
	}
	var items []map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Errorf("list has %d items, want 1", len(items))
	}

	if rr := doRequest(s, http.MethodDelete, "/api/graphs/"+id, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rr.Code)
	}
	if rr := doRequest(s, http.MethodGet, "/api/graphs/"+id, nil); rr.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rr.Code)
	}
}

func TestCreateGraph_Invalid(t *testing.T) {
	s := newTestServer(t)

	rr := doRequest(s, http.MethodPost, "/api/graphs", []byte("{not json"))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", rr.Code)
	}

	// A node without an ID fails model validation.
	body, _ := json.Marshal(createGraphRequest{Graph: graph.Graph{
		Nodes: []graph.Node{{Label: "anonymous"}},
	}})
	rr = doRequest(s, http.MethodPost, "/api/graphs", body)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid graph status = %d, want 422", rr.Code)
	}

	// Names that could escape into file paths are rejected.
	body, _ = json.Marshal(createGraphRequest{
		Name:  "../escape",
		Graph: testGraph(t),
	})
	rr = doRequest(s, http.MethodPost, "/api/graphs", body)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("traversal name status = %d, want 400", rr.Code)
	}
}

func TestRender(t *testing.T) {
	s := newTestServer(t)
	id := upload(t, s, "")

	rr := doRequest(s, http.MethodGet, "/api/graphs/"+id+"/render", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("render status = %d, body %s", rr.Code, rr.Body)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(rr.Body.String(), "<svg") {
		t.Error("expected svg output")
	}

	rr = doRequest(s, http.MethodGet, "/api/graphs/"+id+"/render?format=gif", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad format status = %d, want 400", rr.Code)
	}
	rr = doRequest(s, http.MethodGet, "/api/graphs/"+id+"/render?engine=elk", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad engine status = %d, want 400", rr.Code)
	}
}

func TestLayout(t *testing.T) {
	s := newTestServer(t)
	id := upload(t, s, "")

	rr := doRequest(s, http.MethodGet, "/api/graphs/"+id+"/layout", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("layout status = %d, body %s", rr.Code, rr.Body)
	}
	var l struct {
		Nodes  []json.RawMessage `json:"nodes"`
		Width  float64           `json:"width"`
		Height float64           `json:"height"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &l); err != nil {
		t.Fatal(err)
	}
	if len(l.Nodes) != 4 {
		t.Errorf("layout has %d nodes, want 4", len(l.Nodes))
	}
	if l.Width <= 0 || l.Height <= 0 {
		t.Error("layout missing canvas size")
	}

	if rr := doRequest(s, http.MethodGet, "/api/graphs/missing/layout", nil); rr.Code != http.StatusNotFound {
		t.Errorf("missing graph status = %d, want 404", rr.Code)
	}
}

func TestViewFlow(t *testing.T) {
	s := newTestServer(t)
	id := upload(t, s, "")
	base := "/api/graphs/" + id + "/view"

	// Initial view: the top-level container plus the free tensors.
	rr := doRequest(s, http.MethodGet, base, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("view status = %d", rr.Code)
	}
	var vg view.Graph
	if err := json.Unmarshal(rr.Body.Bytes(), &vg); err != nil {
		t.Fatal(err)
	}
	if len(vg.Nodes) != 3 {
		t.Fatalf("initial view has %d nodes, want 3", len(vg.Nodes))
	}

	// Expanding the block reveals its members.
	rr = doRequest(s, http.MethodPost, base+"/expand/block", nil)
	if err := json.Unmarshal(rr.Body.Bytes(), &vg); err != nil {
		t.Fatal(err)
	}
	if len(vg.Nodes) != 5 {
		t.Errorf("expanded view has %d nodes, want 5", len(vg.Nodes))
	}

	// The visible view can go through the layout pipeline.
	rr = doRequest(s, http.MethodGet, "/api/graphs/"+id+"/layout?view=true", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("view layout status = %d, body %s", rr.Code, rr.Body)
	}

	// State round-trip.
	rr = doRequest(s, http.MethodGet, base+"/state", nil)
	var state expansionStateResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &state); err != nil {
		t.Fatal(err)
	}
	if len(state.Expanded) != 1 || state.Expanded[0] != "block" {
		t.Errorf("state = %v, want [block]", state.Expanded)
	}

	body, _ := json.Marshal(expansionStateRequest{Expanded: nil})
	rr = doRequest(s, http.MethodPut, base+"/state", body)
	if err := json.Unmarshal(rr.Body.Bytes(), &vg); err != nil {
		t.Fatal(err)
	}
	if len(vg.Nodes) != 3 {
		t.Errorf("view after reset has %d nodes, want 3", len(vg.Nodes))
	}

	// Toggle expands again.
	rr = doRequest(s, http.MethodPost, base+"/toggle/block", nil)
	if err := json.Unmarshal(rr.Body.Bytes(), &vg); err != nil {
		t.Fatal(err)
	}
	if len(vg.Nodes) != 5 {
		t.Errorf("view after toggle has %d nodes, want 5", len(vg.Nodes))
	}
}

func TestSummaryAndDetails(t *testing.T) {
	s := newTestServer(t)
	id := upload(t, s, "")

	rr := doRequest(s, http.MethodGet, "/api/graphs/"+id+"/summary", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("summary status = %d", rr.Code)
	}
	var sum view.Summary
	if err := json.Unmarshal(rr.Body.Bytes(), &sum); err != nil {
		t.Fatal(err)
	}
	if sum.Nodes != 4 || sum.Containers != 1 || sum.TotalParams != 128 {
		t.Errorf("summary = %+v", sum)
	}

	rr = doRequest(s, http.MethodGet, "/api/graphs/"+id+"/nodes/linear", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("details status = %d", rr.Code)
	}
	var d view.Details
	if err := json.Unmarshal(rr.Body.Bytes(), &d); err != nil {
		t.Fatal(err)
	}
	if d.Label != "Linear" || d.NumParams != 128 || d.Parent != "block" {
		t.Errorf("details = %+v", d)
	}

	if rr := doRequest(s, http.MethodGet, "/api/graphs/"+id+"/nodes/ghost", nil); rr.Code != http.StatusNotFound {
		t.Errorf("unknown node status = %d, want 404", rr.Code)
	}
}
