package graph_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/modelcanvas/pkg/graph"
	"github.com/matzehuels/modelcanvas/pkg/model"
)

func ExampleMarshalGraph() {
	g := model.New(nil)
	g.AddNode(model.Node{ID: "in", Kind: model.NodeKindTensor, IsInput: true})
	g.AddNode(model.Node{ID: "relu"})
	g.AddEdge(model.Edge{From: "in", To: "relu"})

	data, _ := graph.MarshalGraph(g)
	fmt.Print(string(data))
	// Output:
	// {
	//   "nodes": [
	//     {
	//       "id": "in",
	//       "kind": "tensor",
	//       "input": true
	//     },
	//     {
	//       "id": "relu"
	//     }
	//   ],
	//   "edges": [
	//     {
	//       "from": "in",
	//       "to": "relu",
	//       "count": 1
	//     }
	//   ]
	// }
}

func ExampleReadGraph() {
	input := `{
		"nodes": [
			{"id": "in", "kind": "tensor"},
			{"id": "conv1", "parent": "features", "depth": 1}
		],
		"containers": [{"id": "features", "depth": 1}],
		"edges": [{"from": "in", "to": "conv1"}]
	}`

	g, err := graph.ReadGraph(strings.NewReader(input))
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Printf("nodes: %d, containers: %d, edges: %d\n",
		g.NodeCount(), g.ContainerCount(), g.EdgeCount())
	fmt.Println("in is tensor:", g.Node("in").IsTensor())
	// Output:
	// nodes: 2, containers: 1, edges: 1
	// in is tensor: true
}
