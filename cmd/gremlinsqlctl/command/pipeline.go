package command

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/gremlinsql/compiler/predicate"
	"github.com/gremlinsql/compiler/strategy"
	"github.com/gremlinsql/compiler/topology"
)

// stepDTO is the on-disk JSON shape of one host pipeline step, decoded into
// a strategy.Step. Kept deliberately flat (no host-framework-specific step
// types) since the real pipeline shape is owned by the host, not this CLI —
// gremlinsqlctl's `compile` sub-command exists for offline inspection and
// the `serve` endpoint, not as a production ingestion path.
type stepDTO struct {
	Kind       string          `json:"kind"`
	GraphID    string          `json:"graphId,omitempty"`
	Source     string          `json:"source,omitempty"`
	NavLabels  []string        `json:"navLabels,omitempty"`
	Labels     []string        `json:"labels,omitempty"`
	Containers []containerDTO `json:"containers,omitempty"`
}

type containerDTO struct {
	Key   string      `json:"key"`
	Op    string      `json:"op"`
	Value interface{} `json:"value"`
}

var kindByName = map[string]strategy.Kind{
	"source":              strategy.KindSource,
	"filter":              strategy.KindFilter,
	"identity":            strategy.KindIdentity,
	"outEdge":             strategy.KindOutEdge,
	"inEdge":              strategy.KindInEdge,
	"bothEdge":            strategy.KindBothEdge,
	"outVertex":           strategy.KindOutVertex,
	"inVertex":            strategy.KindInVertex,
	"pathMaterialization": strategy.KindPathMaterialization,
	"treeMaterialization": strategy.KindTreeMaterialization,
	"nonTrivialOrder":     strategy.KindNonTrivialOrder,
	"other":               strategy.KindOther,
}

// decodeSteps parses a JSON array of stepDTO into a host step pipeline.
func decodeSteps(data []byte) ([]strategy.Step, error) {
	var dtos []stepDTO
	if err := json.Unmarshal(data, &dtos); err != nil {
		return nil, fmt.Errorf("decode pipeline: %w", err)
	}
	steps := make([]strategy.Step, len(dtos))
	for i, d := range dtos {
		kind, ok := kindByName[d.Kind]
		if !ok {
			return nil, fmt.Errorf("decode pipeline: unknown step kind %q at index %d", d.Kind, i)
		}
		step := strategy.Step{
			Kind:      kind,
			GraphID:   d.GraphID,
			NavLabels: d.NavLabels,
			Labels:    d.Labels,
		}
		if d.Source == "edge" {
			step.Source = strategy.SourceEdge
		}
		for _, c := range d.Containers {
			step.Containers = append(step.Containers, predicate.HasContainer{
				Key: c.Key, Op: predicate.Operator(c.Op), Value: c.Value,
			})
		}
		steps[i] = step
	}
	return steps, nil
}

// readSteps loads and decodes a pipeline file, or stdin when path is "-".
func readSteps(path string) ([]strategy.Step, error) {
	data, err := readFileOrStdin(path)
	if err != nil {
		return nil, err
	}
	return decodeSteps(data)
}

func readFileOrStdin(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// catalogDTO is the on-disk JSON shape of a topology.MemCatalog fixture.
type catalogDTO struct {
	Vertices []vertexDTO `json:"vertices"`
	Edges    []edgeDTO   `json:"edges"`
}

type vertexDTO struct {
	Label      string `json:"label"`
	Schema     string `json:"schema"`
	Table      string `json:"table"`
	PrimaryKey string `json:"primaryKey"`
}

type edgeDTO struct {
	Label      string `json:"label"`
	From       string `json:"from"`
	To         string `json:"to"`
	Schema     string `json:"schema"`
	Table      string `json:"table"`
	ForeignKey string `json:"foreignKey,omitempty"`
	Opposite   string `json:"oppositeForeignKey,omitempty"`
}

// loadCatalog builds an in-memory topology.Catalog from a JSON fixture file.
// Production deployments back Catalog with a real topology service; this
// loader exists for gremlinsqlctl's offline `compile` inspection and tests.
func loadCatalog(path string) (topology.Catalog, error) {
	if path == "" {
		return topology.NewMemCatalog(), nil
	}
	data, err := readFileOrStdin(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var dto catalogDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	cat := topology.NewMemCatalog()
	for _, v := range dto.Vertices {
		cat.AddVertexTable(v.Label, topology.SchemaTable{
			Schema: v.Schema, Table: v.Table, PrimaryKey: v.PrimaryKey,
		})
	}
	for _, e := range dto.Edges {
		cat.AddEdgeTable(e.Label, e.From, e.To, topology.SchemaTable{
			Schema: e.Schema, Table: e.Table,
			ForeignKey: e.ForeignKey, OppositeForeignKey: e.Opposite,
		})
	}
	return cat, nil
}
