package document

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/atlas/pkg/errors"
	"github.com/matzehuels/atlas/pkg/mapgraph"
)

// wireMap is one serialized map node. The map id lives in the enclosing
// object key, not in the node itself.
type wireMap struct {
	ImageURL string             `json:"imageUrl"`
	Hotspots []mapgraph.Hotspot `json:"hotspots"`
}

// rawMap mirrors wireMap on the import side with looser hotspot parsing:
// rawHotspot keeps presence information so normalization can tell a missing
// coordinate from zero.
type rawMap struct {
	ImageURL string       `json:"imageUrl"`
	Hotspots []rawHotspot `json:"hotspots"`
}

type rawHotspot struct {
	ID     *string  `json:"id"`
	X      *float64 `json:"x"`
	Y      *float64 `json:"y"`
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
	Title  string   `json:"title"`

	LinkType    string `json:"linkType"`
	LinkToMapID string `json:"linkToMapId"`
	LinkedURL   string `json:"linkedUrl"`
	URLTarget   string `json:"urlTarget"`
}

// Unmarshal parses and normalizes a serialized document. Unnormalizable
// hotspots are dropped and reported in the returned warnings; a top level
// that is not a non-empty keyed mapping is an INVALID_DOCUMENT error.
func Unmarshal(data []byte) (*mapgraph.Graph, []mapgraph.Warning, error) {
	var raw map[string]rawMap
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidDocument, err,
			"document is not a keyed mapping of maps")
	}
	return normalize(raw)
}

// Decode reads and normalizes a document from r. See [Unmarshal].
func Decode(r io.Reader) (*mapgraph.Graph, []mapgraph.Warning, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read document: %w", err)
	}
	return Unmarshal(data)
}

// Marshal serializes a graph to the document format with two-space
// indentation. Output is deterministic: map ids sort lexicographically and
// hotspot order is preserved.
func Marshal(g *mapgraph.Graph) ([]byte, error) {
	out := make(map[string]wireMap, g.Len())
	for _, n := range g.Nodes() {
		hotspots := n.Hotspots
		if hotspots == nil {
			hotspots = []mapgraph.Hotspot{}
		}
		out[n.ID] = wireMap{ImageURL: n.ImageURL, Hotspots: hotspots}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// Encode writes the serialized graph to w, ending with a newline.
func Encode(g *mapgraph.Graph, w io.Writer) error {
	data, err := Marshal(g)
	if err != nil {
		return err
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

// Load reads and normalizes the document file at path.
func Load(path string) (*mapgraph.Graph, []mapgraph.Warning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	g, warns, err := Unmarshal(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, warns, nil
}

// Save writes the serialized graph to a file at path.
func Save(g *mapgraph.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Encode(g, f)
}
