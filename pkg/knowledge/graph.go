package knowledge

import (
	"encoding/json"
)

// NodeType is the category tag on a graph node.
type NodeType string

const (
	NodeProduct   NodeType = "Product"
	NodeComponent NodeType = "Component"
	NodeInsight   NodeType = "Insight"
	NodeSource    NodeType = "Source"
)

// Relation is the category tag on a graph link. Unrecognized values are
// passed through untouched.
type Relation string

const (
	RelationHasComponent  Relation = "HAS_COMPONENT"
	RelationYields        Relation = "YIELDS"
	RelationAbout         Relation = "ABOUT"
	RelationSemanticMatch Relation = "SEMANTIC_MATCH"
)

// SourceType is the origin channel of a piece of ingested feedback.
type SourceType string

const (
	SourceWebsite           SourceType = "Website"
	SourceReddit            SourceType = "Reddit"
	SourceReview            SourceType = "Review"
	SourceEmployeeInterview SourceType = "Employee_Interview"
)

// ComponentCategory classifies a physical sub-system of a product.
type ComponentCategory string

const (
	CategoryMechanical ComponentCategory = "Mechanical"
	CategoryElectrical ComponentCategory = "Electrical"
	CategoryFirmware   ComponentCategory = "Firmware"
	CategoryPackaging  ComponentCategory = "Packaging"
	CategoryUnknown    ComponentCategory = "Unknown"
)

// Node is a single node of the raw node-link payload. The wire format carries
// a handful of well-known attributes plus arbitrary extras; the extras are
// preserved opaquely in Attrs so a normalize/export round trip is lossless.
//
// Sentiment is a pointer because it is only present on Insight nodes that
// have been scored. A missing score and a score of 0 are different things.
type Node struct {
	ID        string
	Name      string
	Type      NodeType
	Sentiment *float64
	Summary   string
	Source    SourceType
	Embedding []float32
	Attrs     map[string]json.RawMessage
}

var knownNodeKeys = map[string]struct{}{
	"id":        {},
	"name":      {},
	"node_type": {},
	"sentiment": {},
	"summary":   {},
	"type":      {},
	"embedding": {},
}

// UnmarshalJSON decodes a node, pulling out the well-known attributes and
// stashing everything else in Attrs untouched.
func (n *Node) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if v, ok := raw["id"]; ok {
		_ = json.Unmarshal(v, &n.ID)
	}
	if v, ok := raw["name"]; ok {
		_ = json.Unmarshal(v, &n.Name)
	}
	if v, ok := raw["node_type"]; ok {
		_ = json.Unmarshal(v, &n.Type)
	}
	if v, ok := raw["sentiment"]; ok && string(v) != "null" {
		var f float64
		if err := json.Unmarshal(v, &f); err == nil {
			n.Sentiment = &f
		}
	}
	if v, ok := raw["summary"]; ok {
		_ = json.Unmarshal(v, &n.Summary)
	}
	if v, ok := raw["type"]; ok {
		_ = json.Unmarshal(v, &n.Source)
	}
	if v, ok := raw["embedding"]; ok && string(v) != "null" {
		_ = json.Unmarshal(v, &n.Embedding)
	}

	for key, v := range raw {
		if _, known := knownNodeKeys[key]; known {
			continue
		}
		if n.Attrs == nil {
			n.Attrs = map[string]json.RawMessage{}
		}
		n.Attrs[key] = v
	}

	return nil
}

// MarshalJSON re-assembles the wire shape, merging the preserved extras back
// alongside the well-known attributes.
func (n Node) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"id": n.ID,
	}
	if n.Name != "" {
		out["name"] = n.Name
	}
	if n.Type != "" {
		out["node_type"] = n.Type
	}
	if n.Sentiment != nil {
		out["sentiment"] = *n.Sentiment
	}
	if n.Summary != "" {
		out["summary"] = n.Summary
	}
	if n.Source != "" {
		out["type"] = n.Source
	}
	if len(n.Embedding) > 0 {
		out["embedding"] = n.Embedding
	}
	for key, v := range n.Attrs {
		out[key] = v
	}
	return json.Marshal(out)
}

// AttrString returns an opaque string attribute, or "" when the attribute is
// absent or not a string.
func (n *Node) AttrString(key string) string {
	v, ok := n.Attrs[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return ""
	}
	return s
}

// SetAttr stores an opaque attribute on the node.
func (n *Node) SetAttr(key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if n.Attrs == nil {
		n.Attrs = map[string]json.RawMessage{}
	}
	n.Attrs[key] = raw
}

// Endpoint is a link endpoint. Raw payloads denormalize endpoints
// inconsistently: sometimes a bare id string, sometimes a full embedded node
// object carrying an "id" field. Decoding always reduces to the id; an
// endpoint that carries neither shape decodes to the empty id rather than
// failing.
type Endpoint struct {
	ID string
}

// EndpointID wraps a bare id for payload construction.
func EndpointID(id string) Endpoint {
	return Endpoint{ID: id}
}

func (e *Endpoint) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '"':
		_ = json.Unmarshal(data, &e.ID)
	case '{':
		var obj struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(data, &obj)
		e.ID = obj.ID
	default:
		// Scalar ids occasionally arrive unquoted (e.g. numeric ids).
		s := string(data)
		if s != "null" {
			e.ID = s
		}
	}
	return nil
}

func (e Endpoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.ID)
}

// Link is a directed edge of the raw node-link payload.
type Link struct {
	Source   Endpoint `json:"source"`
	Target   Endpoint `json:"target"`
	Relation Relation `json:"relation,omitempty"`
	Weight   float64  `json:"weight,omitempty"`
}

// Key is the canonical identity of a link: the ordered source->target pair.
func (l Link) Key() string {
	return l.Source.ID + "->" + l.Target.ID
}

// Payload is the node-link graph as served and consumed over the wire.
type Payload struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}
