// Package paygraph builds simulation-ready payment graphs from raw
// organization–contractor spending data.
//
// The package is the data model underneath the force-directed network view:
// it decodes the wire payload served by the spending API, validates
// referential integrity (edges whose endpoints are missing are dropped, not
// errors), and derives the scale factors used to size nodes and edges.
//
// # Payload Format
//
// The wire format mirrors the /api/network endpoint:
//
//	{
//	  "nodes": [{"id": "Ministry of Health", "type": "org", "total": 1200000}],
//	  "edges": [{"source": "Ministry of Health", "target": "MedSupply SA",
//	             "amount": 450000, "contracts": 12}],
//	  "stats": {"org_count": 1, "contractor_count": 1, "edge_count": 1}
//	}
//
// # Usage
//
//	payload, err := paygraph.DecodePayload(resp.Body)
//	if err != nil {
//	    return err
//	}
//	g := paygraph.Build(payload.Nodes, payload.Edges)
//	r := g.NodeRadius(g.Nodes[0])
package paygraph

import (
	"encoding/json"
	"fmt"
	"io"
)

// Kind distinguishes the two sides of the payment graph.
type Kind string

// Node kinds. Organizations pay, contractors receive.
const (
	KindOrg        Kind = "org"
	KindContractor Kind = "contractor"
)

// PayloadNode is a raw node record as served by the spending API.
type PayloadNode struct {
	ID    string  `json:"id"`
	Type  Kind    `json:"type"`
	Total float64 `json:"total"`
}

// PayloadEdge is a raw payment relationship between an organization and a
// contractor. Source and Target reference PayloadNode IDs.
type PayloadEdge struct {
	Source    string  `json:"source"`
	Target    string  `json:"target"`
	Amount    float64 `json:"amount"`
	Contracts int     `json:"contracts"`
}

// Stats summarizes a network payload.
type Stats struct {
	OrgCount        int `json:"org_count" bson:"org_count"`
	ContractorCount int `json:"contractor_count" bson:"contractor_count"`
	EdgeCount       int `json:"edge_count" bson:"edge_count"`
}

// Payload is the complete network response consumed by the graph view.
type Payload struct {
	Nodes []PayloadNode `json:"nodes"`
	Edges []PayloadEdge `json:"edges"`
	Stats Stats         `json:"stats"`
}

// DecodePayload reads a JSON network payload from r.
func DecodePayload(r io.Reader) (Payload, error) {
	var p Payload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return Payload{}, fmt.Errorf("decode payload: %w", err)
	}
	return p, nil
}

// UnmarshalPayload decodes a JSON network payload from bytes.
func UnmarshalPayload(data []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, fmt.Errorf("decode payload: %w", err)
	}
	return p, nil
}
