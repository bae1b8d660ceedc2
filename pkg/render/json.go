package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spendwatch/paygraph/pkg/scene"
)

// WriteJSON writes the snapshot as a pretty-printed JSON document. This is
// the data-interchange format for external visualization tools: positions,
// widths, radii, and the current transform, nothing presentational.
func WriteJSON(w io.Writer, snap scene.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// MarshalSnapshot returns the snapshot as JSON bytes.
func MarshalSnapshot(snap scene.Snapshot) ([]byte, error) {
	return json.MarshalIndent(snap, "", "  ")
}
