// Package output renders command results for the macsvc CLI.
package output

import (
	"encoding/json"
	"io"
)

// JSONTo writes any data structure as formatted JSON to the specified writer.
func JSONTo(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
