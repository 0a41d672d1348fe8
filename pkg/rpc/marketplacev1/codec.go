// Package marketplacev1 holds the wire contract of the marketplace.v1
// AuctionService: message types, a JSON codec and the connect handler and
// client constructors.
package marketplacev1

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CodecName replaces connect's built-in protojson codec so plain Go structs
// can travel as application/json.
const CodecName = "json"

// Codec is a connect.Codec backed by encoding/json.
type Codec struct{}

func (Codec) Name() string { return CodecName }

func (Codec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (Codec) Unmarshal(data []byte, msg any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(msg); err != nil {
		return fmt.Errorf("decode %T: %w", msg, err)
	}
	return nil
}
