package morph

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// CastJSON decodes a JSON object and casts it into a *T. This is the common
// front door for request bodies: decode to a map, then drive the schema cast.
func CastJSON[T any](data []byte, opts ...Option) (*T, error) {
	var params map[string]any
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("morph: decode json: %w", err)
	}
	return Cast[T](params, opts...)
}

// CastMsgpack decodes a MessagePack map and casts it into a *T. Loose
// interface decoding keeps the intermediate map in the same shape a JSON
// decode produces.
func CastMsgpack[T any](data []byte, opts ...Option) (*T, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.UseLooseInterfaceDecoding(true)
	var params map[string]any
	if err := dec.Decode(&params); err != nil {
		return nil, fmt.Errorf("morph: decode msgpack: %w", err)
	}
	return Cast[T](params, opts...)
}
