// Package api defines the request and response messages of the Hisab Connect
// services. Messages are plain structs encoded as JSON.
package api

import "encoding/json"

// Codec is the Connect codec for the messages in this package. It registers
// under the name "json", so requests use the application/json content type.
type Codec struct{}

func (Codec) Name() string { return "json" }

func (Codec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}
