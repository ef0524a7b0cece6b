package codec

import (
	"encoding/json"
	"fmt"
)

// JSONName selects the JSON codec.
const JSONName = "json"

// JSON writes compact JSON artifacts.
type JSON struct{}

func (JSON) Name() string { return JSONName }

func (JSON) Encode(a Artifact) ([]byte, error) {
	if a.Socials == nil {
		a.Socials = []Social{}
	}
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encode json artifact: %w", err)
	}
	return data, nil
}

func (JSON) Decode(data []byte) (Artifact, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return Artifact{}, fmt.Errorf("decode json artifact: %w", err)
	}
	return a, nil
}
