package codec

import (
	"errors"
	"fmt"
	"io"

	"github.com/maxsklar/newmap.ai.nyu/internal/typesystem"

	"gopkg.in/yaml.v3"
)

// MarshalYAML encodes obj as a YAML document.
func MarshalYAML(obj typesystem.Object) ([]byte, error) {
	return EncodeYAML(ToNode(obj))
}

// UnmarshalYAML decodes one object from a YAML document.
func UnmarshalYAML(data []byte) (typesystem.Object, error) {
	node, err := DecodeYAML(data)
	if err != nil {
		return nil, err
	}
	return FromNode(node)
}

// EncodeYAML writes any node tree as YAML.
func EncodeYAML(node interface{}) ([]byte, error) {
	data, err := yaml.Marshal(node)
	if err != nil {
		return nil, fmt.Errorf("YAML encoding error: %v", err)
	}
	return data, nil
}

// DecodeYAML parses a YAML document into a node tree.
func DecodeYAML(data []byte) (interface{}, error) {
	var node interface{}
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("YAML parse error: %v", err)
	}
	return node, nil
}

// YAMLReader reads a stream of YAML documents, one node tree at a time.
type YAMLReader struct {
	dec *yaml.Decoder
}

func NewYAMLReader(r io.Reader) *YAMLReader {
	return &YAMLReader{dec: yaml.NewDecoder(r)}
}

// Next returns the next document. It returns io.EOF after the last one.
func (r *YAMLReader) Next() (interface{}, error) {
	var node interface{}
	if err := r.dec.Decode(&node); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("YAML parse error: %v", err)
	}
	return node, nil
}
