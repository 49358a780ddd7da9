package codec

import (
	"fmt"

	"github.com/maxsklar/newmap.ai.nyu/internal/typesystem"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// MarshalProto encodes obj as a serialized google.protobuf.Value.
func MarshalProto(obj typesystem.Object) ([]byte, error) {
	return EncodeProto(ToNode(obj))
}

// UnmarshalProto decodes an object written by MarshalProto.
func UnmarshalProto(data []byte) (typesystem.Object, error) {
	node, err := DecodeProto(data)
	if err != nil {
		return nil, err
	}
	return FromNode(node)
}

// maxExactInt is the largest magnitude a double holds without rounding.
const maxExactInt = 1 << 53

// EncodeProto serializes a node tree. Numbers become doubles, so an integer
// beyond 2^53 in magnitude is rejected rather than rounded.
func EncodeProto(node interface{}) ([]byte, error) {
	if err := checkExact(node); err != nil {
		return nil, fmt.Errorf("protobuf encoding error: %w", err)
	}
	value, err := structpb.NewValue(node)
	if err != nil {
		return nil, fmt.Errorf("protobuf encoding error: %v", err)
	}
	data, err := proto.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("protobuf encoding error: %v", err)
	}
	return data, nil
}

// DecodeProto parses bytes written by EncodeProto.
func DecodeProto(data []byte) (interface{}, error) {
	var value structpb.Value
	if err := proto.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("protobuf parse error: %v", err)
	}
	return value.AsInterface(), nil
}

func checkExact(node interface{}) error {
	switch v := node.(type) {
	case int:
		return checkExactInt(int64(v))
	case int64:
		return checkExactInt(v)
	case uint64:
		if v > maxExactInt {
			return fmt.Errorf("integer %d cannot be stored exactly", v)
		}
	case map[string]interface{}:
		for _, child := range v {
			if err := checkExact(child); err != nil {
				return err
			}
		}
	case []interface{}:
		for _, child := range v {
			if err := checkExact(child); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkExactInt(n int64) error {
	if n > maxExactInt || n < -maxExactInt {
		return fmt.Errorf("integer %d cannot be stored exactly", n)
	}
	return nil
}
