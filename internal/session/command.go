package session

import (
	"fmt"

	"github.com/maxsklar/newmap.ai.nyu/internal/codec"
	"github.com/maxsklar/newmap.ai.nyu/internal/typesystem"
)

// Command is one top-level statement of a session.
type Command interface {
	String() string
	isCommand()
}

// Let binds Name to Value, declared as Type.
type Let struct {
	Name  string
	Type  typesystem.Object
	Value typesystem.Object
}

// Expr evaluates Value without binding it.
type Expr struct {
	Value typesystem.Object
}

func (*Let) isCommand()  {}
func (*Expr) isCommand() {}

func (c *Let) String() string {
	return fmt.Sprintf("let %s: %s = %s", c.Name, inspect(c.Type), inspect(c.Value))
}

func (c *Expr) String() string { return inspect(c.Value) }

func inspect(o typesystem.Object) string {
	if o == nil {
		return "<nil>"
	}
	return o.Inspect()
}

// CommandToNode returns the node form: {let, type, value} or {expr}.
func CommandToNode(cmd Command) interface{} {
	switch c := cmd.(type) {
	case *Let:
		return map[string]interface{}{
			"let":   c.Name,
			"type":  codec.ToNode(c.Type),
			"value": codec.ToNode(c.Value),
		}
	case *Expr:
		return map[string]interface{}{"expr": codec.ToNode(c.Value)}
	}
	return nil
}

// CommandFromNode decodes one command. A node that is neither form is read
// as a bare expression.
func CommandFromNode(node interface{}) (Command, error) {
	m, ok := node.(map[string]interface{})
	if !ok {
		value, err := codec.FromNode(node)
		if err != nil {
			return nil, err
		}
		return &Expr{Value: value}, nil
	}

	if raw, ok := m["let"]; ok {
		name, ok := raw.(string)
		if !ok || name == "" {
			return nil, fmt.Errorf("let: expected a name, got %v", raw)
		}
		if _, ok := m["type"]; !ok {
			return nil, fmt.Errorf("let %s: missing type", name)
		}
		t, err := codec.FromNode(m["type"])
		if err != nil {
			return nil, fmt.Errorf("let %s: type: %w", name, err)
		}
		v, err := codec.FromNode(m["value"])
		if err != nil {
			return nil, fmt.Errorf("let %s: value: %w", name, err)
		}
		return &Let{Name: name, Type: t, Value: v}, nil
	}

	if raw, ok := m["expr"]; ok {
		v, err := codec.FromNode(raw)
		if err != nil {
			return nil, fmt.Errorf("expr: %w", err)
		}
		return &Expr{Value: v}, nil
	}

	value, err := codec.FromNode(m)
	if err != nil {
		return nil, err
	}
	return &Expr{Value: value}, nil
}

// MarshalCommand encodes cmd for the command log.
func MarshalCommand(cmd Command) ([]byte, error) {
	return codec.EncodeProto(CommandToNode(cmd))
}

// UnmarshalCommand decodes a command written by MarshalCommand.
func UnmarshalCommand(data []byte) (Command, error) {
	node, err := codec.DecodeProto(data)
	if err != nil {
		return nil, err
	}
	return CommandFromNode(node)
}
