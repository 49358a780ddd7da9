package typesystem

import (
	"reflect"
	"testing"
)

func TestFreeParameters(t *testing.T) {
	tests := []struct {
		name string
		obj  Object
		want map[string]bool
	}{
		{"closed", idx(1), map[string]bool{}},
		{"param", &ParameterObj{Name: "x"}, map[string]bool{"x": true}},
		{
			name: "lambda binds its params",
			obj: &LambdaInstance{
				Params: []Param{{Name: "x", Type: &ParameterObj{Name: "T"}}},
				Body:   &ApplyFunction{Func: &ParameterObj{Name: "f"}, Input: &ParameterObj{Name: "x"}},
			},
			want: map[string]bool{"T": true, "f": true},
		},
		{
			name: "later param type sees earlier param",
			obj: &LambdaInstance{
				Params: []Param{
					{Name: "T", Type: &TypeType{}},
					{Name: "t", Type: &ParameterObj{Name: "T"}},
				},
				Body: &ParameterObj{Name: "t"},
			},
			want: map[string]bool{},
		},
		{
			name: "param free again after lambda",
			obj: &StructInstance{Fields: []NamedObject{
				{Name: "a", Value: &LambdaInstance{Params: []Param{{Name: "x", Type: idx(1)}}, Body: &ParameterObj{Name: "x"}}},
				{Name: "b", Value: &ParameterObj{Name: "x"}},
			}},
			want: map[string]bool{"x": true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FreeParameters(tt.obj); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FreeParameters(%s) = %v, want %v", tt.obj.Inspect(), got, tt.want)
			}
		})
	}
	if HasFreeParameters(idx(0)) {
		t.Error("an index has no free parameters")
	}
}
