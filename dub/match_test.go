package dub

import (
	"reflect"
	"testing"
)

func TestSelector(t *testing.T) {
	tests := []struct {
		input string
		n     int
		want  []int
	}{
		{"'*", 4, []int{1, 2, 3, 4}},
		{"'3", 8, []int{3}},
		{"'1:3,7", 8, []int{1, 2, 3, 7}},
		{"'7,1:2", 8, []int{1, 2, 7}},
		{"'6:20", 8, []int{6, 7, 8}},
		{"'9", 8, nil},
	}
	for _, test := range tests {
		cmd, err := Parse("pad " + test.input)
		if err != nil {
			t.Fatal(err)
		}
		sel, ok := cmd.Args[0].(Selector)
		if !ok {
			t.Fatalf("%s: expected a selector, got %T", test.input, cmd.Args[0])
		}
		if got := sel.Select(test.n); !reflect.DeepEqual(test.want, got) {
			t.Errorf("%s: want %v, got %v", test.input, test.want, got)
		}
	}
}
