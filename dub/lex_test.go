package dub

import "testing"

func TestLexer(t *testing.T) {
	type test struct {
		input  string
		expect []token
	}
	tests := []test{
		{
			input: "pad '* 2",
			expect: []token{
				{typ: typeIdentifier, text: "pad"},
				{typ: typeQuote, text: "'"},
				{typ: typeAsterisk, text: "*"},
				{typ: typeInt, text: "2"},
				{typ: typeEOF},
			},
		},
		{
			input: "pad 36 100",
			expect: []token{
				{typ: typeIdentifier, text: "pad"},
				{typ: typeInt, text: "36"},
				{typ: typeInt, text: "100"},
				{typ: typeEOF},
			},
		},
		{
			input: "'1:4,  7,9",
			expect: []token{
				{typ: typeQuote, text: "'"},
				{typ: typeInt, text: "1"},
				{typ: typeColon, text: ":"},
				{typ: typeInt, text: "4"},
				{typ: typeComma, text: ","},
				{typ: typeInt, text: "7"},
				{typ: typeComma, text: ","},
				{typ: typeInt, text: "9"},
				{typ: typeEOF},
			},
		},
		{
			input: "knob time_of_day 64;status",
			expect: []token{
				{typ: typeIdentifier, text: "knob"},
				{typ: typeIdentifier, text: "time_of_day"},
				{typ: typeInt, text: "64"},
				{typ: typeSemicolon, text: ";"},
				{typ: typeIdentifier, text: "status"},
				{typ: typeEOF},
			},
		},
		{
			input: "pad seed_3",
			expect: []token{
				{typ: typeIdentifier, text: "pad"},
				{typ: typeIdentifier, text: "seed_3"},
				{typ: typeEOF},
			},
		},
		{
			input: "1.0",
			expect: []token{
				{typ: typeFloat, text: "1.0"},
				{typ: typeEOF},
			},
		},
		{
			input: "-1.",
			expect: []token{
				{typ: typeFloat, text: "-1."},
				{typ: typeEOF},
			},
		},
		{
			input: "-.1",
			expect: []token{
				{typ: typeFloat, text: "-.1"},
				{typ: typeEOF},
			},
		},
		{
			input: `export "out dir/wav" 1`,
			expect: []token{
				{typ: typeIdentifier, text: "export"},
				{typ: typeString, text: `"out dir/wav"`},
				{typ: typeInt, text: "1"},
				{typ: typeEOF},
			},
		},
	}
	for _, test := range tests {
		t.Log(test.input)
		tokens, err := lex(test.input)
		if err != nil {
			t.Errorf("unexpected lex error: %v", err)
			continue
		}
		if len(tokens) != len(test.expect) {
			t.Fatalf("token mismatch: \nwant: %+v, \ngot:  %+v", test.expect, tokens)
		}
		for i, got := range tokens {
			want := test.expect[i]
			if want.typ != got.typ {
				t.Errorf("wrong type: want %v, got %v", want, got)
			}
			if want.text != got.text {
				t.Errorf("wrong text: want %v, got %v", want, got)
			}
		}
	}
}

func TestLexerErrors(t *testing.T) {
	for _, input := range []string{
		"a -",
		"a .-",
		"a.b",
		"12x",
		`reload "missing`,
		"pad #",
	} {
		_, err := lex(input)
		if err == nil {
			t.Errorf("expected error for input: %q", input)
		}
	}
}
