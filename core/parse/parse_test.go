package parse

import "testing"

type extraction struct {
	Text   string   `json:"text"`
	Topics []string `json:"topics"`
}

func TestParseStringAs_CleanJSON(t *testing.T) {
	out, err := ParseStringAs[extraction](`{"text":"likes go","topics":["programming"]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Text != "likes go" {
		t.Errorf("unexpected text: %q", out.Text)
	}
	if len(out.Topics) != 1 || out.Topics[0] != "programming" {
		t.Errorf("unexpected topics: %v", out.Topics)
	}
}

func TestParseStringAs_CodeFence(t *testing.T) {
	content := "Sure, here is the extraction:\n```json\n{\"text\":\"prefers dark mode\",\"topics\":[\"preferences\"]}\n```\nLet me know if you need anything else."
	out, err := ParseStringAs[extraction](content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Text != "prefers dark mode" {
		t.Errorf("unexpected text: %q", out.Text)
	}
}

func TestParseStringAs_RepairsAlmostJSON(t *testing.T) {
	out, err := ParseStringAs[extraction](`{text: 'broken quotes', topics: ['fix'],}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Text != "broken quotes" {
		t.Errorf("unexpected text: %q", out.Text)
	}
}

func TestParseStringAs_Garbage(t *testing.T) {
	_, err := ParseStringAs[extraction]("no structured data here at all")
	if err == nil {
		t.Fatal("expected error for non-JSON content")
	}
}

func TestExtractFirstJSONObject(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"prose around", `the result is {"a":1} done`, `{"a":1}`},
		{"nested braces", `{"a":{"b":2}}`, `{"a":{"b":2}}`},
		{"brace in string", `{"a":"}{"}`, `{"a":"}{"}`},
		{"escaped quote", `{"a":"say \"hi\""}`, `{"a":"say \"hi\""}`},
		{"no object", "plain text", ""},
		{"unbalanced", `{"a":1`, ""},
		{"first of two", `{"a":1} {"b":2}`, `{"a":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractFirstJSONObject(tc.in); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}
