package translate

import (
	"strings"
	"testing"
)

func TestExtractResults(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCount int
		wantErr   bool
	}{
		{
			name: "plain valid array",
			input: `[
				{"index": 0, "text": "こんにちは"},
				{"index": 1, "text": "さようなら"}
			]`,
			wantCount: 2,
		},
		{
			name: "preamble with valid array",
			input: `Here is the translation:
			[
				{"index": 0, "text": "Bonjour"},
				{"index": 1, "text": "Au revoir"}
			]`,
			wantCount: 2,
		},
		{
			name: "valid array with trailing text",
			input: `[
				{"index": 0, "text": "Hola"}
			]
			I hope this helps!`,
			wantCount: 1,
		},
		{
			name:      "code fenced JSON",
			input:     `[{"index": 0, "text": "翻訳されたテキスト"}]`,
			wantCount: 1,
		},
		{
			name: "wrapper object with results key",
			input: `{"results": [
				{"index": 0, "text": "Translated"}
			]}`,
			wantCount: 1,
		},
		{
			name: "wrapper object with translations key",
			input: `{"translations": [
				{"index": 0, "text": "Übersetzt"}
			]}`,
			wantCount: 1,
		},
		{
			name: "wrapper object with data key",
			input: `{"data": [
				{"index": 0, "text": "Переведено"}
			]}`,
			wantCount: 1,
		},
		{
			name:    "empty array",
			input:   `[]`,
			wantErr: true,
		},
		{
			name:    "no JSON at all",
			input:   `This is just plain text.`,
			wantErr: true,
		},
		{
			name:    "invalid JSON",
			input:   `[{"index": 0, "text": "incomplete"`,
			wantErr: true,
		},
		{
			name:    "array with empty text",
			input:   `[{"index": 0, "text": ""}]`,
			wantErr: true,
		},
		{
			name: "complex preamble",
			input: `I've translated the chapter titles for you. Here is the JSON:

			[
				{"index": 0, "text": "First translation"},
				{"index": 1, "text": "Second translation"}
			]

			Let me know if you need anything else!`,
			wantCount: 2,
		},
		{
			name: "stray backslash escape in text",
			input: `[
				{"index": 0, "text": "Part One\NThe Arrival"}
			]`,
			wantCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := extractResults(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(results) != tt.wantCount {
				t.Errorf("got %d results, want %d", len(results), tt.wantCount)
			}
		})
	}
}

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain JSON",
			input: `[{"index": 0, "text": "hello"}]`,
			want:  `[{"index": 0, "text": "hello"}]`,
		},
		{
			name:  "json code fence",
			input: "```json\n[{\"index\": 0, \"text\": \"hello\"}]\n```",
			want:  `[{"index": 0, "text": "hello"}]`,
		},
		{
			name:  "plain code fence",
			input: "```\n[{\"index\": 0, \"text\": \"hello\"}]\n```",
			want:  `[{"index": 0, "text": "hello"}]`,
		},
		{
			name:  "with leading/trailing whitespace",
			input: "  \n\n```json\n[{\"index\": 0}]\n```\n\n  ",
			want:  `[{"index": 0}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanJSONResponse(tt.input); got != tt.want {
				t.Errorf("cleanJSONResponse() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateResults(t *testing.T) {
	tests := []struct {
		name    string
		results []Result
		want    bool
	}{
		{"empty slice", []Result{}, false},
		{"nil slice", nil, false},
		{
			"result with text",
			[]Result{{Index: 0, Text: "hello"}},
			true,
		},
		{
			"result with empty text",
			[]Result{{Index: 0, Text: ""}},
			false,
		},
		{
			"multiple results one valid",
			[]Result{
				{Index: 0, Text: ""},
				{Index: 1, Text: "valid"},
			},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := validateResults(tt.results); got != tt.want {
				t.Errorf("validateResults() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseResponseText(t *testing.T) {
	items := []Item{{Index: 0, Text: "Intro"}, {Index: 1, Text: "Chapter 1"}}

	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{"fenced array", "```json\n[{\"index\":0,\"text\":\"Intro\"},{\"index\":1,\"text\":\"Kapitel 1\"}]\n```", false},
		{"empty reply", "", true},
		{"missing result", `[{"index":0,"text":"Intro"}]`, true},
		{"unknown index", `[{"index":0,"text":"Intro"},{"index":5,"text":"Kapitel 1"}]`, true},
		{"duplicate index", `[{"index":0,"text":"Intro"},{"index":0,"text":"Kapitel 1"}]`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := parseResponseText(ProviderGemini, tt.text, items)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if results[1].Text != "Kapitel 1" {
				t.Errorf("results[1].Text = %q, want %q", results[1].Text, "Kapitel 1")
			}
		})
	}
}

func TestFixInvalidEscapes(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`a\Nb`, `a\\Nb`},
		{`a\nb`, `a\nb`},
		{`\"quoted\"`, `\"quoted\"`},
		{`trailing\`, `trailing\`},
	}
	for _, tt := range tests {
		if got := fixInvalidEscapes(tt.input); got != tt.want {
			t.Errorf("fixInvalidEscapes(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestBuildPrompt(t *testing.T) {
	opts := Options{
		InputLanguage:  "English",
		TargetLanguage: "Japanese",
	}

	items := []Item{
		{Index: 0, Text: "Opening"},
		{Index: 1, Text: "The Journey"},
	}

	prompt := BuildPrompt(opts, items)

	if !strings.Contains(prompt, "English chapter titles") {
		t.Error("prompt should contain input language")
	}
	if !strings.Contains(prompt, "to Japanese") {
		t.Error("prompt should contain target language")
	}
	if !strings.Contains(prompt, "The Journey") {
		t.Error("prompt should contain input text")
	}
	if !strings.Contains(prompt, `"index": 0`) {
		t.Error("prompt should contain index")
	}
}

func TestBuildPromptWithoutInputLanguage(t *testing.T) {
	opts := Options{TargetLanguage: "Spanish", Prompt: "Use formal register."}

	prompt := BuildPrompt(opts, []Item{{Index: 0, Text: "Hello"}})

	if strings.Contains(prompt, "English") {
		t.Error("prompt should not contain input language when not specified")
	}
	if !strings.Contains(prompt, "to Spanish") {
		t.Error("prompt should contain target language")
	}
	if !strings.Contains(prompt, "Additional instructions: Use formal register.") {
		t.Error("prompt should contain the extra instructions")
	}
}
