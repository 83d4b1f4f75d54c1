package qa

import (
	"context"
	"testing"
)

func TestLexicalExtractor_PicksBestSentence(t *testing.T) {
	e := NewLexicalExtractor()
	passage := "The warehouse opened in 1997. The sky is blue today. Shipping takes four days."

	span, err := e.ExtractSpan(context.Background(), "what color is the sky?", passage)
	if err != nil {
		t.Fatalf("ExtractSpan failed: %v", err)
	}
	if span.Text != "The sky is blue today" {
		t.Errorf("span text = %q, want the sky sentence", span.Text)
	}

	t.Run("offsets point into the passage", func(t *testing.T) {
		if got := passage[span.Start:span.End]; got != span.Text {
			t.Errorf("span (%d,%d) resolves to %q, want %q", span.Start, span.End, got, span.Text)
		}
	})

	t.Run("confidence is in range", func(t *testing.T) {
		if span.Confidence <= 0 || span.Confidence > 1 {
			t.Errorf("confidence = %v, want in (0, 1]", span.Confidence)
		}
	})
}

func TestLexicalExtractor_NoOverlap(t *testing.T) {
	e := NewLexicalExtractor()

	span, err := e.ExtractSpan(context.Background(), "quantum entanglement", "Cats sleep a lot. Dogs bark.")
	if err != nil {
		t.Fatalf("ExtractSpan failed: %v", err)
	}
	if span.Text != "" || span.Confidence != 0 {
		t.Errorf("span = %+v, want empty span with zero confidence", span)
	}
}

func TestLexicalExtractor_TieGoesToEarliestSentence(t *testing.T) {
	e := NewLexicalExtractor()
	// Both sentences overlap the question identically.
	passage := "Blue sky here. Blue sky there."

	span, err := e.ExtractSpan(context.Background(), "blue sky", passage)
	if err != nil {
		t.Fatalf("ExtractSpan failed: %v", err)
	}
	if span.Start != 0 {
		t.Errorf("span start = %d, want the first sentence", span.Start)
	}
}

func TestLexicalExtractor_Deterministic(t *testing.T) {
	e := NewLexicalExtractor()
	passage := "Alpha beta gamma. Delta epsilon zeta. Eta theta iota."

	first, err := e.ExtractSpan(context.Background(), "delta epsilon", passage)
	if err != nil {
		t.Fatalf("ExtractSpan failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := e.ExtractSpan(context.Background(), "delta epsilon", passage)
		if err != nil {
			t.Fatalf("ExtractSpan failed: %v", err)
		}
		if again != first {
			t.Fatalf("run %d returned %+v, first run returned %+v", i, again, first)
		}
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "periods",
			text: "One. Two. Three.",
			want: []string{"One", "Two", "Three"},
		},
		{
			name: "mixed terminators",
			text: "Really? Yes! Fine.",
			want: []string{"Really", "Yes", "Fine"},
		},
		{
			name: "terminator runs collapse",
			text: "Wait... what?!",
			want: []string{"Wait", "what"},
		},
		{
			name: "newlines split",
			text: "line one\nline two",
			want: []string{"line one", "line two"},
		},
		{
			name: "trailing text without terminator",
			text: "First. second half",
			want: []string{"First", "second half"},
		},
		{
			name: "empty",
			text: "",
			want: nil,
		},
		{
			name: "whitespace only",
			text: "  \n  ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bounds := splitSentences(tt.text)
			if len(bounds) != len(tt.want) {
				t.Fatalf("got %d sentences, want %d: %+v", len(bounds), len(tt.want), bounds)
			}
			for i, w := range tt.want {
				if got := tt.text[bounds[i].start:bounds[i].end]; got != w {
					t.Errorf("sentence %d = %q, want %q", i, got, w)
				}
			}
		})
	}
}

func TestOchiai(t *testing.T) {
	tests := []struct {
		name     string
		question string
		sentence string
		want     float64
	}{
		{name: "identical", question: "blue sky", sentence: "blue sky", want: 1},
		{name: "disjoint", question: "blue sky", sentence: "green grass", want: 0},
		{name: "empty question", question: "", sentence: "blue sky", want: 0},
		{name: "empty sentence", question: "blue sky", sentence: "", want: 0},
		{name: "case insensitive", question: "BLUE SKY", sentence: "blue sky", want: 1},
		{name: "repeats count once", question: "blue", sentence: "blue blue blue", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ochiai(tokenSet(tt.question), tt.sentence)
			if got != tt.want {
				t.Errorf("ochiai(%q, %q) = %v, want %v", tt.question, tt.sentence, got, tt.want)
			}
		})
	}
}
