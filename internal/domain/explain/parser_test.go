package explain

import (
	"reflect"
	"testing"
)

func TestParseDocumentFullReply(t *testing.T) {
	raw := "SUMMARY:\nCats are mammals.\n\nEXPLANATION:\nThey are carnivorous.\nThey are domesticated.\n\nKEY POINTS:\n- Carnivorous\n- Domesticated\n- Popular pets"

	doc := ParseDocument(raw)
	if doc.Summary != "Cats are mammals." {
		t.Fatalf("unexpected summary: %q", doc.Summary)
	}
	if doc.Explanation != "They are carnivorous. They are domesticated." {
		t.Fatalf("unexpected explanation: %q", doc.Explanation)
	}
	expected := []string{"Carnivorous", "Domesticated", "Popular pets"}
	if !reflect.DeepEqual(doc.KeyPoints, expected) {
		t.Fatalf("unexpected key points: %+v", doc.KeyPoints)
	}
}

func TestParseDocumentEmptyInput(t *testing.T) {
	doc := ParseDocument("")
	if doc.Summary != FallbackSummary {
		t.Fatalf("unexpected summary: %q", doc.Summary)
	}
	if doc.Explanation != FallbackExplanation {
		t.Fatalf("unexpected explanation: %q", doc.Explanation)
	}
	if len(doc.KeyPoints) != 1 || doc.KeyPoints[0] != FallbackKeyPoint {
		t.Fatalf("unexpected key points: %+v", doc.KeyPoints)
	}
}

func TestParseDocumentNoLabels(t *testing.T) {
	doc := ParseDocument("just some text\nwithout any structure\n- even a dash line")
	if doc.Summary != FallbackSummary || doc.Explanation != FallbackExplanation {
		t.Fatalf("expected fallbacks, got %+v", doc)
	}
	if len(doc.KeyPoints) != 1 || doc.KeyPoints[0] != FallbackKeyPoint {
		t.Fatalf("unexpected key points: %+v", doc.KeyPoints)
	}
}

func TestParseDocumentReversedLabelOrder(t *testing.T) {
	raw := "KEY POINTS:\n- a\n- b\n\nEXPLANATION:\ndeep dive\n\nSUMMARY:\nshort version"

	doc := ParseDocument(raw)
	if doc.Summary != "short version" {
		t.Fatalf("unexpected summary: %q", doc.Summary)
	}
	if doc.Explanation != "deep dive" {
		t.Fatalf("unexpected explanation: %q", doc.Explanation)
	}
	if !reflect.DeepEqual(doc.KeyPoints, []string{"a", "b"}) {
		t.Fatalf("unexpected key points: %+v", doc.KeyPoints)
	}
}

func TestParseDocumentKeyPointOrdering(t *testing.T) {
	doc := ParseDocument("KEY POINTS:\n- a\n- b\n- c")
	if !reflect.DeepEqual(doc.KeyPoints, []string{"a", "b", "c"}) {
		t.Fatalf("ordering not preserved: %+v", doc.KeyPoints)
	}
}

func TestParseDocumentLabelVariants(t *testing.T) {
	// Labels are matched case-insensitively by prefix; a bare keyword
	// without a colon still transitions.
	doc := ParseDocument("Summary\none\nexplanation -- details\ntwo\nKey Points:\n- p")
	if doc.Summary != "one" {
		t.Fatalf("unexpected summary: %q", doc.Summary)
	}
	if doc.Explanation != "two" {
		t.Fatalf("unexpected explanation: %q", doc.Explanation)
	}
	if !reflect.DeepEqual(doc.KeyPoints, []string{"p"}) {
		t.Fatalf("unexpected key points: %+v", doc.KeyPoints)
	}
}

func TestParseDocumentRepeatedLabelsAppend(t *testing.T) {
	doc := ParseDocument("SUMMARY:\nfirst\nSUMMARY:\nsecond")
	if doc.Summary != "first second" {
		t.Fatalf("unexpected summary: %q", doc.Summary)
	}
}

func TestParseDocumentIgnoresNonDashKeyPointLines(t *testing.T) {
	doc := ParseDocument("KEY POINTS:\nnot a bullet\n- real point\nalso not")
	if !reflect.DeepEqual(doc.KeyPoints, []string{"real point"}) {
		t.Fatalf("unexpected key points: %+v", doc.KeyPoints)
	}
}

func TestParseDocumentDiscardsPreambleAndBlankLines(t *testing.T) {
	raw := "Sure, here is the explanation you asked for:\n\nSUMMARY:\n\nline one\n\nline two\n"
	doc := ParseDocument(raw)
	if doc.Summary != "line one line two" {
		t.Fatalf("unexpected summary: %q", doc.Summary)
	}
}

func TestParseDocumentNormalizesCarriageReturns(t *testing.T) {
	doc := ParseDocument("SUMMARY:\r\nwindows line\r\n")
	if doc.Summary != "windows line" {
		t.Fatalf("unexpected summary: %q", doc.Summary)
	}
}

func TestParseDocumentDashOnlyLine(t *testing.T) {
	// A bare dash yields an empty entry, matching the strip-after-dash rule.
	doc := ParseDocument("KEY POINTS:\n-\n- x")
	if !reflect.DeepEqual(doc.KeyPoints, []string{"", "x"}) {
		t.Fatalf("unexpected key points: %+v", doc.KeyPoints)
	}
}
