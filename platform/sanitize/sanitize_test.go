package sanitize

import "testing"

func TestText(t *testing.T) {
	cases := map[string]string{
		"  Hotel   <b>Libertador</b>  ": "Hotel Libertador",
		"City tour\n\tLima":             "City tour Lima",
		"&lt;script&gt;x":               "x",
		"":                              "",
	}
	for in, want := range cases {
		if got := Text(in); got != want {
			t.Fatalf("Text(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTextPtrBlankBecomesNil(t *testing.T) {
	blank := "  <p></p> "
	if got := TextPtr(&blank); got != nil {
		t.Fatalf("expected nil, got %q", *got)
	}
	if TextPtr(nil) != nil {
		t.Fatal("expected nil for nil input")
	}
}
