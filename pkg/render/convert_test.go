package render

import "testing"

func TestValidFormat(t *testing.T) {
	for _, f := range Formats {
		if !ValidFormat(f) {
			t.Errorf("ValidFormat(%q) = false", f)
		}
	}
	if ValidFormat("gif") {
		t.Error("ValidFormat(gif) = true")
	}
}

func TestContentType(t *testing.T) {
	tests := map[string]string{
		FormatSVG:  "image/svg+xml",
		FormatPDF:  "application/pdf",
		FormatPNG:  "image/png",
		FormatJSON: "application/json",
		FormatDOT:  "text/plain; charset=utf-8",
	}
	for format, want := range tests {
		if got := ContentType(format); got != want {
			t.Errorf("ContentType(%q) = %q, want %q", format, got, want)
		}
	}
}
