package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSpinnerFrames(t *testing.T) {
	tests := []struct {
		i    int
		want string
	}{
		{0, "▸···"},
		{1, "·▸··"},
		{3, "···▸"},
		{4, "··▸·"},
		{5, "·▸··"},
		{6, "▸···"},
	}
	for _, tt := range tests {
		got := spinnerFrame(tt.i)
		if got != tt.want {
			t.Errorf("spinnerFrame(%d) = %q, want %q", tt.i, got, tt.want)
		}
		if n := utf8.RuneCountInString(got); n != spinnerTrack {
			t.Errorf("spinnerFrame(%d) has %d runes", tt.i, n)
		}
	}
}

func TestSpinnerShowsStages(t *testing.T) {
	var buf bytes.Buffer
	s := startSpinner(context.Background(), &buf, "Loading tour")
	s.Stage("Rendering SVG")
	s.Stop()

	out := buf.String()
	for _, want := range []string{"Loading tour", "Rendering SVG"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
	if !strings.HasSuffix(out, "\r") {
		t.Error("Stop should leave the cursor at the start of a cleared line")
	}
	if s.Cancelled() {
		t.Error("a stopped spinner is not cancelled")
	}
}

func TestSpinnerCancelledByContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var buf bytes.Buffer
	s := startSpinner(ctx, &buf, "Rendering PNG")
	cancel()
	s.Stop()

	if !s.Cancelled() {
		t.Error("spinner should report cancellation of its context")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	s := startSpinner(context.Background(), &buf, "Loading tour")
	s.Stop()
	s.Stop()
}
