package render

import (
	"strings"
	"testing"
)

func TestConvertMissingTool(t *testing.T) {
	old := Converter
	Converter = "conceptgraph-no-such-converter"
	t.Cleanup(func() { Converter = old })

	_, err := ToPDF([]byte("<svg/>"))
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("ToPDF with missing tool = %v, want not found error", err)
	}
	if _, err := ToPNG([]byte("<svg/>"), 2); err == nil {
		t.Error("ToPNG with missing tool should fail")
	}
}
