package format

import (
	"bytes"
	"strings"
	"testing"
)

type rowList []string

func (r rowList) Text() string { return strings.Join(r, "\n") }

func TestWrite_Formats(t *testing.T) {
	v := map[string]any{"data": map[string]any{"name": "Demo", "count": 2}}

	var js bytes.Buffer
	if err := Write(&js, v, "", false); err != nil {
		t.Fatalf("json: %v", err)
	}
	if got := strings.TrimSpace(js.String()); got != `{"data":{"count":2,"name":"Demo"}}` {
		t.Fatalf("json: %s", got)
	}

	var pretty bytes.Buffer
	if err := Write(&pretty, v, "json", true); err != nil {
		t.Fatalf("pretty: %v", err)
	}
	if !strings.Contains(pretty.String(), "\n  \"data\"") {
		t.Fatalf("pretty json not indented: %s", pretty.String())
	}

	var y bytes.Buffer
	if err := Write(&y, v, "YAML", false); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if !strings.Contains(y.String(), "data:\n  count: 2\n  name: Demo\n") {
		t.Fatalf("yaml: %q", y.String())
	}

	if err := Write(&bytes.Buffer{}, v, "edn", false); err == nil {
		t.Fatalf("expected unknown format error")
	}
}

func TestWriteText_UsesTexterAndUnwrapsData(t *testing.T) {
	var b bytes.Buffer
	if err := Write(&b, map[string]any{"data": rowList{"a", "b"}}, "text", false); err != nil {
		t.Fatalf("text: %v", err)
	}
	if b.String() != "a\nb\n" {
		t.Fatalf("text: %q", b.String())
	}

	b.Reset()
	if err := Write(&b, map[string]any{"data": []string{"x"}}, "text", false); err != nil {
		t.Fatalf("text fallback: %v", err)
	}
	if b.String() != "- x\n" {
		t.Fatalf("text fallback: %q", b.String())
	}
}
