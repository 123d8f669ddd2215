package paths

import (
	"errors"
	"testing"
	"time"
)

func TestProjectPaths(t *testing.T) {
	if got, want := ProjectPath("Demo"), "/storage/emulated/0/WebIDE+/Projects/Demo"; got != want {
		t.Fatalf("ProjectPath: got %q want %q", got, want)
	}
	if got, want := ProjectConfigPath("Demo"), "/storage/emulated/0/WebIDE+/Projects/Demo/web.json"; got != want {
		t.Fatalf("ProjectConfigPath: got %q want %q", got, want)
	}
}

func TestJoin(t *testing.T) {
	cases := []struct {
		parts []string
		want  string
	}{
		{[]string{"/a", "b"}, "/a/b"},
		{[]string{"/a/", "/b/", "c"}, "/a/b/c"},
		{[]string{"", "a", "", "b"}, "a/b"},
	}
	for _, tc := range cases {
		if got := Join(tc.parts...); got != tc.want {
			t.Fatalf("Join(%q): got %q want %q", tc.parts, got, tc.want)
		}
	}
}

func TestParentBase(t *testing.T) {
	if got := Parent("/p/src/main.js"); got != "/p/src" {
		t.Fatalf("Parent: got %q", got)
	}
	if got := Base("/p/src/main.js"); got != "main.js" {
		t.Fatalf("Base: got %q", got)
	}
	if got := Parent("main.js"); got != "" {
		t.Fatalf("Parent without slash: got %q", got)
	}
}

func TestRebase(t *testing.T) {
	if got := Rebase("/p/a/b.txt", "/p/a", "/p/z"); got != "/p/z/b.txt" {
		t.Fatalf("Rebase: got %q", got)
	}
	if got := Rebase("/p/ab/b.txt", "/p/a", "/p/z"); got != "/p/ab/b.txt" {
		t.Fatalf("Rebase must not match sibling prefixes: got %q", got)
	}
}

func TestValidName(t *testing.T) {
	for _, ok := range []string{"Demo", "my app", "a.b-c_d", "中文"} {
		if !ValidName(ok) {
			t.Fatalf("expected %q to be valid", ok)
		}
	}
	for _, bad := range []string{"", "   ", "a/b", `a\b`, "a:b", "a*b", "a?b", `a"b`, "a<b", "a>b", "a|b"} {
		if ValidName(bad) {
			t.Fatalf("expected %q to be invalid", bad)
		}
		var ve *ValidationError
		if err := CheckName("project name", bad); !errors.As(err, &ve) {
			t.Fatalf("CheckName(%q): expected ValidationError, got %v", bad, err)
		}
	}
}

func TestGeneratePackageName(t *testing.T) {
	cases := map[string]string{
		"Demo":     "com.example.demo",
		"My App 2": "com.example.myapp2",
		"123abc":   "com.example.abc",
		"!!!":      "com.example.app",
		"999":      "com.example.app",
	}
	for in, want := range cases {
		got := GeneratePackageName(in)
		if got != want {
			t.Fatalf("GeneratePackageName(%q): got %q want %q", in, got, want)
		}
		if !ValidPackageName(got) {
			t.Fatalf("generated package name %q is not valid", got)
		}
	}
}

func TestExt(t *testing.T) {
	if got := Ext("/p/Index.HTML"); got != "html" {
		t.Fatalf("Ext: got %q", got)
	}
	if got := Ext("/p.d/Makefile"); got != "" {
		t.Fatalf("Ext without dot: got %q", got)
	}
	if got := NameWithoutExt("a.tar.gz"); got != "a.tar" {
		t.Fatalf("NameWithoutExt: got %q", got)
	}
}

func TestFormatTime(t *testing.T) {
	now := time.Date(2025, 9, 30, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{time.Minute, "1 minute ago"},
		{5 * time.Minute, "5 minutes ago"},
		{3 * time.Hour, "3 hours ago"},
		{2 * 24 * time.Hour, "2 days ago"},
		{15 * 24 * time.Hour, "2 weeks ago"},
		{45 * 24 * time.Hour, "2025-08-16"},
	}
	for _, tc := range cases {
		if got := FormatTime(now.Add(-tc.ago), now); got != tc.want {
			t.Fatalf("FormatTime(-%s): got %q want %q", tc.ago, got, tc.want)
		}
	}
}

func TestFormatSize(t *testing.T) {
	if got := FormatSize(0); got != "0 B" {
		t.Fatalf("FormatSize(0): got %q", got)
	}
	if got := FormatSize(2048); got != "2.0 KiB" {
		t.Fatalf("FormatSize(2048): got %q", got)
	}
}
