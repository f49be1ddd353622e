package loader

import "testing"

func TestParsePath_Local(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"local:./registry", "./registry"},
		{"./registry", "./registry"},
		{"/abs/path", "/abs/path"},
	}
	for _, c := range cases {
		vp, err := ParsePath(c.raw)
		if err != nil {
			t.Fatalf("ParsePath(%q) error: %v", c.raw, err)
		}
		if vp.Kind != KindLocal {
			t.Errorf("ParsePath(%q).Kind = %v, want local", c.raw, vp.Kind)
		}
		if vp.Location != c.want {
			t.Errorf("ParsePath(%q).Location = %q, want %q", c.raw, vp.Location, c.want)
		}
	}
}

func TestParsePath_Git(t *testing.T) {
	vp, err := ParsePath("git:https://github.com/example/registry model@v1.2.0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vp.Kind != KindGit {
		t.Fatalf("Kind = %v, want git", vp.Kind)
	}
	if vp.Location != "https://github.com/example/registry" {
		t.Errorf("Location = %q", vp.Location)
	}
	if vp.Subpath != "model" {
		t.Errorf("Subpath = %q, want model", vp.Subpath)
	}
	if vp.Refspec != "v1.2.0" {
		t.Errorf("Refspec = %q, want v1.2.0", vp.Refspec)
	}
}

func TestParsePath_GitNoSubpath(t *testing.T) {
	vp, err := ParsePath("git:https://github.com/example/registry@main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vp.Refspec != "main" {
		t.Errorf("Refspec = %q, want main", vp.Refspec)
	}
	if vp.Location != "https://github.com/example/registry" {
		t.Errorf("Location = %q", vp.Location)
	}
}

func TestParsePath_Archive(t *testing.T) {
	vp, err := ParsePath("archive:https://example.com/registry.zip model")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vp.Kind != KindArchive {
		t.Fatalf("Kind = %v, want archive", vp.Kind)
	}
	if vp.Subpath != "model" {
		t.Errorf("Subpath = %q, want model", vp.Subpath)
	}
}

func TestParsePath_Empty(t *testing.T) {
	if _, err := ParsePath(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
