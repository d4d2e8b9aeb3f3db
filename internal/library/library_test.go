package library

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	lib, err := Load("testdata/scripts")

	if err != nil {
		t.Errorf("got error: %v", err)
		t.FailNow()
	}

	if n := lib.Len(); n != 1 {
		t.Errorf("incorrect number of scripts got %d wanted %d", n, 1)
	}

	script, err := lib.Get("hello")

	if err != nil {
		t.Fatalf("could not find script hello: %v", err)
	}

	if script.Text != "hello\tworld\n" || script.Banner != BannerGranted {
		t.Errorf("script = %+v", script)
	}

	if _, err := lib.Get("missing"); !errors.Is(err, ErrScriptNotFound) {
		t.Errorf("err = %v, want ErrScriptNotFound", err)
	}
}

func TestInstallBuiltins(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "scripts")

	if err := Install(dir); err != nil {
		t.Fatalf("install failed: %v", err)
	}

	lib, err := Load(dir)

	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	for _, name := range []string{"mainframe", "firewall", "kernel"} {
		script, err := lib.Get(name)

		if err != nil {
			t.Errorf("builtin %s missing: %v", name, err)
			continue
		}

		if err := script.Verify(); err != nil {
			t.Errorf("builtin %s invalid: %v", name, err)
		}
	}

	if names := lib.Names(); len(names) != 3 || names[0] != "firewall" {
		t.Errorf("names = %v, want sorted builtins", names)
	}
}

func TestImport(t *testing.T) {
	dir := t.TempDir()

	if err := ImportDir(dir, "testdata/scripts"); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	lib, err := Load(dir)

	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if !lib.Contains("hello") {
		t.Error("imported script not found")
	}

	if err := ImportFile(dir, "testdata/bad.yaml"); !errors.Is(err, ErrInvalidScript) {
		t.Errorf("err = %v, want ErrInvalidScript", err)
	}
}

func TestVerifyName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"mainframe", true},
		{"kernel-panic.v2", true},
		{"", false},
		{"../escaped", false},
		{"nested/script", false},
		{`back\slash`, false},
		{"..", false},
		{".", false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := (&Script{Name: test.name, Text: "x"}).Verify()

			if test.valid && err != nil {
				t.Errorf("Verify(%q) = %v, want nil", test.name, err)
			}

			if !test.valid && !errors.Is(err, ErrInvalidScript) {
				t.Errorf("Verify(%q) = %v, want ErrInvalidScript", test.name, err)
			}
		})
	}
}

func TestImportStaysInDir(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "scripts")

	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatal(err)
	}

	if err := ImportFile(dir, "testdata/escape.yaml"); !errors.Is(err, ErrInvalidScript) {
		t.Errorf("err = %v, want ErrInvalidScript", err)
	}

	if _, err := os.Stat(filepath.Join(root, "escaped.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("script was written outside the data dir: %v", err)
	}
}
