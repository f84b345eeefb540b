package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func newFS(t *testing.T) *FS {
	t.Helper()
	fs, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestSaveReadDelete(t *testing.T) {
	fs := newFS(t)
	name, err := fs.Save("pic.png", []byte("png-bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if name != "pic.png" {
		t.Errorf("stored name = %q", name)
	}

	data, err := fs.Read("pic.png")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("content = %q", data)
	}

	if err := fs.Delete("pic.png"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := fs.Read("pic.png"); err == nil {
		t.Error("read after delete should fail")
	}
}

func TestSaveRejectsTraversal(t *testing.T) {
	fs := newFS(t)
	for _, name := range []string{"../escape.png", "/abs.png", "a/../../b.png"} {
		if _, err := fs.Save(name, []byte("x")); err == nil {
			t.Errorf("Save(%q) should fail", name)
		}
	}
}

func TestSaveLeavesNoTempFilesBehind(t *testing.T) {
	fs := newFS(t)
	if _, err := fs.Save("a.png", []byte("x")); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(fs.Root())
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() != "a.png" {
			t.Errorf("unexpected file: %s", e.Name())
		}
	}
}

func TestList(t *testing.T) {
	fs := newFS(t)
	if _, err := fs.Save("a.png", []byte("aa")); err != nil {
		t.Fatal(err)
	}
	if _, err := fs.Save(filepath.Join("sub", "b.jpg"), []byte("bbb")); err != nil {
		t.Fatal(err)
	}
	infos, err := fs.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("len = %d, want 2", len(infos))
	}
}
