package scraper

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadCatalog_Defaults(t *testing.T) {
	cat, err := LoadCatalog("")
	if err != nil {
		t.Fatalf("default catalog failed validation: %v", err)
	}
	if len(cat.ReviewNode) == 0 {
		t.Error("default catalog has no review node selectors")
	}
	if cat.SortNewestText == "" {
		t.Error("default catalog has no sort menu text")
	}
}

func TestLoadCatalog_OverrideReplacesWholeList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selectors.yaml")
	yaml := "review_node:\n  - div.custom-review\nsort_newest_text: 最新\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cat, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if len(cat.ReviewNode) != 1 || cat.ReviewNode[0] != "div.custom-review" {
		t.Errorf("override did not replace review_node: %v", cat.ReviewNode)
	}
	if cat.SortNewestText != "最新" {
		t.Errorf("override did not replace sort text: %q", cat.SortNewestText)
	}
	// Untouched lists keep their defaults.
	if len(cat.Author) == 0 {
		t.Error("unrelated list lost its defaults")
	}
}

func TestLoadCatalog_InvalidSelectorRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selectors.yaml")
	yaml := "author:\n  - 'div[['\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadCatalog(path); err == nil {
		t.Error("invalid selector passed validation")
	}
}

func TestLoadCatalog_MissingFile(t *testing.T) {
	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing override file not reported")
	}
}

func TestReviewNodeUnion(t *testing.T) {
	cat := &Catalog{ReviewNode: []string{"div.a", "div.b"}}
	union := cat.ReviewNodeUnion()
	if union != "div.a, div.b" {
		t.Errorf("union = %q", union)
	}
	if strings.Count(union, ",") != 1 {
		t.Errorf("unexpected separator count in %q", union)
	}
}
