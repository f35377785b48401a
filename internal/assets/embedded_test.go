package assets

import (
	"strings"
	"testing"
)

func TestEmbeddedLoader_IndexDocumentsEndpoints(t *testing.T) {
	t.Parallel()

	page, err := NewEmbeddedLoader().LoadPage(IndexPage)
	if err != nil {
		t.Fatalf("LoadPage() error = %v", err)
	}

	for _, want := range []string{"/pdf?filename=", "/multiple?filename=", "/upload", "/media/", "X_API_KEY"} {
		if !strings.Contains(page, want) {
			t.Errorf("index page should mention %q", want)
		}
	}
}

func TestEmbeddedLoader_ImplementsAssetLoader(t *testing.T) {
	t.Parallel()

	var _ AssetLoader = (*EmbeddedLoader)(nil)
}
