package assets

import (
	"embed"
	"fmt"
)

//go:embed pages/*
var pages embed.FS

// EmbeddedLoader loads pages from the embedded filesystem.
// Implements AssetLoader interface.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadPage loads an HTML page from embedded assets by name.
// The name should not include the .html extension.
func (e *EmbeddedLoader) LoadPage(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	content, err := pages.ReadFile("pages/" + name + ".html")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrPageNotFound, name)
	}

	return string(content), nil
}

// Compile-time interface check.
var _ AssetLoader = (*EmbeddedLoader)(nil)
