package assets

// AssetLoader defines the contract for loading static pages.
type AssetLoader interface {
	// LoadPage loads an HTML page by name (without .html extension).
	// Returns ErrPageNotFound if the page doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadPage(name string) (string, error)
}
