package assets

// IndexPage is the name of the usage page served at the root path.
const IndexPage = "index"

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// LoadPage loads an HTML page by name using the default embedded loader.
// The name should not include the .html extension or path components.
// Returns ErrPageNotFound if the page does not exist.
// Returns ErrInvalidAssetName if the name contains path separators or traversal.
func LoadPage(name string) (string, error) {
	return defaultLoader.LoadPage(name)
}
