package semka

const (
	// DefaultDocumentsRoot is where documents live, relative to the
	// site's base, when a Site doesn't set DocumentsRoot.
	DefaultDocumentsRoot = "docs"

	// DocManifestFile is the name of the manifest inside each document
	// directory.
	DocManifestFile = "manifest.json"

	// SiteManifestFile is the location of the site manifest, relative to
	// the site's base.
	SiteManifestFile = "site_manifest.json"

	// DefaultIndexPage is shown when neither the current page nor the
	// site manifest names one.
	DefaultIndexPage = "index"
)

// DocManifest describes a single document: which widget type renders it.
type DocManifest struct {
	Widget string `json:"widget"`
}

// SiteManifest describes the site as a whole. MasterPage is joined in front
// of every page path, so a master page document can wrap every page.
type SiteManifest struct {
	IndexPage  Path `json:"indexPage"`
	MasterPage Path `json:"masterPage"`
}

// DocManifestPath returns the path of the manifest for the document named by
// the head of docPath, under root.
func DocManifestPath(root, docPath Path) (Path, error) {
	name := docPath.Name()
	if name == "" {
		return Path{}, ErrEmptyDocumentName
	}
	return root.Add(name).Add(DocManifestFile), nil
}

// DocFilePath resolves a path relative to the directory of the document
// named by the head of docPath, under root.
func DocFilePath(root, docPath, file Path) Path {
	if docPath.IsEmpty() {
		return root.Join(file)
	}
	return root.Add(docPath.Name()).Join(file)
}
