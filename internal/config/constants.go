package config

const ManifestFileExt = ".yaml"

// ManifestFileExtensions are all recognized trait-table manifest extensions
var ManifestFileExtensions = []string{".yaml", ".yml"}

// DefaultManifestName is looked up in the working directory when no
// manifest path is given on the command line.
const DefaultManifestName = "traitscope" + ManifestFileExt

// Query kinds accepted in manifests
const (
	QueryKindProjection  = "projection"
	QueryKindExistential = "existential"
	QueryKindClosure     = "closure"
)
