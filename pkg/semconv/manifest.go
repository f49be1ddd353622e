package semconv

// RegistryManifest is the `registry_manifest.yaml` at a registry root (§6).
type RegistryManifest struct {
	SchemaURL    string               `yaml:"schema_url" json:"schema_url"`
	Description  string               `yaml:"description" json:"description,omitempty"`
	Stability    Stability            `yaml:"stability" json:"stability"`
	Dependencies []ManifestDependency `yaml:"dependencies" json:"dependencies,omitempty"`
}

// ManifestDependency names one registry dependency declared in a manifest.
type ManifestDependency struct {
	Name         string `yaml:"name" json:"name"`
	RegistryPath string `yaml:"registry_path" json:"registry_path"`
	Version      string `yaml:"version" json:"version,omitempty"`
}

// PublicationManifest is produced by a package/publish step (§6); the core
// only models its shape for round-tripping, it never writes one itself.
type PublicationManifest struct {
	FileFormat        string               `yaml:"file_format" json:"file_format"`
	SchemaURL         string               `yaml:"schema_url" json:"schema_url"`
	Description       string               `yaml:"description" json:"description,omitempty"`
	Dependencies      []ManifestDependency `yaml:"dependencies" json:"dependencies,omitempty"`
	Stability         Stability            `yaml:"stability" json:"stability"`
	ResolvedSchemaURI string               `yaml:"resolved_schema_uri" json:"resolved_schema_uri"`
}

// RegistryFile is the top-level shape of one registry YAML file: a single
// `groups:` key (§6).
type RegistryFile struct {
	Groups []RawGroup `yaml:"groups" json:"groups"`
}
