package capabilities

// CapabilitySet declares which storage operations a provider supports.
// Our own backends (local filesystem, object storage) support everything;
// external drives are read-only from our side.
type CapabilitySet struct {
	Upload            bool `yaml:"upload" json:"upload"`
	ReadBytes         bool `yaml:"read_bytes" json:"read_bytes"`
	DownloadReference bool `yaml:"download_reference" json:"download_reference"`
	Delete            bool `yaml:"delete" json:"delete"`
}

// ProviderDescriptor holds everything the OAuth connect flow and the
// provider clients need to know about one external storage provider:
// consent and token endpoints, requested scopes, and the API base URL.
// Client ids and secrets deliberately live in configuration, not here.
type ProviderDescriptor struct {
	// Provider identifier (set during YAML unmarshaling; matches the
	// File.ExternalStorageType and ExternalCredential.Provider values)
	Provider string `yaml:"-" json:"provider"`

	DisplayName string `yaml:"display_name" json:"display_name"`

	// OAuth endpoints
	AuthURL  string   `yaml:"auth_url" json:"-"`
	TokenURL string   `yaml:"token_url" json:"-"`
	Scopes   []string `yaml:"scopes" json:"-"`

	// APIBaseURL is the REST root the provider client talks to
	APIBaseURL string `yaml:"api_base_url" json:"-"`

	Capabilities CapabilitySet `yaml:"capabilities" json:"capabilities"`

	// MaxDownloadBytes caps how much content one download pulls from the
	// provider. Zero means no explicit cap.
	MaxDownloadBytes int64 `yaml:"max_download_bytes" json:"max_download_bytes,omitempty"`
}
