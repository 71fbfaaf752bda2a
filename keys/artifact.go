package keys

// Artifact names one of the three files a name can map to.
//
// The zero value is not a valid artifact. Artifacts are ordered: conflict
// checks and derivation checks visit them as public, secret, seed.
type Artifact uint8

const (
	ArtifactPublic Artifact = iota + 1
	ArtifactSecret
	ArtifactSeed
)

// Artifacts lists every artifact in check order.
var Artifacts = []Artifact{ArtifactPublic, ArtifactSecret, ArtifactSeed}

const (
	publicSuffix = ".pub"
	secretSuffix = ".sec"
)

// Suffix is the filename suffix appended to the entry name on disk.
// The seed file has no suffix.
func (a Artifact) Suffix() string {
	switch a {
	case ArtifactPublic:
		return publicSuffix
	case ArtifactSecret:
		return secretSuffix
	default:
		return ""
	}
}

func (a Artifact) String() string {
	switch a {
	case ArtifactPublic:
		return "public"
	case ArtifactSecret:
		return "secret"
	case ArtifactSeed:
		return "seed"
	default:
		return "unknown"
	}
}

// Field is the name of the slot in Keys and in structured CLI output.
func (a Artifact) Field() string {
	switch a {
	case ArtifactPublic:
		return "publicKey"
	case ArtifactSecret:
		return "secretKey"
	case ArtifactSeed:
		return "seedKey"
	default:
		return ""
	}
}

// Description is the human-readable form used in error messages.
func (a Artifact) Description() string {
	switch a {
	case ArtifactPublic:
		return "public key"
	case ArtifactSecret:
		return "secret key"
	case ArtifactSeed:
		return "seed key"
	default:
		return "unknown artifact"
	}
}

// Paths reports where each artifact of a name lives.
// An empty string means the artifact is absent.
type Paths struct {
	PublicKey string
	SecretKey string
	SeedKey   string
}

// Get returns the path recorded for a, or "" when absent.
func (p Paths) Get(a Artifact) string {
	switch a {
	case ArtifactPublic:
		return p.PublicKey
	case ArtifactSecret:
		return p.SecretKey
	case ArtifactSeed:
		return p.SeedKey
	default:
		return ""
	}
}

// Any reports whether at least one artifact is present.
func (p Paths) Any() bool {
	return p.PublicKey != "" || p.SecretKey != "" || p.SeedKey != ""
}

func (p *Paths) set(a Artifact, path string) {
	switch a {
	case ArtifactPublic:
		p.PublicKey = path
	case ArtifactSecret:
		p.SecretKey = path
	case ArtifactSeed:
		p.SeedKey = path
	}
}

// Keys holds the key material of one named entry.
//
// A nil slice means the slot is absent. A present slot is always non-nil,
// even when the file on disk is empty.
type Keys struct {
	PublicKey []byte
	SecretKey []byte
	SeedKey   []byte
}

// Get returns the bytes in slot a, or nil when absent.
func (k Keys) Get(a Artifact) []byte {
	switch a {
	case ArtifactPublic:
		return k.PublicKey
	case ArtifactSecret:
		return k.SecretKey
	case ArtifactSeed:
		return k.SeedKey
	default:
		return nil
	}
}

// Has reports whether slot a is present.
func (k Keys) Has(a Artifact) bool {
	return k.Get(a) != nil
}

func (k *Keys) set(a Artifact, b []byte) {
	switch a {
	case ArtifactPublic:
		k.PublicKey = b
	case ArtifactSecret:
		k.SecretKey = b
	case ArtifactSeed:
		k.SeedKey = b
	}
}
