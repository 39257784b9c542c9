package store

// Kind identifies one class of persisted state.
type Kind string

const (
	KindPortfolio  Kind = "PORTFOLIO_DATA"
	KindFollowList Kind = "FOLLOW_LIST_DATA"
)

// Scope identifies the owner of one persisted blob. OwnerID is recorded on
// save; lookups resolve by (kind, channel) — the canonical variant keeps one
// blob per kind per channel, with the last writer's id embedded for audit.
type Scope struct {
	OwnerID   string
	ChannelID string
}

// Store is a key-value adapter over some backing medium. Save overwrites the
// existing blob for the key, never duplicates. Load reports found=false for
// an absent key without error; errors are reserved for the medium itself.
type Store interface {
	Load(kind Kind, scope Scope) (data []byte, found bool, err error)
	Save(kind Kind, scope Scope, data []byte) error
}
