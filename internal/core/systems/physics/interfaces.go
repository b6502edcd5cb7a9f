package physics

// HitboxLookup resolves handles to hitboxes. Store implements it.
type HitboxLookup interface {
	Get(h Handle) (*Hitbox, bool)
}

// PairSource produces candidate hitbox pairs for narrow-phase collision.
// Broad-phase partitioning (chunks, grids) lives behind this interface.
type PairSource interface {
	Candidates(store *Store) [][2]*Hitbox
}
