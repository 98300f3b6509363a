package enum

// ConflictPolicy decides what an insert does when the natural key already exists.
type ConflictPolicy uint8

const (
	_conflict_policy_beg ConflictPolicy = iota
	// ConflictIgnore keeps the stored row. Used by append-only logs.
	ConflictIgnore
	// ConflictReplace overwrites the stored row unless it is newer.
	ConflictReplace
	_conflict_policy_end
)

func (p ConflictPolicy) IsAvailable() bool {
	return p > _conflict_policy_beg && p < _conflict_policy_end
}

func (p ConflictPolicy) String() string {
	switch p {
	case ConflictIgnore:
		return "ignore"
	case ConflictReplace:
		return "replace"
	default:
		return "unknown"
	}
}
