package reducer

// Info describes a merge strategy for introspection (CLI, HTTP surface).
type Info struct {
	Strategy    Strategy `json:"strategy"`
	Commutative bool     `json:"commutative"`
	Description string   `json:"description"`
}

var infos = map[Strategy]Info{
	LastWriteWins: {
		Strategy:    LastWriteWins,
		Commutative: false,
		Description: "proposed value replaces the current one; application order matters",
	},
	AppendHistory: {
		Strategy:    AppendHistory,
		Commutative: false,
		Description: "keeps current value per key plus a bounded history ring of previous values",
	},
	MonotonicProgress: {
		Strategy:    MonotonicProgress,
		Commutative: true,
		Description: "per-key maximum clamped to [0,100]; recomputes the _overall mean",
	},
	// Commutative under intersection/union; ReplaceWins depends on order.
	PermissionMerge: {
		Strategy:    PermissionMerge,
		Commutative: true,
		Description: "reconciles capability sets via intersection, union, or replace",
	},
	AppendBounded: {
		Strategy:    AppendBounded,
		Commutative: true,
		Description: "appends items and caps total length, dropping the oldest",
	},
	Chronological: {
		Strategy:    Chronological,
		Commutative: true,
		Description: "appends entries, stamps missing timestamps, keeps timestamp order",
	},
	DedupAppend: {
		Strategy:    DedupAppend,
		Commutative: true,
		Description: "appends only items not already present by content equality",
	},
	// Update-in-place on an open entry depends on application order.
	KeyedDedup: {
		Strategy:    KeyedDedup,
		Commutative: false,
		Description: "dedups mapping entries on key fields while open, updating in place; newest first",
	},
	DeepMerge: {
		Strategy:    DeepMerge,
		Commutative: false,
		Description: "recursive map merge, proposed wins per leaf; arrays replaced wholesale",
	},
}

// Describe returns strategy metadata. Unknown strategies report as
// last-write-wins since that is how the merge engine treats them.
func Describe(s Strategy) Info {
	if info, ok := infos[s]; ok {
		return info
	}
	info := infos[LastWriteWins]
	info.Strategy = s
	return info
}

// Strategies lists every registered strategy identifier.
func Strategies() []Strategy {
	out := make([]Strategy, 0, len(infos))
	for s := range infos {
		out = append(out, s)
	}
	return out
}
