package dictionary

// Kind classifies a vocabulary Entry (spec §3).
type Kind int8

const (
	KindWord Kind = iota
	KindLabel
)

// Entry is a single vocabulary element: its surface form, observation
// count, kind, and precomputed subword ids. Subword lists are populated
// by initNgrams after the corpus scan's final id assignment and are
// never serialized (spec §4.1) — they're recomputed from Args on load.
type Entry struct {
	Word     string
	Count    int64
	Kind     Kind
	Subwords []int32
}

const (
	// EOS is emitted at every newline during corpus scanning.
	EOS = "</s>"
	// BOW/EOW bracket a word before subword n-grams are extracted.
	BOW = "<"
	EOW = ">"
)
