package search

import "strings"

// interner owns the canonical copy of every distinct word the server has
// ever indexed. Both frequency maps key on these canonical strings, so a
// word's bytes are stored once no matter how many documents contain it.
// Words are never released, even after the last document containing them is
// removed; handles handed out to callers stay valid for the server's
// lifetime.
type interner struct {
	words map[string]string
}

func newInterner() *interner {
	return &interner{words: make(map[string]string)}
}

// Intern returns the canonical copy of w, inserting one on first sight.
// The inserted copy is detached from the caller's backing buffer so the
// index never pins whole document texts.
func (in *interner) Intern(w string) string {
	if canonical, ok := in.words[w]; ok {
		return canonical
	}
	canonical := strings.Clone(w)
	in.words[canonical] = canonical
	return canonical
}

// Lookup returns the canonical copy of w without inserting.
func (in *interner) Lookup(w string) (string, bool) {
	canonical, ok := in.words[w]
	return canonical, ok
}

func (in *interner) Len() int {
	return len(in.words)
}
