package directory

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/afoley587/coding-challenges-2025/userdir/internal/store"
)

// Mode describes where the visible list comes from.
type Mode int

const (
	// ModeAll shows the full list: the term is blank or nothing has been
	// searched since it was last cleared.
	ModeAll Mode = iota
	// ModeRemote shows the gateway's prefix-range result.
	ModeRemote
	// ModeFallback shows the local substring filter, used after the
	// range query failed.
	ModeFallback
)

func (m Mode) String() string {
	switch m {
	case ModeRemote:
		return "remote"
	case ModeFallback:
		return "fallback"
	default:
		return "all"
	}
}

// query is the outcome of the last submitted search.  Fallback outcomes
// carry no users; they are recomputed from the full list every time it
// changes.
type query struct {
	term     string
	fallback bool
	users    []store.User
}

// deriveVisible is the only place the visible list is computed.
func deriveVisible(all []store.User, term string, q *query) ([]store.User, Mode) {
	if store.IsBlank(term) || q == nil {
		return clone(all), ModeAll
	}
	if q.fallback {
		return localFilter(all, q.term), ModeFallback
	}
	return clone(q.users), ModeRemote
}

// localFilter keeps the users whose name or email contains term, ignoring
// case.
func localFilter(all []store.User, term string) []store.User {
	lower := cases.Lower(language.Und)
	needle := lower.String(term)
	out := make([]store.User, 0)
	for _, u := range all {
		if strings.Contains(lower.String(u.Name), needle) || strings.Contains(lower.String(u.Email), needle) {
			out = append(out, u)
		}
	}
	return out
}

func clone(users []store.User) []store.User {
	out := make([]store.User, len(users))
	copy(out, users)
	return out
}

// without returns users minus every record whose id is in drop.
func without(users []store.User, drop func(id string) bool) []store.User {
	out := make([]store.User, 0, len(users))
	for _, u := range users {
		if !drop(u.ID) {
			out = append(out, u)
		}
	}
	return out
}
