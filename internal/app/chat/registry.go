package chat

import "sort"

// Entry is one live session registered under a user name.
type Entry struct {
	Name    string
	ID      string
	Session *Session
}

// Registry maps a user name to the sessions currently logged in under it.
// A name is present iff it has at least one session.
//
// Registry is not safe for concurrent use; Hub serializes all access.
type Registry struct {
	users map[string]map[string]*Session
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		users: make(map[string]map[string]*Session),
	}
}

// Register adds sess under name with identity id.
// It returns true when name had no sessions before this call.
func (r *Registry) Register(name, id string, sess *Session) bool {
	sessions, ok := r.users[name]
	if !ok {
		sessions = make(map[string]*Session)
		r.users[name] = sessions
	}

	sessions[id] = sess
	return !ok
}

// Unregister removes the session id from name.
// It returns true when that was the last session and name itself was removed.
func (r *Registry) Unregister(name, id string) bool {
	sessions, ok := r.users[name]
	if !ok {
		return false
	}

	if _, ok := sessions[id]; !ok {
		return false
	}

	delete(sessions, id)
	if len(sessions) > 0 {
		return false
	}

	delete(r.users, name)
	return true
}

// Has reports whether any session uses name.
func (r *Registry) Has(name string) bool {
	_, ok := r.users[name]
	return ok
}

// SessionsFor returns the sessions registered under name, or an empty slice.
func (r *Registry) SessionsFor(name string) []Entry {
	sessions := r.users[name]

	out := make([]Entry, 0, len(sessions))
	for id, sess := range sessions {
		out = append(out, Entry{Name: name, ID: id, Session: sess})
	}
	return out
}

// AllSessions returns every registered session.
func (r *Registry) AllSessions() []Entry {
	var out []Entry
	for name, sessions := range r.users {
		for id, sess := range sessions {
			out = append(out, Entry{Name: name, ID: id, Session: sess})
		}
	}
	return out
}

// Names returns the registered user names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.users))
	for name := range r.users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of sessions under name.
func (r *Registry) Count(name string) int {
	return len(r.users[name])
}
