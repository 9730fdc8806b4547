package cache

// Scope groups keys of the same query family.
type Scope string

const (
	ScopeEmails       Scope = "emails"
	ScopeEmail        Scope = "email"
	ScopeSearch       Scope = "search"
	ScopeTasks        Scope = "tasks"
	ScopeTask         Scope = "task"
	ScopeTasksByEmail Scope = "tasks-by-email"
)

// Key identifies one cached query result.
type Key struct {
	Scope Scope
	ID    string
}

func (k Key) String() string {
	if k.ID == "" {
		return string(k.Scope)
	}
	return string(k.Scope) + ":" + k.ID
}

func EmailsKey() Key { return Key{Scope: ScopeEmails} }
func EmailKey(id string) Key { return Key{Scope: ScopeEmail, ID: id} }
func SearchKey(query string) Key { return Key{Scope: ScopeSearch, ID: query} }
func TasksKey() Key { return Key{Scope: ScopeTasks} }
func TaskKey(id string) Key { return Key{Scope: ScopeTask, ID: id} }
func TasksByEmailKey(emailID string) Key { return Key{Scope: ScopeTasksByEmail, ID: emailID} }
