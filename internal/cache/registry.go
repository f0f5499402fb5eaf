package cache

// Registry pairs a primary map of entities with the set of ids for which a
// fetch is in flight, so a lookup miss never issues two parallel fetches.
// Insert clears the pending entry in the same mutation.
type Registry[V any] struct {
	byID      map[string]V
	requested map[string]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry[V any]() *Registry[V] {
	return &Registry[V]{
		byID:      make(map[string]V),
		requested: make(map[string]struct{}),
	}
}

// Get returns the entity with the given id, if present.
func (r *Registry[V]) Get(id string) (V, bool) {
	v, ok := r.byID[id]
	return v, ok
}

// Insert stores the entity and removes the id from the requested set.
func (r *Registry[V]) Insert(id string, v V) {
	delete(r.requested, id)
	r.byID[id] = v
}

// AddRequested records that a fetch is outstanding for the id.
func (r *Registry[V]) AddRequested(id string) {
	r.requested[id] = struct{}{}
}

// ExistsOrRequested reports whether the entity is present or a fetch for it
// is outstanding.
func (r *Registry[V]) ExistsOrRequested(id string) bool {
	if _, ok := r.byID[id]; ok {
		return true
	}
	_, ok := r.requested[id]
	return ok
}
