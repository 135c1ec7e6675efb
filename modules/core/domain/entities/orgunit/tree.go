package orgunit

// Tree is an immutable index over a snapshot of organizational units.
// It is built once from a flat unit list and answers ancestor/descendant
// questions by index traversal, never by per-call storage queries. A unit
// whose parent is absent from the snapshot is treated as a root, so a
// partially loaded working set cannot cause unbounded walks.
//
// Tree is read-only after construction; callers swap in a freshly built
// Tree when the hierarchy changes.
type Tree struct {
	byID     map[uint]OrgUnit
	children map[uint][]uint
	order    []uint
}

func NewTree(units []OrgUnit) *Tree {
	t := &Tree{
		byID:     make(map[uint]OrgUnit, len(units)),
		children: make(map[uint][]uint, len(units)),
		order:    make([]uint, 0, len(units)),
	}
	for _, u := range units {
		if _, seen := t.byID[u.ID()]; seen {
			continue
		}
		t.byID[u.ID()] = u
		t.order = append(t.order, u.ID())
	}
	for _, id := range t.order {
		u := t.byID[id]
		if !u.IsRoot() {
			if _, ok := t.byID[u.ParentID()]; ok {
				t.children[u.ParentID()] = append(t.children[u.ParentID()], id)
			}
		}
	}
	return t
}

func (t *Tree) Len() int {
	return len(t.byID)
}

func (t *Tree) Get(id uint) (OrgUnit, bool) {
	u, ok := t.byID[id]
	return u, ok
}

// All returns every unit in snapshot order.
func (t *Tree) All() []OrgUnit {
	out := make([]OrgUnit, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.byID[id])
	}
	return out
}

// AncestorsOf returns the path from the root down to and including the
// given unit. The walk stops at units whose parent is missing from the
// snapshot and guards against parent cycles.
func (t *Tree) AncestorsOf(id uint) []OrgUnit {
	u, ok := t.byID[id]
	if !ok {
		return nil
	}
	path := []OrgUnit{u}
	visited := map[uint]bool{id: true}
	for !u.IsRoot() {
		parent, ok := t.byID[u.ParentID()]
		if !ok || visited[parent.ID()] {
			break
		}
		visited[parent.ID()] = true
		path = append([]OrgUnit{parent}, path...)
		u = parent
	}
	return path
}

// DescendantsOf returns every transitive child of the given unit, not
// including the unit itself. Runs in O(subtree size).
func (t *Tree) DescendantsOf(id uint) []OrgUnit {
	if _, ok := t.byID[id]; !ok {
		return nil
	}
	var out []OrgUnit
	seen := map[uint]bool{id: true}
	stack := append([]uint(nil), t.children[id]...)
	for len(stack) > 0 {
		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[next] {
			continue
		}
		seen[next] = true
		out = append(out, t.byID[next])
		stack = append(stack, t.children[next]...)
	}
	return out
}

// Contains reports whether candidate equals ancestor or sits anywhere in
// its subtree.
func (t *Tree) Contains(ancestorID, candidateID uint) bool {
	if ancestorID == candidateID {
		_, ok := t.byID[ancestorID]
		return ok
	}
	u, ok := t.byID[candidateID]
	if !ok {
		return false
	}
	visited := map[uint]bool{candidateID: true}
	for !u.IsRoot() {
		if u.ParentID() == ancestorID {
			_, ok := t.byID[ancestorID]
			return ok
		}
		parent, ok := t.byID[u.ParentID()]
		if !ok || visited[parent.ID()] {
			return false
		}
		visited[parent.ID()] = true
		u = parent
	}
	return false
}

// AccessibleFrom returns the ids of the unit itself plus all descendants,
// which is the visibility set for regional and branch level subjects.
func (t *Tree) AccessibleFrom(id uint) []uint {
	if _, ok := t.byID[id]; !ok {
		return nil
	}
	ids := []uint{id}
	for _, d := range t.DescendantsOf(id) {
		ids = append(ids, d.ID())
	}
	return ids
}
