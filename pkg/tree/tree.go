// Package tree implements the nested-set hierarchy index shared by part
// categories, stock locations, part variant trees, and installed-stock trees.
//
// The index is built from plain parent pointers. Nested-set boundaries
// (lft/rgt), depth (level) and forest membership (tree id) are cached integers
// recomputed only on structural mutation; every read is a range-containment
// check against the cache.
package tree

import (
	"sort"

	"github.com/openmfg/stockcore/pkg/domain/errs"
)

// ID identifies a node within an index.
type ID int64

// Node is the input record for index construction: a node id, an optional
// parent, and whether the node is structural (organizes children but cannot
// hold leaf content directly).
type Node struct {
	ID         ID
	ParentID   *ID
	Structural bool
}

// Ref is the cached nested-set record for one node.
//
// Invariants maintained by the index: Lft < Rgt; for every descendant d of n,
// n.Lft < d.Lft < d.Rgt < n.Rgt and d.Level > n.Level; TreeID is identical
// across a node and all of its descendants.
type Ref struct {
	ID         ID
	ParentID   *ID
	TreeID     int
	Level      int
	Lft        int
	Rgt        int
	Structural bool
}

// Unbounded disables the depth limit on Descendants and TopLevel queries.
const Unbounded = -1

// Index is a nested-set index over one forest of nodes.
//
// Reads are pure lookups against cached boundaries and may run concurrently.
// Structural mutations (Insert, Move, Remove) rebuild the cache and must be
// externally serialized with reads, matching the single-writer maintenance
// model of the store that owns the index.
type Index struct {
	parents map[ID]Node
	refs    map[ID]*Ref
	order   []ID // document order: ascending (TreeID, Lft)
}

// NewIndex builds an index from the given nodes. It fails with a
// ValidationError on duplicate ids or a parent reference to an unknown node,
// and with an IntegrityError if the parent pointers contain a cycle.
func NewIndex(nodes []Node) (*Index, error) {
	ix := &Index{parents: make(map[ID]Node, len(nodes))}
	for _, n := range nodes {
		if _, dup := ix.parents[n.ID]; dup {
			return nil, errs.Validation("duplicate node id %d", n.ID)
		}
		ix.parents[n.ID] = n
	}
	for _, n := range ix.parents {
		if n.ParentID != nil {
			if _, ok := ix.parents[*n.ParentID]; !ok {
				return nil, errs.Validation("node %d references unknown parent %d", n.ID, *n.ParentID)
			}
		}
	}
	if err := ix.rebuild(); err != nil {
		return nil, err
	}
	return ix, nil
}

// rebuild recomputes lft/rgt/level/tree_id from the parent pointers.
func (ix *Index) rebuild() error {
	children := make(map[ID][]ID)
	var roots []ID
	for id, n := range ix.parents {
		if n.ParentID == nil {
			roots = append(roots, id)
		} else {
			children[*n.ParentID] = append(children[*n.ParentID], id)
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })
	for _, c := range children {
		sort.Slice(c, func(i, j int) bool { return c[i] < c[j] })
	}

	refs := make(map[ID]*Ref, len(ix.parents))
	order := make([]ID, 0, len(ix.parents))

	for treeID, root := range roots {
		counter := 1
		// Iterative DFS; a frame is pushed once to descend and once to close.
		type frame struct {
			id     ID
			level  int
			closed bool
		}
		stack := []frame{{id: root, level: 0}}
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if f.closed {
				refs[f.id].Rgt = counter
				counter++
				continue
			}
			n := ix.parents[f.id]
			refs[f.id] = &Ref{
				ID:         f.id,
				ParentID:   n.ParentID,
				TreeID:     treeID + 1,
				Level:      f.level,
				Lft:        counter,
				Structural: n.Structural,
			}
			order = append(order, f.id)
			counter++
			stack = append(stack, frame{id: f.id, closed: true})
			kids := children[f.id]
			for i := len(kids) - 1; i >= 0; i-- {
				stack = append(stack, frame{id: kids[i], level: f.level + 1})
			}
		}
	}

	if len(refs) != len(ix.parents) {
		// Nodes unreachable from any root can only mean a parent-pointer cycle.
		return errs.Integrity("tree contains a parent cycle: %d of %d nodes unreachable",
			len(ix.parents)-len(refs), len(ix.parents))
	}

	ix.refs = refs
	ix.order = order
	return nil
}

// Len returns the number of indexed nodes.
func (ix *Index) Len() int {
	return len(ix.refs)
}

// Contains reports whether the index holds the given id.
func (ix *Index) Contains(id ID) bool {
	_, ok := ix.refs[id]
	return ok
}

// Ref returns the cached nested-set record for a node.
func (ix *Index) Ref(id ID) (Ref, error) {
	r, ok := ix.refs[id]
	if !ok {
		return Ref{}, errs.NotFound("tree node", id)
	}
	return *r, nil
}

// Descendants returns all nodes contained in the subtree rooted at id, in
// document order. maxDepth bounds the result to levels within maxDepth of the
// node (Unbounded disables the limit).
func (ix *Index) Descendants(id ID, includeSelf bool, maxDepth int) ([]ID, error) {
	root, ok := ix.refs[id]
	if !ok {
		return nil, errs.NotFound("tree node", id)
	}
	var out []ID
	for _, cand := range ix.order {
		r := ix.refs[cand]
		if r.TreeID != root.TreeID || r.Lft < root.Lft || r.Rgt > root.Rgt {
			continue
		}
		if cand == id && !includeSelf {
			continue
		}
		if maxDepth != Unbounded && r.Level > root.Level+maxDepth {
			continue
		}
		out = append(out, cand)
	}
	return out, nil
}

// Ancestors returns the chain of nodes containing id, ordered root first.
func (ix *Index) Ancestors(id ID, includeSelf bool) ([]ID, error) {
	node, ok := ix.refs[id]
	if !ok {
		return nil, errs.NotFound("tree node", id)
	}
	var out []ID
	for _, cand := range ix.order {
		r := ix.refs[cand]
		if r.TreeID != node.TreeID || r.Lft > node.Lft || r.Rgt < node.Rgt {
			continue
		}
		if cand == id && !includeSelf {
			continue
		}
		out = append(out, cand)
	}
	return out, nil
}

// Children returns the direct children of id in document order.
func (ix *Index) Children(id ID) ([]ID, error) {
	node, ok := ix.refs[id]
	if !ok {
		return nil, errs.NotFound("tree node", id)
	}
	var out []ID
	for _, cand := range ix.order {
		r := ix.refs[cand]
		if r.TreeID != node.TreeID || r.Lft <= node.Lft || r.Rgt >= node.Rgt {
			continue
		}
		if r.Level == node.Level+1 {
			out = append(out, cand)
		}
	}
	return out, nil
}

// TopLevel returns the forest roots. With cascade it additionally includes
// deeper nodes down to maxDepth levels from the roots.
func (ix *Index) TopLevel(cascade bool, maxDepth int) []ID {
	var out []ID
	for _, id := range ix.order {
		r := ix.refs[id]
		if !cascade {
			if r.ParentID == nil {
				out = append(out, id)
			}
			continue
		}
		if maxDepth == Unbounded || r.Level <= maxDepth {
			out = append(out, id)
		}
	}
	return out
}

// ExcludeSubtree removes the subtree rooted at root (inclusive) from ids,
// preserving the order of the remaining entries.
func (ix *Index) ExcludeSubtree(ids []ID, root ID) ([]ID, error) {
	excluded, err := ix.Descendants(root, true, Unbounded)
	if err != nil {
		return nil, err
	}
	drop := make(map[ID]struct{}, len(excluded))
	for _, id := range excluded {
		drop[id] = struct{}{}
	}
	out := make([]ID, 0, len(ids))
	for _, id := range ids {
		if _, skip := drop[id]; !skip {
			out = append(out, id)
		}
	}
	return out, nil
}

// IsDescendantOf reports whether id lies within the subtree rooted at
// ancestor. Unknown ids report false.
func (ix *Index) IsDescendantOf(id, ancestor ID, includeSelf bool) bool {
	node, ok := ix.refs[id]
	if !ok {
		return false
	}
	anc, ok := ix.refs[ancestor]
	if !ok {
		return false
	}
	if id == ancestor {
		return includeSelf
	}
	return node.TreeID == anc.TreeID && anc.Lft < node.Lft && node.Rgt < anc.Rgt
}

// Insert adds a node and rebuilds the cached boundaries.
func (ix *Index) Insert(n Node) error {
	if _, dup := ix.parents[n.ID]; dup {
		return errs.Validation("duplicate node id %d", n.ID)
	}
	if n.ParentID != nil {
		if _, ok := ix.parents[*n.ParentID]; !ok {
			return errs.NotFound("tree node", *n.ParentID)
		}
	}
	ix.parents[n.ID] = n
	return ix.rebuild()
}

// Move reparents a node (nil makes it a root) and rebuilds. Moving a node
// under its own subtree is rejected.
func (ix *Index) Move(id ID, newParent *ID) error {
	n, ok := ix.parents[id]
	if !ok {
		return errs.NotFound("tree node", id)
	}
	if newParent != nil {
		if _, ok := ix.parents[*newParent]; !ok {
			return errs.NotFound("tree node", *newParent)
		}
		if ix.IsDescendantOf(*newParent, id, true) {
			return errs.Validation("cannot move node %d under its own subtree", id)
		}
	}
	n.ParentID = newParent
	ix.parents[id] = n
	return ix.rebuild()
}

// Remove deletes a node, promoting its children to the removed node's parent,
// and rebuilds.
func (ix *Index) Remove(id ID) error {
	n, ok := ix.parents[id]
	if !ok {
		return errs.NotFound("tree node", id)
	}
	for cid, c := range ix.parents {
		if c.ParentID != nil && *c.ParentID == id {
			c.ParentID = n.ParentID
			ix.parents[cid] = c
		}
	}
	delete(ix.parents, id)
	return ix.rebuild()
}
