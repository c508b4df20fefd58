package services

import (
	"sort"
	"strings"
	"time"

	domain "github.com/socialstack-core/storefront-api/internal/domain"
)

// NoParent marks a node without a parent in the arena.
const NoParent = -1

// CategoryNode is one arena slot in a materialised category tree. Parent and Children
// hold arena indices, never references; the tree owns every node.
type CategoryNode struct {
	Category domain.Category
	// Parent is the arena index of the parent node, or NoParent for roots.
	Parent   int
	Children []int
	// FullPathSlug is the '/'-joined slug path from root to this node.
	FullPathSlug string
	// Products holds the category's products when the tree was built with them.
	Products []domain.Product
}

// CategoryTree is an immutable snapshot of the category hierarchy. It is built fresh on
// every rebuild and never mutated afterwards, so it is safe to share across goroutines
// without locking.
type CategoryTree struct {
	nodes  []CategoryNode
	roots  []int
	byID   map[uint64]int
	bySlug map[string]int

	builtAt      time.Time
	withProducts bool
}

// Roots returns the arena indices of the top-level nodes.
func (t *CategoryTree) Roots() []int { return t.roots }

// Node returns the node at the given arena index.
func (t *CategoryTree) Node(index int) *CategoryNode {
	if index < 0 || index >= len(t.nodes) {
		return nil
	}
	return &t.nodes[index]
}

// Len returns the number of nodes in the arena.
func (t *CategoryTree) Len() int { return len(t.nodes) }

// ByID resolves a category id to its arena index.
func (t *CategoryTree) ByID(id uint64) (int, bool) {
	index, ok := t.byID[id]
	return index, ok
}

// BySlug resolves a category slug to its arena index.
func (t *CategoryTree) BySlug(slug string) (int, bool) {
	index, ok := t.bySlug[slug]
	return index, ok
}

// BuiltAt reports when the snapshot was materialised.
func (t *CategoryTree) BuiltAt() time.Time { return t.builtAt }

// HasProducts reports whether product leaves were attached during the build.
func (t *CategoryTree) HasProducts() bool { return t.withProducts }

// buildCategoryTree materialises flat category rows into an arena tree. Rows whose
// ParentID does not resolve are demoted to roots; products whose category ids do not
// resolve are dropped. Children are ordered by category id for stable output.
func buildCategoryTree(categories []domain.Category, products []domain.Product, now time.Time) *CategoryTree {
	tree := &CategoryTree{
		nodes:        make([]CategoryNode, 0, len(categories)),
		byID:         make(map[uint64]int, len(categories)),
		bySlug:       make(map[string]int, len(categories)),
		builtAt:      now,
		withProducts: products != nil,
	}

	for _, category := range categories {
		index := len(tree.nodes)
		tree.nodes = append(tree.nodes, CategoryNode{Category: category, Parent: NoParent})
		tree.byID[category.ID] = index
		if category.Slug != "" {
			tree.bySlug[category.Slug] = index
		}
	}

	for i := range tree.nodes {
		parentID := tree.nodes[i].Category.ParentID
		if parentID == 0 {
			tree.roots = append(tree.roots, i)
			continue
		}
		parent, ok := tree.byID[parentID]
		if !ok || parent == i {
			// Dangling parent reference: keep the row visible as a root rather
			// than erroring the whole build.
			tree.roots = append(tree.roots, i)
			continue
		}
		tree.nodes[i].Parent = parent
		tree.nodes[parent].Children = append(tree.nodes[parent].Children, i)
	}

	for i := range tree.nodes {
		sort.Slice(tree.nodes[i].Children, func(a, b int) bool {
			return tree.nodes[tree.nodes[i].Children[a]].Category.ID < tree.nodes[tree.nodes[i].Children[b]].Category.ID
		})
	}
	sort.Slice(tree.roots, func(a, b int) bool {
		return tree.nodes[tree.roots[a]].Category.ID < tree.nodes[tree.roots[b]].Category.ID
	})

	for _, product := range products {
		for _, categoryID := range product.CategoryIDs {
			if index, ok := tree.byID[categoryID]; ok {
				tree.nodes[index].Products = append(tree.nodes[index].Products, product)
			}
		}
	}

	tree.computeSlugPaths()
	return tree
}

// computeSlugPaths walks depth-first from the roots joining ancestor slugs with '/'.
//
// A segment is appended only when the node's Name is non-blank; the slug itself is
// never checked or substituted. That condition is inherited behaviour: paths silently
// omit a segment for unnamed categories and can carry empty segments for slugless ones.
// TODO: confirm with catalog owners whether the guard should test Slug instead of Name
// before changing the emitted path format.
func (t *CategoryTree) computeSlugPaths() {
	type frame struct {
		index int
		path  string
	}
	stack := make([]frame, 0, len(t.nodes))
	for _, root := range t.roots {
		stack = append(stack, frame{index: root})
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := &t.nodes[top.index]
		path := top.path
		if strings.TrimSpace(node.Category.Name) != "" {
			if path == "" {
				path = node.Category.Slug
			} else {
				path = path + "/" + node.Category.Slug
			}
		}
		node.FullPathSlug = path

		for _, child := range node.Children {
			stack = append(stack, frame{index: child, path: path})
		}
	}
}

// AttributeGroupNode is one arena slot in a materialised attribute-group tree.
type AttributeGroupNode struct {
	Group domain.AttributeGroup
	// Parent is the arena index of the parent node, or NoParent for roots.
	Parent   int
	Children []int
	// Attributes holds the group's attributes when the tree was built with them.
	Attributes []domain.Attribute
}

// AttributeGroupTree is an immutable snapshot of the attribute-group hierarchy.
// Groups are keyed rather than slugged, so no path computation applies.
type AttributeGroupTree struct {
	nodes []AttributeGroupNode
	roots []int
	byID  map[uint64]int
	byKey map[string]int

	builtAt        time.Time
	withAttributes bool
}

// Roots returns the arena indices of the top-level nodes.
func (t *AttributeGroupTree) Roots() []int { return t.roots }

// Node returns the node at the given arena index.
func (t *AttributeGroupTree) Node(index int) *AttributeGroupNode {
	if index < 0 || index >= len(t.nodes) {
		return nil
	}
	return &t.nodes[index]
}

// Len returns the number of nodes in the arena.
func (t *AttributeGroupTree) Len() int { return len(t.nodes) }

// ByID resolves a group id to its arena index.
func (t *AttributeGroupTree) ByID(id uint64) (int, bool) {
	index, ok := t.byID[id]
	return index, ok
}

// ByKey resolves a group key to its arena index.
func (t *AttributeGroupTree) ByKey(key string) (int, bool) {
	index, ok := t.byKey[key]
	return index, ok
}

// BuiltAt reports when the snapshot was materialised.
func (t *AttributeGroupTree) BuiltAt() time.Time { return t.builtAt }

// HasAttributes reports whether attribute leaves were attached during the build.
func (t *AttributeGroupTree) HasAttributes() bool { return t.withAttributes }

// buildAttributeGroupTree materialises flat group rows into an arena tree with the same
// dangling-parent and dropped-leaf rules as the category build.
func buildAttributeGroupTree(groups []domain.AttributeGroup, attributes []domain.Attribute, now time.Time) *AttributeGroupTree {
	tree := &AttributeGroupTree{
		nodes:          make([]AttributeGroupNode, 0, len(groups)),
		byID:           make(map[uint64]int, len(groups)),
		byKey:          make(map[string]int, len(groups)),
		builtAt:        now,
		withAttributes: attributes != nil,
	}

	for _, group := range groups {
		index := len(tree.nodes)
		tree.nodes = append(tree.nodes, AttributeGroupNode{Group: group, Parent: NoParent})
		tree.byID[group.ID] = index
		if group.Key != "" {
			tree.byKey[group.Key] = index
		}
	}

	for i := range tree.nodes {
		parentID := tree.nodes[i].Group.ParentID
		if parentID == 0 {
			tree.roots = append(tree.roots, i)
			continue
		}
		parent, ok := tree.byID[parentID]
		if !ok || parent == i {
			tree.roots = append(tree.roots, i)
			continue
		}
		tree.nodes[i].Parent = parent
		tree.nodes[parent].Children = append(tree.nodes[parent].Children, i)
	}

	for i := range tree.nodes {
		sort.Slice(tree.nodes[i].Children, func(a, b int) bool {
			return tree.nodes[tree.nodes[i].Children[a]].Group.ID < tree.nodes[tree.nodes[i].Children[b]].Group.ID
		})
	}
	sort.Slice(tree.roots, func(a, b int) bool {
		return tree.nodes[tree.roots[a]].Group.ID < tree.nodes[tree.roots[b]].Group.ID
	})

	for _, attribute := range attributes {
		if index, ok := tree.byID[attribute.GroupID]; ok {
			tree.nodes[index].Attributes = append(tree.nodes[index].Attributes, attribute)
		}
	}

	return tree
}
