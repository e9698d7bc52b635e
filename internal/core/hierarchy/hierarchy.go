package hierarchy

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jadeengine/jade/internal/component"
	"github.com/jadeengine/jade/internal/core/ecs"
	"go.uber.org/zap"
)

var (
	ErrInvalidEntity = errors.New("hierarchy: invalid entity")
	ErrSelfParent    = errors.New("hierarchy: entity cannot be its own parent")
	ErrCycle         = errors.New("hierarchy: child is an ancestor of parent")
)

// Node links an entity into its parent's child list. Children form a doubly
// linked list; Parent.LastChild is the most recently added child and
// LeftSibling walks back towards the first.
type Node struct {
	Parent       ecs.EntityID
	LastChild    ecs.EntityID
	LeftSibling  ecs.EntityID
	RightSibling ecs.EntityID
}

// System maintains parent/child links stored in a Node pool. The Name pool
// is optional and only used for tree dumps.
// Single-goroutine access only (game loop).
type System struct {
	nodes *ecs.ComponentPool[Node]
	names *ecs.ComponentPool[component.Name]
	log   *zap.Logger
}

func New(nodes *ecs.ComponentPool[Node], names *ecs.ComponentPool[component.Name], log *zap.Logger) *System {
	if log == nil {
		log = zap.NewNop()
	}
	return &System{nodes: nodes, names: names, log: log}
}

func (s *System) node(e ecs.EntityID) (Node, bool) {
	n, err := s.nodes.Value(e)
	return n, err == nil
}

func (s *System) put(e ecs.EntityID, n Node) error {
	return s.nodes.Upsert(e, n)
}

// relink overwrites the Node of an entity already linked into the tree.
// Set does not take the pool lock, so relinking is safe inside an
// iteration. A missing Node means the entity was stripped without Detach;
// there is nothing left to fix up and no Node is recreated for it.
func (s *System) relink(e ecs.EntityID, n Node) {
	if err := s.nodes.Set(e, n); err != nil {
		s.log.Debug("relink skipped", zap.Uint32("entity", uint32(e)), zap.Error(err))
	}
}

// AddChild appends child to parent's child list, detaching it from any
// previous parent first. Entities without a Node get one. The call is
// rejected without mutation when parent == child or when child is parent
// itself or one of its ancestors; the check walks the parent chain, so it
// costs O(depth).
func (s *System) AddChild(parent, child ecs.EntityID) error {
	if err := s.checkAttach(parent, child); err != nil {
		s.log.Warn("add child rejected",
			zap.Uint32("parent", uint32(parent)),
			zap.Uint32("child", uint32(child)),
			zap.Error(err),
		)
		return fmt.Errorf("add child %d to %d: %w", child, parent, err)
	}

	if !s.nodes.Has(parent) {
		if err := s.put(parent, Node{}); err != nil {
			return fmt.Errorf("attach node to %d: %w", parent, err)
		}
	}
	if !s.nodes.Has(child) {
		if err := s.put(child, Node{}); err != nil {
			return fmt.Errorf("attach node to %d: %w", child, err)
		}
	}

	s.RemoveChild(child)

	p, _ := s.node(parent)
	c, _ := s.node(child)
	if p.LastChild != ecs.InvalidEntity {
		last, _ := s.node(p.LastChild)
		last.RightSibling = child
		if err := s.put(p.LastChild, last); err != nil {
			return err
		}
		c.LeftSibling = p.LastChild
	}
	c.Parent = parent
	p.LastChild = child
	if err := s.put(child, c); err != nil {
		return err
	}
	return s.put(parent, p)
}

func (s *System) checkAttach(parent, child ecs.EntityID) error {
	switch {
	case parent == ecs.InvalidEntity || child == ecs.InvalidEntity:
		return ErrInvalidEntity
	case parent == child:
		return ErrSelfParent
	case s.IsAncestor(child, parent):
		return ErrCycle
	}
	return nil
}

// IsAncestor reports whether a appears on e's parent chain.
func (s *System) IsAncestor(a, e ecs.EntityID) bool {
	n, ok := s.node(e)
	for ok && n.Parent != ecs.InvalidEntity {
		if n.Parent == a {
			return true
		}
		n, ok = s.node(n.Parent)
	}
	return false
}

// RemoveChild splices child out of its parent's list and clears its parent
// and sibling links. It reports false, doing nothing, when child has no
// parent.
func (s *System) RemoveChild(child ecs.EntityID) bool {
	c, ok := s.node(child)
	if !ok || c.Parent == ecs.InvalidEntity {
		return false
	}
	p, _ := s.node(c.Parent)

	switch {
	case c.LeftSibling != ecs.InvalidEntity && c.RightSibling != ecs.InvalidEntity:
		left, _ := s.node(c.LeftSibling)
		right, _ := s.node(c.RightSibling)
		left.RightSibling = c.RightSibling
		right.LeftSibling = c.LeftSibling
		s.relink(c.LeftSibling, left)
		s.relink(c.RightSibling, right)
	case c.RightSibling != ecs.InvalidEntity:
		// First child: the parent's LastChild is further right, so untouched.
		right, _ := s.node(c.RightSibling)
		right.LeftSibling = ecs.InvalidEntity
		s.relink(c.RightSibling, right)
	case c.LeftSibling != ecs.InvalidEntity:
		left, _ := s.node(c.LeftSibling)
		left.RightSibling = ecs.InvalidEntity
		s.relink(c.LeftSibling, left)
		p.LastChild = c.LeftSibling
	default:
		p.LastChild = ecs.InvalidEntity
	}
	s.relink(c.Parent, p)

	c.Parent = ecs.InvalidEntity
	c.LeftSibling = ecs.InvalidEntity
	c.RightSibling = ecs.InvalidEntity
	s.relink(child, c)
	return true
}

// Children returns parent's children, most recently added first.
// parent must have a Node; an entity without one has no children.
func (s *System) Children(parent ecs.EntityID) []ecs.EntityID {
	p, ok := s.node(parent)
	if !ok {
		return nil
	}
	var out []ecs.EntityID
	for cur := p.LastChild; cur != ecs.InvalidEntity; {
		out = append(out, cur)
		n, _ := s.node(cur)
		cur = n.LeftSibling
	}
	return out
}

// Parent returns e's parent, or InvalidEntity.
func (s *System) Parent(e ecs.EntityID) ecs.EntityID {
	n, _ := s.node(e)
	return n.Parent
}

// Roots returns every entity with a Node and no parent, in storage order.
func (s *System) Roots() []ecs.EntityID {
	var out []ecs.EntityID
	s.nodes.Each(func(e ecs.EntityID, n *Node) {
		if n.Parent == ecs.InvalidEntity {
			out = append(out, e)
		}
	})
	return out
}

// Detach removes e from its parent and orphans all of its children, leaving
// e's Node with no links. It returns the orphaned children.
func (s *System) Detach(e ecs.EntityID) []ecs.EntityID {
	s.RemoveChild(e)
	children := s.Children(e)
	for _, c := range children {
		s.RemoveChild(c)
	}
	return children
}

// Walk visits root and its descendants depth first, parents before
// children, children in Children order. Returning false from fn skips the
// entity's subtree. An explicit stack keeps deep trees off the call stack.
func (s *System) Walk(root ecs.EntityID, fn func(e ecs.EntityID, depth int) bool) {
	type frame struct {
		e     ecs.EntityID
		depth int
	}
	stack := []frame{{root, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(f.e, f.depth) {
			continue
		}
		children := s.Children(f.e)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{children[i], f.depth + 1})
		}
	}
}

// NameOf returns e's Name, or a placeholder when there is none.
func (s *System) NameOf(e ecs.EntityID) string {
	if s.names != nil {
		if n, err := s.names.Value(e); err == nil && n.Value != "" {
			return n.Value
		}
	}
	return "<unnamed>"
}

// PrintTree writes an indented dump of root's subtree to w.
func (s *System) PrintTree(w io.Writer, root ecs.EntityID) error {
	var err error
	s.Walk(root, func(e ecs.EntityID, depth int) bool {
		if err != nil {
			return false
		}
		_, err = fmt.Fprintf(w, "%s%s [%d]\n", strings.Repeat("  ", depth), s.NameOf(e), e)
		return err == nil
	})
	return err
}
