package runtime

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/risor-io/risor/object"

	"github.com/jward/grove/internal/store"
)

// ErrRootExcluded is returned when a prepare script excludes the root node.
var ErrRootExcluded = errors.New("prepare script excluded the root node")

// PrepareResult summarizes what a prepare script changed.
type PrepareResult struct {
	Excluded int // nodes excluded directly (subtrees not counted)
	Renamed  int
}

// edits collects the changes requested by one script run. Nodes are keyed
// by their pre-order index, which is unique even when tokens are not.
type edits struct {
	count    int
	excluded map[int]bool
	renamed  map[int]string
}

// Prepare runs the prepare script at scriptPath over root and returns a new
// tree with the script's exclusions and renames applied. root itself is not
// modified.
//
// Scripts see these globals in addition to log:
//
//	nodes                 list of maps: id, token, guid, name, description,
//	                      project, depth, parent (id of the parent, nil at root)
//	exclude(id)           drop the node and its whole subtree
//	rename(id, name)      replace the node's display name
func (r *Runtime) Prepare(ctx context.Context, scriptPath string, root *store.Node) (*store.Node, PrepareResult, error) {
	src, err := r.LoadScript(scriptPath)
	if err != nil {
		return nil, PrepareResult{}, err
	}
	return r.prepare(ctx, src, scriptPath, root)
}

// PrepareSource is Prepare for inline script source.
func (r *Runtime) PrepareSource(ctx context.Context, source string, root *store.Node) (*store.Node, PrepareResult, error) {
	return r.prepare(ctx, source, "<inline>", root)
}

func (r *Runtime) prepare(ctx context.Context, source, label string, root *store.Node) (*store.Node, PrepareResult, error) {
	if root == nil {
		return nil, PrepareResult{}, fmt.Errorf("runtime: prepare %s: no root node", label)
	}

	index := make(map[*store.Node]int)
	var list []object.Object
	var parents []*store.Node
	root.Walk(func(n *store.Node, depth int) bool {
		id := len(list)
		index[n] = id
		parents = parents[:depth]
		parent := object.Object(object.Nil)
		if depth > 0 {
			parent = object.NewInt(int64(index[parents[depth-1]]))
		}
		parents = append(parents, n)
		list = append(list, nodeToMap(n, id, depth, parent))
		return true
	})

	e := &edits{
		count:    len(list),
		excluded: make(map[int]bool),
		renamed:  make(map[int]string),
	}
	extras := map[string]any{
		"nodes":   object.NewList(list),
		"exclude": makeExcludeFn(e),
		"rename":  makeRenameFn(e),
	}
	if err := r.eval(ctx, source, label, extras); err != nil {
		return nil, PrepareResult{}, err
	}

	if e.excluded[index[root]] {
		return nil, PrepareResult{}, fmt.Errorf("runtime: prepare %s: %w", label, ErrRootExcluded)
	}
	out := applyEdits(root, index, e)
	return out, PrepareResult{Excluded: len(e.excluded), Renamed: len(e.renamed)}, nil
}

// applyEdits rebuilds the tree without excluded subtrees and with renames
// applied.
func applyEdits(n *store.Node, index map[*store.Node]int, e *edits) *store.Node {
	id := index[n]
	if e.excluded[id] {
		return nil
	}
	out := n.WithoutChildren()
	if name, ok := e.renamed[id]; ok {
		out.Name = name
	}
	for _, c := range n.Children {
		if kept := applyEdits(c, index, e); kept != nil {
			out.Children = append(out.Children, kept)
		}
	}
	return out
}

func nodeToMap(n *store.Node, id, depth int, parent object.Object) object.Object {
	return object.NewMap(map[string]object.Object{
		"id":          object.NewInt(int64(id)),
		"token":       object.NewInt(int64(n.Token)),
		"guid":        object.NewString(string(n.GUID)),
		"name":        object.NewString(n.Name),
		"description": object.NewString(n.Description),
		"project":     object.NewBool(n.Project),
		"depth":       object.NewInt(int64(depth)),
		"parent":      parent,
	})
}

// makeExcludeFn creates "exclude".
//
// exclude(id) → nil
func makeExcludeFn(e *edits) *object.Builtin {
	return object.NewBuiltin("exclude", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("exclude", 1, len(args))
		}
		id, err := toNodeID(args[0], e.count)
		if err != nil {
			return object.Errorf("exclude: %v", err)
		}
		e.excluded[id] = true
		return object.Nil
	})
}

// makeRenameFn creates "rename".
//
// rename(id, name) → nil
func makeRenameFn(e *edits) *object.Builtin {
	return object.NewBuiltin("rename", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("rename", 2, len(args))
		}
		id, err := toNodeID(args[0], e.count)
		if err != nil {
			return object.Errorf("rename: %v", err)
		}
		name, err := toString(args[1])
		if err != nil {
			return object.Errorf("rename: %v", err)
		}
		if name == "" {
			return object.Errorf("rename: name must not be empty")
		}
		e.renamed[id] = name
		return object.Nil
	})
}

func toNodeID(obj object.Object, count int) (int, error) {
	v, err := toInt64(obj)
	if err != nil {
		return 0, err
	}
	if v < 0 || v >= int64(count) {
		return 0, fmt.Errorf("node id %d out of range [0, %d)", v, count)
	}
	return int(v), nil
}

func toInt64(obj object.Object) (int64, error) {
	if i, ok := obj.(*object.Int); ok {
		return i.Value(), nil
	}
	if f, ok := obj.(*object.Float); ok {
		v := f.Value()
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("expected integer, got %v", v)
		}
		return int64(v), nil
	}
	return 0, fmt.Errorf("expected int, got %s", obj.Type())
}

func toString(obj object.Object) (string, error) {
	if s, ok := obj.(*object.String); ok {
		return s.Value(), nil
	}
	return "", fmt.Errorf("expected string, got %s", obj.Type())
}
