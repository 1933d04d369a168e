package assemble

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jherbrandson/gpt-helper/pkg/blacklist"
	"github.com/jherbrandson/gpt-helper/pkg/remote"

	"go.uber.org/zap"
)

// treeNode is one entry in a directory tree being rendered.
type treeNode struct {
	name     string
	dir      bool
	children map[string]*treeNode
}

func newTreeNode(name string, dir bool) *treeNode {
	return &treeNode{name: name, dir: dir, children: make(map[string]*treeNode)}
}

func (n *treeNode) child(name string, dir bool) *treeNode {
	if c, ok := n.children[name]; ok {
		return c
	}
	c := newTreeNode(name, dir)
	n.children[name] = c
	return c
}

// render produces the connector-prefixed lines for a node's subtree.
// Directories sort before files, each group alphabetically.
func (n *treeNode) render(prefix string) []string {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := n.children[names[i]], n.children[names[j]]
		if a.dir != b.dir {
			return a.dir
		}
		return strings.ToLower(a.name) < strings.ToLower(b.name)
	})

	var out []string
	for i, name := range names {
		child := n.children[name]
		connector, extension := "├── ", "│   "
		if i == len(names)-1 {
			connector, extension = "└── ", "    "
		}
		label := child.name
		if child.dir {
			label += "/"
		}
		out = append(out, prefix+connector+label)
		out = append(out, child.render(prefix+extension)...)
	}
	return out
}

// LocalTree renders a local directory tree rooted at root, excluding
// blacklisted paths. The first line is the root path itself.
func LocalTree(root string, bl *blacklist.List, logger *zap.Logger) ([]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	rootNode := newTreeNode("", true)
	if err := collectLocal(root, root, bl, rootNode, logger); err != nil {
		return nil, err
	}
	return append([]string{root}, rootNode.render("")...), nil
}

func collectLocal(dir, root string, bl *blacklist.List, node *treeNode, logger *zap.Logger) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if dir == root {
			return fmt.Errorf("failed to read directory %s: %w", dir, err)
		}
		logger.Warn("Skipping unreadable directory", zap.String("dir", dir), zap.Error(err))
		return nil
	}

	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		rel, _ := filepath.Rel(root, full)
		if bl != nil && bl.Matches(rel) {
			continue
		}
		child := node.child(entry.Name(), entry.IsDir())
		if entry.IsDir() {
			if err := collectLocal(full, root, bl, child, logger); err != nil {
				return err
			}
		}
	}
	return nil
}

// RemoteTree renders a remote listing (paths relative to root) in the same
// shape as LocalTree.
func RemoteTree(root string, entries []remote.TreeEntry, bl *blacklist.List) []string {
	rootNode := newTreeNode("", true)
	for _, entry := range entries {
		if bl != nil && bl.Matches(entry.Path) {
			continue
		}
		parts := strings.Split(path.Clean(entry.Path), "/")
		node := rootNode
		for i, part := range parts {
			// Intermediate components are directories regardless of the
			// leaf's type.
			isDir := entry.IsDir || i < len(parts)-1
			node = node.child(part, isDir)
		}
	}
	return append([]string{root}, rootNode.render("")...)
}
