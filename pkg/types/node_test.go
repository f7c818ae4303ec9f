package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tree() *Node {
	root := &Node{NodeID: "r", Name: "root"}
	a := &Node{NodeID: "a", Name: "a", ParentID: "r"}
	b := &Node{NodeID: "b", Name: "b", ParentID: "r"}
	a1 := &Node{NodeID: "a1", Name: "a1", ParentID: "a"}
	a2 := &Node{NodeID: "a2", Name: "a2", ParentID: "a"}
	a.Children = []*Node{a1, a2}
	root.Children = []*Node{a, b}
	root.AdoptChildren()
	return root
}

func TestNodeWalkIsPreOrder(t *testing.T) {
	var seen []string
	tree().Walk(func(n *Node) { seen = append(seen, n.NodeID) })
	assert.Equal(t, []string{"r", "a", "a1", "a2", "b"}, seen)
}

func TestNodeWalkDeepTree(t *testing.T) {
	root := &Node{NodeID: "0"}
	cur := root
	for i := 0; i < 100000; i++ {
		next := &Node{NodeID: "x"}
		cur.Children = []*Node{next}
		cur = next
	}
	count := 0
	root.Walk(func(*Node) { count++ })
	assert.Equal(t, 100001, count)
}

func TestNodeAddToReparents(t *testing.T) {
	root := tree()
	a, _ := root.Find("a")
	b, _ := root.Find("b")
	a2, _ := root.Find("a2")

	a2.AddTo(b)

	assert.Equal(t, "b", a2.ParentID)
	assert.Same(t, b, a2.Parent())
	assert.Len(t, a.Children, 1)
	assert.Equal(t, []*Node{a2}, b.Children)
}

func TestNodeDescendants(t *testing.T) {
	ids := []string{}
	for _, n := range tree().Descendants() {
		ids = append(ids, n.NodeID)
	}
	assert.Equal(t, []string{"a", "a1", "a2", "b"}, ids)
}

func TestNodeCloneIsDeep(t *testing.T) {
	root := tree()
	exp := time.Now()
	root.Expires = &exp
	require.NoError(t, root.Details.Set("k", "v"))
	root.AuthorizedRoles = []string{RoleEditors}

	c := root.Clone()
	c.Children[0].Name = "changed"
	require.NoError(t, c.Details.Set("k", "w"))
	c.AuthorizedRoles[0] = "Other"
	*c.Expires = exp.Add(time.Hour)

	assert.Equal(t, "a", root.Children[0].Name)
	s, _ := root.Details.String("k")
	assert.Equal(t, "v", s)
	assert.Equal(t, RoleEditors, root.AuthorizedRoles[0])
	assert.True(t, root.Expires.Equal(exp))
	assert.Same(t, c, c.Children[0].Parent())
}

func TestNodeSortChildren(t *testing.T) {
	root := &Node{NodeID: "r", Children: []*Node{
		{NodeID: "1", Name: "z", SortOrder: 0},
		{NodeID: "2", Name: "a", SortOrder: 5},
		{NodeID: "3", Name: "b", SortOrder: 0},
	}}
	root.SortChildren()
	assert.Equal(t, "3", root.Children[0].NodeID)
	assert.Equal(t, "1", root.Children[1].NodeID)
	assert.Equal(t, "2", root.Children[2].NodeID)
}
