package service

import (
	"testing"

	"campusbridge/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func replyAt(id uint, parent uint) *models.Reply {
	r := &models.Reply{ID: id, Content: "r"}
	if parent != 0 {
		r.ParentReplyID = &parent
	}
	return r
}

func shape(nodes []*models.ReplyNode) map[uint][]uint {
	out := map[uint][]uint{}
	stack := append([]*models.ReplyNode(nil), nodes...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		children := []uint{}
		for _, c := range n.Children {
			children = append(children, c.ID)
		}
		out[n.ID] = children
		stack = append(stack, n.Children...)
	}
	return out
}

func TestBuildForest(t *testing.T) {
	forest := BuildForest([]*models.Reply{
		replyAt(1, 0),
		replyAt(2, 1),
		replyAt(3, 0),
		replyAt(4, 2),
		replyAt(5, 1),
	})
	require.Len(t, forest, 2)
	assert.Equal(t, uint(1), forest[0].ID)
	assert.Equal(t, uint(3), forest[1].ID)
	assert.Equal(t, map[uint][]uint{1: {2, 5}, 2: {4}, 3: {}, 4: {}, 5: {}}, shape(forest))
	assert.Equal(t, 5, CountNodes(forest))
}

func TestBuildForest_DanglingAndCycles(t *testing.T) {
	forest := BuildForest([]*models.Reply{
		replyAt(1, 99), // parent not in this post
		replyAt(2, 3),
		replyAt(3, 2),
		replyAt(4, 3),
		replyAt(5, 5),
	})

	roots := []uint{}
	for _, n := range forest {
		roots = append(roots, n.ID)
	}
	assert.Equal(t, []uint{1, 2, 3, 5}, roots)
	assert.Equal(t, []uint{4}, shape(forest)[3])
	assert.Equal(t, 5, CountNodes(forest), "every node appears exactly once")
}

func TestBuildForest_DeepChain(t *testing.T) {
	var replies []*models.Reply
	for i := uint(1); i <= 5000; i++ {
		replies = append(replies, replyAt(i, i-1))
	}
	forest := BuildForest(replies)
	require.Len(t, forest, 1)
	assert.Equal(t, 5000, CountNodes(forest))
}
