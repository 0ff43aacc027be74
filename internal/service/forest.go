package service

import "campusbridge/internal/models"

// BuildForest nests a post's flat reply arena. Siblings keep arena order.
// Nodes whose parent is missing or that sit on a parent cycle become roots,
// so the result is always a finite forest.
func BuildForest(replies []*models.Reply) []*models.ReplyNode {
	nodes := make(map[uint]*models.ReplyNode, len(replies))
	parents := make(map[uint]uint, len(replies))
	for _, r := range replies {
		nodes[r.ID] = &models.ReplyNode{Reply: r}
	}
	for _, r := range replies {
		if r.ParentReplyID == nil {
			continue
		}
		if _, ok := nodes[*r.ParentReplyID]; ok {
			parents[r.ID] = *r.ParentReplyID
		}
	}
	onCycle := cycleMembers(parents)

	roots := make([]*models.ReplyNode, 0)
	for _, r := range replies {
		node := nodes[r.ID]
		parentID, ok := parents[r.ID]
		if !ok || onCycle[r.ID] {
			roots = append(roots, node)
			continue
		}
		nodes[parentID].Children = append(nodes[parentID].Children, node)
	}
	return roots
}

// cycleMembers returns every id that lies on a cycle of the parent relation.
func cycleMembers(parents map[uint]uint) map[uint]bool {
	const (
		unvisited = iota
		inPath
		done
	)
	state := make(map[uint]int, len(parents))
	members := make(map[uint]bool)

	for start := range parents {
		if state[start] != unvisited {
			continue
		}
		var path []uint
		id, ok := start, true
		for ok && state[id] == unvisited {
			state[id] = inPath
			path = append(path, id)
			id, ok = parents[id]
		}
		if ok && state[id] == inPath {
			for i := len(path) - 1; i >= 0; i-- {
				members[path[i]] = true
				if path[i] == id {
					break
				}
			}
		}
		for _, p := range path {
			state[p] = done
		}
	}
	return members
}

// CountNodes returns the number of nodes in a forest.
func CountNodes(forest []*models.ReplyNode) int {
	n := 0
	stack := append([]*models.ReplyNode(nil), forest...)
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n++
		stack = append(stack, node.Children...)
	}
	return n
}
