package repository

// replyLink is the (id, parent) projection of a reply used to walk a tree.
type replyLink struct {
	ID            uint
	ParentReplyID *uint
}

// collectSubtree returns rootID followed by every descendant reachable
// through parent links, breadth first. A visited set stops on cycles.
func collectSubtree(links []replyLink, rootID uint) []uint {
	children := make(map[uint][]uint, len(links))
	for _, l := range links {
		if l.ParentReplyID != nil {
			children[*l.ParentReplyID] = append(children[*l.ParentReplyID], l.ID)
		}
	}

	visited := map[uint]bool{rootID: true}
	order := []uint{rootID}
	for i := 0; i < len(order); i++ {
		for _, child := range children[order[i]] {
			if visited[child] {
				continue
			}
			visited[child] = true
			order = append(order, child)
		}
	}
	return order
}
