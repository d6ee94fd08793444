package entity

import "github.com/google/uuid"

// AssembleThread builds the nested comment forest for one viewer out of a
// flat, creation-ordered record set plus the viewer's liked-comment overlay.
//
// The input rows are never mutated: they may be shared (cached) across
// viewers, so every node in the returned forest is a copy with LikedByUser,
// IsMine and Children filled in. Roots keep the input's chronological order,
// as do each node's children.
//
// A reply whose parent is missing from the set (the parent was deleted after
// the reply was written) is demoted to a root rather than dropped, so the
// forest always contains exactly one node per input row.
func AssembleThread(flat []*Comment, liked map[int64]struct{}, viewerID uuid.UUID) []*Comment {
	byID := make(map[int64]*Comment, len(flat))
	nodes := make([]*Comment, 0, len(flat))

	for _, row := range flat {
		node := *row
		node.Children = nil
		_, node.LikedByUser = liked[node.ID]
		node.IsMine = node.UserID == viewerID
		byID[node.ID] = &node
		nodes = append(nodes, &node)
	}

	roots := make([]*Comment, 0, len(nodes))
	for _, node := range nodes {
		if node.ParentID != nil {
			if parent, ok := byID[*node.ParentID]; ok {
				parent.Children = append(parent.Children, node)

				continue
			}
		}
		roots = append(roots, node)
	}

	return roots
}

// CountThread returns the total number of nodes in a comment forest.
func CountThread(roots []*Comment) int {
	total := 0
	for _, root := range roots {
		total += 1 + CountThread(root.Children)
	}

	return total
}
