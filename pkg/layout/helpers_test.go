package layout

// chain builds input nodes for ids with each edge listed on both endpoints.
// Nodes are returned in ids order.
func chain(ids []string, edges ...[2]string) []InputNode {
	nodes := make([]InputNode, len(ids))
	index := make(map[string]int, len(ids))
	for i, id := range ids {
		nodes[i] = InputNode{ID: id}
		index[id] = i
	}
	for _, e := range edges {
		r := InputRelation{SourceID: e[0], TargetID: e[1]}
		if i, ok := index[e[0]]; ok {
			nodes[i].DownRelations = append(nodes[i].DownRelations, r)
		}
		if e[0] == e[1] {
			continue
		}
		if i, ok := index[e[1]]; ok {
			nodes[i].UpRelations = append(nodes[i].UpRelations, r)
		}
	}
	return nodes
}

func ids(nodes []OutputNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}
