package layout

import "github.com/matzehuels/stratum/pkg/errors"

// SeparateComponents partitions nodes into connected components of the
// undirected relation graph, in order of first appearance. Only the first
// node with a given ID takes part; relations to unknown IDs are ignored.
//
// Components are discovered from each node's own relation lists. When a
// relation is listed by only one endpoint, a walk can reach a node that an
// earlier walk already assigned to another component; the input is then
// inconsistent and an [errors.ErrCodeGraphInconsistent] error is returned.
func SeparateComponents(nodes []InputNode) ([][]InputNode, error) {
	const unassigned = -1

	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		if n.ID == "" {
			continue
		}
		if _, ok := index[n.ID]; !ok {
			index[n.ID] = i
		}
	}
	comp := make([]int, len(nodes))
	for i := range comp {
		comp[i] = unassigned
	}

	var components [][]InputNode
	var stack []int
	for i, n := range nodes {
		if n.ID == "" || index[n.ID] != i || comp[i] != unassigned {
			continue
		}
		id := len(components)
		comp[i] = id
		members := []InputNode{n}

		stack = append(stack[:0], i)
		for len(stack) > 0 {
			v := nodes[stack[len(stack)-1]]
			stack = stack[:len(stack)-1]
			for _, rels := range [][]InputRelation{v.UpRelations, v.DownRelations} {
				for _, r := range rels {
					other := r.TargetID
					if other == v.ID {
						other = r.SourceID
					}
					j, ok := index[other]
					if !ok {
						continue
					}
					switch comp[j] {
					case unassigned:
						comp[j] = id
						members = append(members, nodes[j])
						stack = append(stack, j)
					case id:
					default:
						return nil, errors.New(errors.ErrCodeGraphInconsistent,
							"node %q belongs to components %d and %d", other, comp[j], id)
					}
				}
			}
		}
		components = append(components, members)
	}
	return components, nil
}
