package transform

import "github.com/matzehuels/stratum/pkg/dag"

func dagNode(i int) dag.NodeID { return dag.NodeID(i) }
func dagLink(i int) dag.LinkID { return dag.LinkID(i) }
