package supernode

// AddContribution exposes addContribution to the external test package.
func (nd *Node) AddContribution(lval []float64, rows []int, contrib []float64, ldc int, rowMap []int) int {
	return nd.addContribution(lval, rows, contrib, ldc, rowMap)
}
