package algo

import (
	"github.com/ohowland/dfl_launcher/internal/pkg/network"
)

// SlackNodeAlgorithm elects the non fictitious node with the highest nominal
// voltage, ties broken by the number of neighbours. The first node wins a
// complete tie.
type SlackNodeAlgorithm struct {
	slack *network.Node
}

func NewSlackNodeAlgorithm() *SlackNodeAlgorithm {
	return &SlackNodeAlgorithm{}
}

// SlackNode returns the elected node, false when every node was fictitious.
func (a *SlackNodeAlgorithm) SlackNode() (*network.Node, bool) {
	return a.slack, a.slack != nil
}

func (a *SlackNodeAlgorithm) Apply(node *network.Node) error {
	if node.Fictitious {
		return nil
	}
	if a.slack == nil {
		a.slack = node
		return nil
	}
	if a.slack.NominalVoltage < node.NominalVoltage ||
		(a.slack.NominalVoltage == node.NominalVoltage && len(a.slack.Neighbours) < len(node.Neighbours)) {
		a.slack = node
	}
	return nil
}
