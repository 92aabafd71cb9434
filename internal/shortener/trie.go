package shortener

type suffixNode struct {
	children map[string]*suffixNode
	terminal bool
}

func newSuffixNode() *suffixNode {
	return &suffixNode{children: make(map[string]*suffixNode)}
}

func (n *suffixNode) add(domain string) {
	labels := splitLabels(domain)
	if len(labels) == 0 {
		return
	}
	cur := n
	for i := len(labels) - 1; i >= 0; i-- {
		label := labels[i]
		child, ok := cur.children[label]
		if !ok {
			child = newSuffixNode()
			cur.children[label] = child
		}
		cur = child
	}
	cur.terminal = true
}

func (n *suffixNode) match(host string) bool {
	labels := splitLabels(host)
	if len(labels) == 0 {
		return false
	}
	cur := n
	for i := len(labels) - 1; i >= 0; i-- {
		child, ok := cur.children[labels[i]]
		if !ok {
			return false
		}
		cur = child
		if cur.terminal {
			return true
		}
	}
	return cur.terminal
}
