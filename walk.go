package pegls

// Handlers maps node kinds to the function run when Walk reaches a node of
// that kind. A handler replaces the default descent; call WalkChildren from
// it to keep going.
type Handlers map[Kind]func(n Node)

// Walk visits n depth-first in source order. Nodes without a handler are
// descended into.
func Walk(n Node, h Handlers) {
	if n == nil {
		return
	}

	if fn, ok := h[n.Kind()]; ok {
		fn(n)

		return
	}

	WalkChildren(n, h)
}

// WalkChildren walks every child of n.
func WalkChildren(n Node, h Handlers) {
	for _, c := range Children(n) {
		Walk(c, h)
	}
}

// Children returns the direct child nodes of n in source order.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *Grammar:
		out := make([]Node, 0, len(n.Rules))
		for _, r := range n.Rules {
			out = append(out, r)
		}

		return out
	case *Rule:
		return nonNil(n.Expression)
	case *Named:
		return nonNil(n.Expression)
	case *Choice:
		return n.Alternatives
	case *Action:
		return nonNil(n.Expression)
	case *Sequence:
		return n.Elements
	case *Labeled:
		return nonNil(n.Expression)
	case *Text:
		return nonNil(n.Expression)
	case *SimpleAnd:
		return nonNil(n.Expression)
	case *SimpleNot:
		return nonNil(n.Expression)
	case *Optional:
		return nonNil(n.Expression)
	case *ZeroOrMore:
		return nonNil(n.Expression)
	case *OneOrMore:
		return nonNil(n.Expression)
	case *Repeated:
		return nonNil(n.Expression, n.Delimiter)
	case *Group:
		return nonNil(n.Expression)
	}

	return nil
}

// Inner returns the single wrapped expression of a wrapper node, or nil for
// leaves and nodes with several children.
func Inner(n Node) Node {
	switch n := n.(type) {
	case *Rule:
		return n.Expression
	case *Named:
		return n.Expression
	case *Action:
		return n.Expression
	case *Labeled:
		return n.Expression
	case *Text:
		return n.Expression
	case *SimpleAnd:
		return n.Expression
	case *SimpleNot:
		return n.Expression
	case *Optional:
		return n.Expression
	case *ZeroOrMore:
		return n.Expression
	case *OneOrMore:
		return n.Expression
	case *Repeated:
		return n.Expression
	case *Group:
		return n.Expression
	}

	return nil
}

func nonNil(nodes ...Node) []Node {
	out := nodes[:0]

	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}

	return out
}
