package docsite

import (
	"strings"

	"golang.org/x/net/html"
)

func walk(n *html.Node, visit func(*html.Node) bool) {
	if !visit(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// elementsWithClass returns the elements below root carrying the given
// class, in document order. Matching elements are not descended into,
// so nested matches collapse to the outermost.
func elementsWithClass(root *html.Node, class string) []*html.Node {
	var nodes []*html.Node
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && hasClass(n, class) {
			nodes = append(nodes, n)
			return false
		}
		return true
	})
	return nodes
}

// linkedTypes extracts the type names linked below root. A link counts
// as a type link when its href is the linked name's own page, which
// filters out anchors, section links and external references.
func linkedTypes(root *html.Node, slug func(string) string) []string {
	var names []string
	walk(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != "a" {
			return true
		}
		name := strings.TrimSpace(nodeText(n))
		if name != "" && attr(n, "href") == slug(name)+".html" {
			names = append(names, name)
		}
		return false
	})
	return names
}

// firstLinkText returns the text of the first link below root.
func firstLinkText(root *html.Node) (string, bool) {
	var text string
	var found bool
	walk(root, func(n *html.Node) bool {
		if found {
			return false
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			text = strings.TrimSpace(nodeText(n))
			found = true
			return false
		}
		return true
	})
	return text, found
}

// nodeText returns the concatenated text content below root.
func nodeText(root *html.Node) string {
	var b strings.Builder
	walk(root, func(n *html.Node) bool {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		return true
	})
	return b.String()
}
