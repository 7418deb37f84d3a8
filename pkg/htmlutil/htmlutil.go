package htmlutil

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// TextNodes returns the contents of every text node under `node` in document order.
func TextNodes(node *html.Node) []string {
	var out []string
	walkText(node, func(text string) bool {
		out = append(out, text)
		return true
	})
	return out
}

// FirstText returns the first text node under `node` that is not blank, trimmed.
func FirstText(node *html.Node) (string, bool) {
	var found string
	ok := false
	walkText(node, func(text string) bool {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return true
		}
		found = trimmed
		ok = true
		return false
	})
	return found, ok
}

// FirstSelectionText is FirstText on the first node of a selection.
func FirstSelectionText(sel *goquery.Selection) (string, bool) {
	if sel.Length() == 0 {
		return "", false
	}
	return FirstText(sel.Nodes[0])
}

// walkText calls `fn` with every text node in document order until it returns false.
func walkText(node *html.Node, fn func(text string) bool) bool {
	if node == nil {
		return true
	}
	if node.Type == html.TextNode {
		return fn(node.Data)
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if !walkText(child, fn) {
			return false
		}
	}
	return true
}
