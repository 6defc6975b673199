// Copyright 2026 SAR Project
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package drugscom

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// htmlNode aliases the x/net/html node type so callers of the connector
// never import the parser package directly.
type htmlNode = html.Node

func parseHTML(body []byte) (*htmlNode, error) {
	return html.Parse(bytes.NewReader(body))
}

// findAnchorHref returns the href of the first <a> whose href contains
// the given substring, or "" when none exists.
func findAnchorHref(root *htmlNode, substring string) string {
	var href string
	walk(root, func(n *htmlNode) bool {
		if n.Type == html.ElementNode && n.Data == "a" {
			if v := attr(n, "href"); strings.Contains(v, substring) {
				href = v
				return false
			}
		}
		return true
	})
	return href
}

// interactionListEntries collects the anchor texts of every list item
// under <ul> elements carrying the "interactions" class.
func interactionListEntries(root *htmlNode) []string {
	var names []string
	walk(root, func(n *htmlNode) bool {
		if n.Type == html.ElementNode && n.Data == "ul" && hasClass(n, "interactions") {
			for li := n.FirstChild; li != nil; li = li.NextSibling {
				if li.Type != html.ElementNode || li.Data != "li" {
					continue
				}
				if a := firstElement(li, "a"); a != nil {
					if text := strings.TrimSpace(nodeText(a)); text != "" {
						names = append(names, text)
					}
				}
			}
		}
		return true
	})
	return names
}

// findNodeByClass returns the first element with the given tag carrying
// the given class.
func findNodeByClass(root *htmlNode, tag, class string) *htmlNode {
	var found *htmlNode
	walk(root, func(n *htmlNode) bool {
		if n.Type == html.ElementNode && n.Data == tag && hasClass(n, class) {
			found = n
			return false
		}
		return true
	})
	return found
}

// nodeText extracts the text content of a node: every text node trimmed,
// empties dropped, joined by newlines.
func nodeText(n *htmlNode) string {
	var parts []string
	walk(n, func(c *htmlNode) bool {
		if c.Type == html.TextNode {
			if text := strings.TrimSpace(c.Data); text != "" {
				parts = append(parts, text)
			}
		}
		return true
	})
	return strings.Join(parts, "\n")
}

// walk traverses the tree depth-first. The visitor returns false to stop.
func walk(n *htmlNode, visit func(*htmlNode) bool) bool {
	if !visit(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, visit) {
			return false
		}
	}
	return true
}

func attr(n *htmlNode, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *htmlNode, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func firstElement(n *htmlNode, tag string) *htmlNode {
	var found *htmlNode
	walk(n, func(c *htmlNode) bool {
		if c != n && c.Type == html.ElementNode && c.Data == tag {
			found = c
			return false
		}
		return true
	})
	return found
}
