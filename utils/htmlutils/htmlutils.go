// Copyright 2025 The VitalFlow Authors
// SPDX-License-Identifier: Apache-2.0

// Package htmlutils inspects rendered HTML pages.
package htmlutils

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// AsNode parses an io.Reader as an HTML node.
func AsNode(r io.Reader) (*html.Node, error) {
	n, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing body as HTML: %w", err)
	}

	return n, nil
}

// FindByID returns the first element below n whose id is id.
func FindByID(n *html.Node, id string) *html.Node {
	if n == nil {
		return nil
	}

	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				return n
			}
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := FindByID(c, id); found != nil {
			return found
		}
	}

	return nil
}

// Text returns the text below n with runs of whitespace collapsed.
func Text(n *html.Node) string {
	if n == nil {
		return ""
	}

	var sb strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')

			return
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return strings.Join(strings.Fields(sb.String()), " ")
}

// TableRows returns the cell texts of every tbody row below table.
func TableRows(table *html.Node) [][]string {
	var out [][]string

	var walk func(*html.Node, bool)
	walk = func(n *html.Node, inBody bool) {
		if n.Type == html.ElementNode && n.Data == "tbody" {
			inBody = true
		}

		if inBody && n.Type == html.ElementNode && n.Data == "tr" {
			var cells []string

			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && c.Data == "td" {
					cells = append(cells, Text(c))
				}
			}

			out = append(out, cells)

			return
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inBody)
		}
	}

	if table != nil {
		walk(table, false)
	}

	return out
}
