package search

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/UnknownOlympus/aeolus/internal/models"
)

var tagRe = regexp.MustCompile(`</?([a-zA-Z][a-zA-Z0-9]*)(\s[^>]*)?/?>`)

// editorTags are the elements the mobile rich text editor produces.
var editorTags = map[atom.Atom]struct{}{
	atom.A: {}, atom.B: {}, atom.Blockquote: {}, atom.Br: {}, atom.Code: {}, atom.Div: {}, atom.Em: {},
	atom.H1: {}, atom.H2: {}, atom.H3: {}, atom.H4: {}, atom.H5: {}, atom.H6: {}, atom.Hr: {}, atom.I: {},
	atom.Img: {}, atom.Li: {}, atom.Ol: {}, atom.P: {}, atom.Pre: {}, atom.S: {}, atom.Span: {},
	atom.Strong: {}, atom.Sub: {}, atom.Sup: {}, atom.Table: {}, atom.Tbody: {}, atom.Td: {}, atom.Th: {},
	atom.Thead: {}, atom.Tr: {}, atom.U: {}, atom.Ul: {},
}

// BuildSearchableText concatenates, in a fixed order, the task id, title, description, customer name,
// customer phone, location address and location name, skipping empty parts, and normalizes the result.
func BuildSearchableText(task models.Task, customer *models.Customer, location *models.Location) string {
	parts := []string{strconv.FormatInt(task.ID, 10), task.Title}

	if task.Description != nil {
		parts = append(parts, PlainText(*task.Description))
	}
	if customer != nil {
		parts = append(parts, customer.Name, customer.Phone)
	}
	if location != nil {
		parts = append(parts, location.Address, location.Name)
	}

	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}

	return CollapseSpaces(Normalize(strings.Join(kept, " ")))
}

// PlainText returns the text content of a description written in the rich text editor.
// Anything else, including notes that merely contain angle brackets, is returned untouched.
func PlainText(description string) string {
	if !IsRichText(description) {
		return description
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(description))
	if err != nil {
		return description
	}

	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			parts = append(parts, n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}

	return strings.Join(parts, " ")
}

// IsRichText reports whether every tag in description is one the rich text editor emits.
func IsRichText(description string) bool {
	tags := tagRe.FindAllStringSubmatch(description, -1)
	if len(tags) == 0 {
		return false
	}
	for _, tag := range tags {
		if _, ok := editorTags[atom.Lookup([]byte(strings.ToLower(tag[1])))]; !ok {
			return false
		}
	}
	return true
}
