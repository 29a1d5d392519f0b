package docx

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// FlattenText extracts the plain text of the main document body: every
// paragraph's run text concatenated, paragraphs separated by newlines.
// Tables are walked in document order so cell text appears in the output.
//
// This is the text shown to the user and scanned for placeholder candidates.
// Positions reported by the scanner are offsets into this string, not into
// the raw XML.
func FlattenText(pkg *Package) (string, error) {
	xml, err := pkg.PartText("word/document.xml")
	if err != nil {
		return "", err
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromString(xml); err != nil {
		return "", fmt.Errorf("parse word/document.xml: %w", err)
	}

	root := doc.Root()
	if root == nil {
		return "", nil
	}

	var paragraphs []string
	collectParagraphs(root, &paragraphs)

	return strings.Join(paragraphs, "\n"), nil
}

// collectParagraphs walks the element tree and records the text of each
// paragraph it finds, recursing through tables and any other structural
// containers.
func collectParagraphs(elem *etree.Element, out *[]string) {
	for _, child := range elem.ChildElements() {
		if child.Tag == "p" {
			*out = append(*out, paragraphText(child))
			continue
		}

		collectParagraphs(child, out)
	}
}

// paragraphText concatenates the text of all w:r/w:t elements in a paragraph.
// Runs can sit inside wrapper elements (w:hyperlink, w:ins and the like), so
// non-run children are descended into rather than skipped. Tabs become a
// single space so adjacent labels do not fuse together.
func paragraphText(p *etree.Element) string {
	var sb strings.Builder
	appendRunText(p, &sb)

	return sb.String()
}

func appendRunText(elem *etree.Element, sb *strings.Builder) {
	for _, child := range elem.ChildElements() {
		if child.Tag != "r" {
			appendRunText(child, sb)
			continue
		}

		for _, t := range child.ChildElements() {
			switch t.Tag {
			case "t":
				sb.WriteString(t.Text())
			case "tab":
				sb.WriteString(" ")
			}
		}
	}
}
