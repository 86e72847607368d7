// Package caoxml assembles the legacy CAO-Faktura XML documents from
// loosely shaped shop API records.
package caoxml

import (
	"github.com/beevik/etree"
)

// NewDocument creates a document with an XML declaration and the given
// root element.
func NewDocument(rootTag string) (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement(rootTag)
	return doc, root
}

// Serialize renders the document with the declaration included.
// Element text is escaped by the writer, callers pass raw strings.
func Serialize(doc *etree.Document) (string, error) {
	doc.Indent(2)
	return doc.WriteToString()
}

// ErrorDocument renders the minimal error reply the legacy client
// understands.
func ErrorDocument(msg string) string {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	doc.CreateElement("ERROR").SetText(msg)
	out, err := doc.WriteToString()
	if err != nil {
		return "<ERROR/>"
	}
	return out
}

func addChild(p *etree.Element, tag, text string) *etree.Element {
	el := p.CreateElement(tag)
	if text != "" {
		el.SetText(text)
	}
	return el
}
