package feedxml

import (
	"strings"

	"github.com/beevik/etree"
)

// Declaration is written at the top of every serialized document.
const Declaration = `<?xml version="1.0" encoding="UTF-8"?>`

// Child returns the first unprefixed element child named tag.
func Child(e *etree.Element, tag string) *etree.Element {
	for _, c := range e.ChildElements() {
		if c.Space == "" && c.Tag == tag {
			return c
		}
	}
	return nil
}

// Children returns every unprefixed element child named tag.
func Children(e *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	for _, c := range e.ChildElements() {
		if c.Space == "" && c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// SetCData replaces the children of e with data in CDATA form. A "]]>"
// inside data is split across two sections.
func SetCData(e *etree.Element, data string) {
	for len(e.Child) > 0 {
		e.RemoveChildAt(len(e.Child) - 1)
	}
	for _, section := range cdataSections(data) {
		e.CreateCData(section)
	}
}

func cdataSections(data string) []string {
	parts := strings.Split(data, "]]>")
	for i := 0; i < len(parts)-1; i++ {
		parts[i] += "]]"
		parts[i+1] = ">" + parts[i+1]
	}
	return parts
}

// Serialize writes root as a UTF-8 document with a fresh declaration.
func Serialize(root *etree.Element) ([]byte, error) {
	out := etree.NewDocument()
	out.WriteSettings.CanonicalText = true
	out.WriteSettings.CanonicalAttrVal = true

	out.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	out.CreateText("\n")
	out.SetRoot(root)
	out.CreateText("\n")
	return out.WriteToBytes()
}
