package convert

import (
	"bytes"
	"encoding/xml"
)

// visioCoreNS is the namespace of the VDX (Visio 2003 XML) format.
const visioCoreNS = "http://schemas.microsoft.com/visio/2003/core"

// Document is the canonical VDX output document. Field order is fixed so
// the emitted XML is deterministic.
type Document struct {
	XMLName    xml.Name           `xml:"VisioDocument"`
	Xmlns      string             `xml:"xmlns,attr"`
	Properties DocumentProperties `xml:"DocumentProperties"`
	Pages      Pages              `xml:"Pages"`
}

type DocumentProperties struct {
	Title   string `xml:"Title"`
	Creator string `xml:"Creator"`
}

type Pages struct {
	Page []Page `xml:"Page"`
}

type Page struct {
	ID         int            `xml:"ID,attr"`
	Name       string         `xml:"Name,attr"`
	Properties PageProperties `xml:"PageProperties"`
	Shapes     Shapes         `xml:"Shapes"`
}

type PageProperties struct {
	PageWidth  float64 `xml:"PageWidth"`
	PageHeight float64 `xml:"PageHeight"`
}

type Shapes struct {
	Shape []Shape `xml:"Shape"`
}

type Shape struct {
	ID         int             `xml:"ID,attr"`
	Name       string          `xml:"Name,attr"`
	Properties ShapeProperties `xml:"ShapeProperties"`
}

// ShapeProperties carries position and size when the source provides them.
type ShapeProperties struct {
	PosX   *float64 `xml:"PosX,omitempty"`
	PosY   *float64 `xml:"PosY,omitempty"`
	Width  *float64 `xml:"Width,omitempty"`
	Height *float64 `xml:"Height,omitempty"`
}

// NewDocument returns a VDX document skeleton with the fixed namespace.
func NewDocument(title string) *Document {
	return &Document{
		Xmlns: visioCoreNS,
		Properties: DocumentProperties{
			Title:   title,
			Creator: "vdxconvert",
		},
	}
}

// Marshal renders the document as an XML file body with declaration.
func (d *Document) Marshal() ([]byte, error) {
	body, err := xml.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.Write(body)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
