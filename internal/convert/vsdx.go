package convert

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/hashicorp/go-hclog"
)

const (
	vsdxPagesIndexPart = "visio/pages/pages.xml"
	vsdxPagePartFmt    = "visio/pages/page%d.xml"
)

// XMLNative converts the OPC-container Visio formats (.vsdx, .vsdm)
// in-process. The container is a zip archive of XML parts; no external
// engine is involved.
type XMLNative struct {
	Log hclog.Logger
}

func NewXMLNative(log hclog.Logger) *XMLNative {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &XMLNative{Log: log}
}

// vsdxPageIndex mirrors visio/pages/pages.xml.
type vsdxPageIndex struct {
	Page []vsdxPageEntry `xml:"Page"`
}

type vsdxPageEntry struct {
	ID        string    `xml:"ID,attr"`
	Name      string    `xml:"Name,attr"`
	NameU     string    `xml:"NameU,attr"`
	PageSheet vsdxSheet `xml:"PageSheet"`
}

type vsdxSheet struct {
	Cell []vsdxCell `xml:"Cell"`
}

type vsdxCell struct {
	N string `xml:"N,attr"`
	V string `xml:"V,attr"`
}

// vsdxPageContents mirrors a visio/pages/pageN.xml part. Only top-level
// shapes are read; grouped sub-shapes are out of scope for the canonical
// output.
type vsdxPageContents struct {
	Shapes struct {
		Shape []vsdxShape `xml:"Shape"`
	} `xml:"Shapes"`
}

type vsdxShape struct {
	ID    string     `xml:"ID,attr"`
	Name  string     `xml:"Name,attr"`
	NameU string     `xml:"NameU,attr"`
	Cell  []vsdxCell `xml:"Cell"`
}

func (c *XMLNative) Convert(_ context.Context, sourcePath string) ([]byte, error) {
	zr, err := zip.OpenReader(sourcePath)
	if err != nil {
		return nil, &Error{Kind: KindConversionError, Message: fmt.Sprintf("not a valid Visio container: %v", err)}
	}
	defer zr.Close()

	parts := map[string]*zip.File{}
	for _, f := range zr.File {
		parts[f.Name] = f
	}

	index, err := readPageIndex(parts)
	if err != nil {
		return nil, err
	}

	doc := NewDocument(filepath.Base(sourcePath))
	for i, entry := range index.Page {
		page := Page{
			ID:   i + 1,
			Name: pageName(entry, i+1),
			Properties: PageProperties{
				PageWidth:  cellFloat(entry.PageSheet.Cell, "PageWidth"),
				PageHeight: cellFloat(entry.PageSheet.Cell, "PageHeight"),
			},
		}
		// Page parts are numbered in document order, one-based.
		part := parts[fmt.Sprintf(vsdxPagePartFmt, i+1)]
		if part != nil {
			shapes, err := readPageShapes(part)
			if err != nil {
				return nil, err
			}
			page.Shapes = shapes
		} else {
			c.Log.Debug("page part missing, emitting empty page", "source", sourcePath, "page", i+1)
		}
		doc.Pages.Page = append(doc.Pages.Page, page)
	}

	out, err := doc.Marshal()
	if err != nil {
		return nil, &Error{Kind: KindConversionError, Message: err.Error()}
	}
	return out, nil
}

func readPageIndex(parts map[string]*zip.File) (*vsdxPageIndex, error) {
	part := parts[vsdxPagesIndexPart]
	if part == nil {
		return nil, &Error{Kind: KindConversionError, Message: "container has no " + vsdxPagesIndexPart + " part"}
	}
	var index vsdxPageIndex
	if err := decodePart(part, &index); err != nil {
		return nil, err
	}
	return &index, nil
}

func readPageShapes(part *zip.File) (Shapes, error) {
	var contents vsdxPageContents
	if err := decodePart(part, &contents); err != nil {
		return Shapes{}, err
	}
	var shapes Shapes
	for i, s := range contents.Shapes.Shape {
		shape := Shape{
			ID:   i + 1,
			Name: shapeName(s, i+1),
			Properties: ShapeProperties{
				PosX:   cellFloatPtr(s.Cell, "PinX"),
				PosY:   cellFloatPtr(s.Cell, "PinY"),
				Width:  cellFloatPtr(s.Cell, "Width"),
				Height: cellFloatPtr(s.Cell, "Height"),
			},
		}
		shapes.Shape = append(shapes.Shape, shape)
	}
	return shapes, nil
}

func decodePart(part *zip.File, v any) error {
	rc, err := part.Open()
	if err != nil {
		return &Error{Kind: KindConversionError, Message: fmt.Sprintf("open part %s: %v", part.Name, err)}
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return &Error{Kind: KindConversionError, Message: fmt.Sprintf("read part %s: %v", part.Name, err)}
	}
	if err := xml.Unmarshal(data, v); err != nil {
		return &Error{Kind: KindConversionError, Message: fmt.Sprintf("parse part %s: %v", part.Name, err)}
	}
	return nil
}

func pageName(entry vsdxPageEntry, ordinal int) string {
	if entry.Name != "" {
		return entry.Name
	}
	if entry.NameU != "" {
		return entry.NameU
	}
	return "Page-" + strconv.Itoa(ordinal)
}

func shapeName(s vsdxShape, ordinal int) string {
	if s.Name != "" {
		return s.Name
	}
	if s.NameU != "" {
		return s.NameU
	}
	return "Shape_" + strconv.Itoa(ordinal)
}

func cellFloat(cells []vsdxCell, name string) float64 {
	if p := cellFloatPtr(cells, name); p != nil {
		return *p
	}
	return 0
}

func cellFloatPtr(cells []vsdxCell, name string) *float64 {
	for _, c := range cells {
		if c.N != name {
			continue
		}
		f, err := strconv.ParseFloat(c.V, 64)
		if err != nil {
			return nil
		}
		return &f
	}
	return nil
}
