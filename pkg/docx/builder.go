package docx

import (
	"bytes"
	"fmt"
)

// Paragraph alignment values accepted by ParagraphStyle.
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
)

// ParagraphStyle controls the rendering of one paragraph emitted by the
// builder. The zero value is a plain left-aligned paragraph at the document
// default size.
type ParagraphStyle struct {
	Bold  bool
	Align string
	// Size is expressed in half-points, matching WordprocessingML. Zero keeps
	// the document default.
	Size int
}

// Builder composes a document section by section. It is created through
// Engine.NewBuilder so that no document can be constructed before generation
// capability has been acquired.
type Builder struct {
	engine *Engine
	body   bytes.Buffer
}

// NewBuilder starts an empty document on this engine's scaffold.
func (e *Engine) NewBuilder() *Builder {
	return &Builder{engine: e}
}

// AddHeading appends a centered bold title paragraph.
func (b *Builder) AddHeading(text string) {
	b.AddStyledParagraph(text, ParagraphStyle{Bold: true, Align: AlignCenter, Size: 36})
}

// AddParagraph appends a plain paragraph.
func (b *Builder) AddParagraph(text string) {
	b.AddStyledParagraph(text, ParagraphStyle{})
}

// AddStyledParagraph appends one paragraph with explicit styling.
func (b *Builder) AddStyledParagraph(text string, style ParagraphStyle) {
	b.body.WriteString("<w:p>")

	if style.Align != "" && style.Align != AlignLeft {
		fmt.Fprintf(&b.body, "<w:pPr><w:jc w:val=%q/></w:pPr>", style.Align)
	}

	b.body.WriteString("<w:r>")
	if style.Bold || style.Size > 0 {
		b.body.WriteString("<w:rPr>")
		if style.Bold {
			b.body.WriteString("<w:b/>")
		}
		if style.Size > 0 {
			fmt.Fprintf(&b.body, `<w:sz w:val="%d"/>`, style.Size)
		}
		b.body.WriteString("</w:rPr>")
	}
	fmt.Fprintf(&b.body, `<w:t xml:space="preserve">%s</w:t>`, escapeXML(text))
	b.body.WriteString("</w:r></w:p>")
}

// AddTable appends a bordered table. Every row is padded to the width of the
// longest row so the grid stays rectangular.
func (b *Builder) AddTable(rows [][]string) {
	if len(rows) == 0 {
		return
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	b.body.WriteString(`<w:tbl><w:tblPr><w:tblBorders>` +
		`<w:top w:val="single" w:sz="4"/><w:bottom w:val="single" w:sz="4"/>` +
		`<w:left w:val="single" w:sz="4"/><w:right w:val="single" w:sz="4"/>` +
		`<w:insideH w:val="single" w:sz="4"/><w:insideV w:val="single" w:sz="4"/>` +
		`</w:tblBorders></w:tblPr>`)

	for _, row := range rows {
		b.body.WriteString("<w:tr>")
		for col := 0; col < width; col++ {
			cell := ""
			if col < len(row) {
				cell = row[col]
			}
			fmt.Fprintf(&b.body, `<w:tc><w:p><w:r><w:t xml:space="preserve">%s</w:t></w:r></w:p></w:tc>`, escapeXML(cell))
		}
		b.body.WriteString("</w:tr>")
	}

	b.body.WriteString("</w:tbl>")
}

// AddSpacer appends an empty paragraph to separate sections visually.
func (b *Builder) AddSpacer() {
	b.body.WriteString("<w:p/>")
}

// Bytes assembles the composed content into a complete document package.
func (b *Builder) Bytes() ([]byte, error) {
	var document bytes.Buffer
	document.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	document.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	document.Write(b.body.Bytes())
	document.WriteString(`<w:sectPr><w:pgSz w:w="11906" w:h="16838"/></w:sectPr></w:body></w:document>`)

	return b.engine.assemble(document.Bytes())
}
