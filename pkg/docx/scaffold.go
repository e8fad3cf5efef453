package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// Scaffold holds the boilerplate package parts every generated document is
// assembled onto. The parts normally come from the remotely fetched engine
// bundle; DefaultScaffold is the locally bundled fallback.
type Scaffold struct {
	ContentTypes []byte
	Rels         []byte
	DocumentRels []byte
	Styles       []byte
}

// Engine is the acquired document-generation capability. It is immutable and
// safe for concurrent use by any number of batches once acquired.
type Engine struct {
	scaffold Scaffold
}

// NewEngine wraps a scaffold into a usable engine.
func NewEngine(scaffold Scaffold) (*Engine, error) {
	if len(scaffold.ContentTypes) == 0 || len(scaffold.Rels) == 0 || len(scaffold.Styles) == 0 {
		return nil, fmt.Errorf("scaffold is missing required parts")
	}
	return &Engine{scaffold: scaffold}, nil
}

// assemble packages a finished word/document.xml part with the scaffold
// boilerplate. Entry order is fixed so identical content yields identical
// bytes.
func (e *Engine) assemble(documentXML []byte) ([]byte, error) {
	var out bytes.Buffer
	writer := zip.NewWriter(&out)

	parts := []struct {
		name    string
		content []byte
	}{
		{"[Content_Types].xml", e.scaffold.ContentTypes},
		{"_rels/.rels", e.scaffold.Rels},
		{"word/_rels/document.xml.rels", e.scaffold.DocumentRels},
		{"word/styles.xml", e.scaffold.Styles},
		{"word/document.xml", documentXML},
	}

	for _, part := range parts {
		if len(part.content) == 0 {
			continue
		}
		if err := writePart(writer, part.name, part.content); err != nil {
			return nil, fmt.Errorf("assembling %s: %w", part.name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("closing document: %w", err)
	}

	return out.Bytes(), nil
}

// DefaultScaffold returns the bundled fallback scaffold used when the remote
// engine bundle cannot be fetched.
func DefaultScaffold() Scaffold {
	return Scaffold{
		ContentTypes: []byte(defaultContentTypes),
		Rels:         []byte(defaultRels),
		DocumentRels: []byte(defaultDocumentRels),
		Styles:       []byte(defaultStyles),
	}
}

const defaultContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
</Types>`

const defaultRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const defaultDocumentRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
</Relationships>`

const defaultStyles = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:docDefaults>
<w:rPrDefault><w:rPr><w:rFonts w:ascii="Times New Roman" w:eastAsia="SimSun" w:hAnsi="Times New Roman"/><w:sz w:val="24"/></w:rPr></w:rPrDefault>
<w:pPrDefault><w:pPr><w:spacing w:after="120"/></w:pPr></w:pPrDefault>
</w:docDefaults>
</w:styles>`
