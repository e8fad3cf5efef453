package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrPackageCorrupt indicates the document bytes cannot be opened as a
// structured archive.
var ErrPackageCorrupt = errors.New("document package is not a readable archive")

// maxPartBytes caps the size of a single extracted part to keep a hostile
// upload from ballooning in memory.
const maxPartBytes = 32 << 20

// isTextPart reports whether a package entry carries human-readable document
// text that may contain placeholder tokens.
func isTextPart(name string) bool {
	if name == "word/document.xml" {
		return true
	}
	if strings.HasPrefix(name, "word/header") && strings.HasSuffix(name, ".xml") {
		return true
	}
	if strings.HasPrefix(name, "word/footer") && strings.HasSuffix(name, ".xml") {
		return true
	}
	return false
}

// ValidatePackage verifies the bytes open as a zip archive containing at
// least one text-bearing part. It is the gate for accepting an uploaded
// custom template.
func ValidatePackage(doc []byte) error {
	reader, err := zip.NewReader(bytes.NewReader(doc), int64(len(doc)))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPackageCorrupt, err)
	}

	for _, file := range reader.File {
		if isTextPart(file.Name) {
			return nil
		}
	}

	return fmt.Errorf("%w: no document text parts found", ErrPackageCorrupt)
}

// RewritePackage substitutes tokens in every text-bearing part of the
// package and reassembles the archive. Non-text parts are copied verbatim
// and entry order is preserved, so repeated rewrites with the same values
// produce identical bytes.
func (e *Engine) RewritePackage(doc []byte, values TokenMap) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(doc), int64(len(doc)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPackageCorrupt, err)
	}

	escaped := xmlEscaped(values)

	var out bytes.Buffer
	writer := zip.NewWriter(&out)

	for _, file := range reader.File {
		part, err := readPart(file)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrPackageCorrupt, file.Name, err)
		}

		if isTextPart(file.Name) {
			part = []byte(SubstituteTokens(string(part), escaped))
		}

		if err := writePart(writer, file.Name, part); err != nil {
			return nil, fmt.Errorf("repackaging %s: %w", file.Name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("closing package: %w", err)
	}

	return out.Bytes(), nil
}

func readPart(file *zip.File) ([]byte, error) {
	handle, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer handle.Close()

	part, err := io.ReadAll(io.LimitReader(handle, maxPartBytes+1))
	if err != nil {
		return nil, err
	}
	if len(part) > maxPartBytes {
		return nil, fmt.Errorf("part exceeds %d bytes", maxPartBytes)
	}
	return part, nil
}

// writePart adds one entry with a normalized header. Timestamps are zeroed so
// a batch re-run yields byte-identical archives.
func writePart(writer *zip.Writer, name string, content []byte) error {
	header := &zip.FileHeader{
		Name:   name,
		Method: zip.Deflate,
	}

	entry, err := writer.CreateHeader(header)
	if err != nil {
		return err
	}

	_, err = entry.Write(content)
	return err
}
