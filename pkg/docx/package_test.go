package docx

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildTestPackage(t *testing.T, parts map[string][]byte) []byte {
	t.Helper()

	var out bytes.Buffer
	writer := zip.NewWriter(&out)
	for name, content := range parts {
		entry, err := writer.Create(name)
		require.NoError(t, err)
		_, err = entry.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	return out.Bytes()
}

func extractPart(t *testing.T, doc []byte, name string) []byte {
	t.Helper()

	reader, err := zip.NewReader(bytes.NewReader(doc), int64(len(doc)))
	require.NoError(t, err)
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		handle, err := file.Open()
		require.NoError(t, err)
		defer handle.Close()
		content, err := io.ReadAll(handle)
		require.NoError(t, err)
		return content
	}

	t.Fatalf("part %s not found in package", name)
	return nil
}

func testEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(DefaultScaffold())
	require.NoError(t, err)
	return engine
}

func TestRewritePackageSubstitutesTextParts(t *testing.T) {
	doc := buildTestPackage(t, map[string][]byte{
		"word/document.xml": []byte("<w:t>Name: 【name】, Class: 【class】</w:t>"),
		"word/media/img.bin": {0x00, 0x01, 0xFF},
	})

	rewritten, err := testEngine(t).RewritePackage(doc, TokenMap{"name": "Li Hua", "class": "3-2"})
	require.NoError(t, err)

	text := string(extractPart(t, rewritten, "word/document.xml"))
	require.Equal(t, "<w:t>Name: Li Hua, Class: 3-2</w:t>", text)
	require.Equal(t, []byte{0x00, 0x01, 0xFF}, extractPart(t, rewritten, "word/media/img.bin"))
}

func TestRewritePackagePreservesNonTokenBytes(t *testing.T) {
	const body = "<w:p>before 【name】 after</w:p><w:p>untouched paragraph</w:p>"
	doc := buildTestPackage(t, map[string][]byte{"word/document.xml": []byte(body)})
	engine := testEngine(t)

	first, err := engine.RewritePackage(doc, TokenMap{"name": "A"})
	require.NoError(t, err)
	second, err := engine.RewritePackage(doc, TokenMap{"name": "ZZZZ"})
	require.NoError(t, err)

	firstText := string(extractPart(t, first, "word/document.xml"))
	secondText := string(extractPart(t, second, "word/document.xml"))
	require.Equal(t, "<w:p>before A after</w:p><w:p>untouched paragraph</w:p>", firstText)
	require.Equal(t, "<w:p>before ZZZZ after</w:p><w:p>untouched paragraph</w:p>", secondText)
}

func TestRewritePackageEscapesValuesForXML(t *testing.T) {
	doc := buildTestPackage(t, map[string][]byte{"word/document.xml": []byte("<w:t>【comment】</w:t>")})

	rewritten, err := testEngine(t).RewritePackage(doc, TokenMap{"comment": `likes <music> & "art"`})
	require.NoError(t, err)

	text := string(extractPart(t, rewritten, "word/document.xml"))
	require.Equal(t, "<w:t>likes &lt;music&gt; &amp; &quot;art&quot;</w:t>", text)
}

func TestRewritePackageDeterministic(t *testing.T) {
	doc := buildTestPackage(t, map[string][]byte{
		"word/document.xml": []byte("<w:t>【name】</w:t>"),
		"word/styles.xml":   []byte("<w:styles/>"),
	})
	engine := testEngine(t)

	first, err := engine.RewritePackage(doc, TokenMap{"name": "Li"})
	require.NoError(t, err)
	second, err := engine.RewritePackage(doc, TokenMap{"name": "Li"})
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestRewritePackageRejectsCorruptArchive(t *testing.T) {
	_, err := testEngine(t).RewritePackage([]byte("definitely not a zip"), TokenMap{})
	require.ErrorIs(t, err, ErrPackageCorrupt)
}

func TestValidatePackage(t *testing.T) {
	valid := buildTestPackage(t, map[string][]byte{"word/document.xml": []byte("<w:t>x</w:t>")})
	require.NoError(t, ValidatePackage(valid))

	noText := buildTestPackage(t, map[string][]byte{"word/media/img.bin": {0x01}})
	require.ErrorIs(t, ValidatePackage(noText), ErrPackageCorrupt)

	require.ErrorIs(t, ValidatePackage([]byte("garbage")), ErrPackageCorrupt)
}
