package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"testing"
)

// zipEntry is one named entry for an in-memory test archive.
type zipEntry struct {
	name    string
	content string
}

// buildArchive assembles an in-memory ZIP from entries, in order.
func buildArchive(t *testing.T, entries []zipEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			t.Fatalf("zip create %s: %v", e.name, err)
		}

		if _, err := w.Write([]byte(e.content)); err != nil {
			t.Fatalf("zip write %s: %v", e.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}

	return buf.Bytes()
}

// buildDocx assembles a minimal .docx whose body is the given paragraph XML,
// together with the packaging entries a real producer writes (content types,
// relationships, styles, a binary media entry, one header and one footer).
func buildDocx(t *testing.T, bodyXML string) []byte {
	t.Helper()

	return buildArchive(t, []zipEntry{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/document.xml", wrapDocumentXML(bodyXML)},
		{"word/header1.xml", header1XML},
		{"word/footer1.xml", footer1XML},
		{"word/styles.xml", stylesXML},
		{"word/media/image1.png", "\x89PNG\r\n\x1a\nfakeimagebytes"},
	})
}

// wrapDocumentXML wraps body content in the document envelope.
func wrapDocumentXML(bodyXML string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>%s</w:body>
</w:document>`, bodyXML)
}

// para wraps text in a single-run paragraph.
func para(text string) string {
	return `<w:p><w:r><w:t>` + text + `</w:t></w:r></w:p>`
}

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Default Extension="png" ContentType="image/png"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const header1XML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:hdr xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:p><w:r><w:t>Confidential [Company Name]</w:t></w:r></w:p>
</w:hdr>`

const footer1XML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:ftr xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:p><w:r><w:t>Page</w:t></w:r></w:p>
</w:ftr>`

const stylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:style w:type="paragraph" w:styleId="Normal"><w:name w:val="Normal"/></w:style>
</w:styles>`
