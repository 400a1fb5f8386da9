package report

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	nsMain = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsRel  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

	// A4 portrait with one inch margins, in twentieths of a point.
	pageWidth   = 11906
	pageHeight  = 16838
	pageMargin  = 1440
	contentWide = pageWidth - 2*pageMargin
)

// zipModTime is stamped on every part so identical input gives identical bytes.
var zipModTime = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

type run struct {
	text   string
	bold   bool
	italic bool
}

type paraStyle struct {
	style    string
	centered bool
}

// docBuilder accumulates the children of <w:body>.
type docBuilder struct {
	body bytes.Buffer
	err  error
}

func (b *docBuilder) raw(s string) {
	if b.err != nil {
		return
	}
	_, b.err = b.body.WriteString(s)
}

// text escapes s. Newlines become <w:br/> inside the current run.
func (b *docBuilder) text(s string) {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i, line := range lines {
		if i > 0 {
			b.raw(`<w:br/>`)
		}
		b.raw(`<w:t xml:space="preserve">`)
		if b.err == nil {
			b.err = xml.EscapeText(&b.body, []byte(line))
		}
		b.raw(`</w:t>`)
	}
}

func (b *docBuilder) run(r run) {
	b.raw(`<w:r>`)
	if r.bold || r.italic {
		b.raw(`<w:rPr>`)
		if r.bold {
			b.raw(`<w:b/>`)
		}
		if r.italic {
			b.raw(`<w:i/>`)
		}
		b.raw(`</w:rPr>`)
	}
	b.text(r.text)
	b.raw(`</w:r>`)
}

func (b *docBuilder) paragraph(ps paraStyle, runs ...run) {
	b.raw(`<w:p>`)
	if ps.style != "" || ps.centered {
		b.raw(`<w:pPr>`)
		if ps.style != "" {
			b.raw(`<w:pStyle w:val="` + ps.style + `"/>`)
		}
		if ps.centered {
			b.raw(`<w:jc w:val="center"/>`)
		}
		b.raw(`</w:pPr>`)
	}
	for _, r := range runs {
		b.run(r)
	}
	b.raw(`</w:p>`)
}

func (b *docBuilder) heading(level int, text string, centered bool) {
	b.paragraph(paraStyle{style: "Heading" + strconv.Itoa(level), centered: centered}, run{text: text})
}

// table writes a bordered full-width table. widths are percentages of the
// page and must match len(header).
func (b *docBuilder) table(widths []int, header []string, rows [][]string) {
	if b.err == nil && len(widths) != len(header) {
		b.err = fmt.Errorf("docx: %d column widths for %d columns", len(widths), len(header))
		return
	}

	b.raw(`<w:tbl><w:tblPr><w:tblW w:w="5000" w:type="pct"/><w:tblBorders>`)
	for _, edge := range []string{"top", "left", "bottom", "right", "insideH", "insideV"} {
		b.raw(`<w:` + edge + ` w:val="single" w:sz="4" w:space="0" w:color="auto"/>`)
	}
	b.raw(`</w:tblBorders><w:tblLayout w:type="fixed"/></w:tblPr><w:tblGrid>`)
	for _, pct := range widths {
		b.raw(`<w:gridCol w:w="` + strconv.Itoa(contentWide*pct/100) + `"/>`)
	}
	b.raw(`</w:tblGrid>`)

	b.row(widths, header, true)
	for _, r := range rows {
		b.row(widths, r, false)
	}
	b.raw(`</w:tbl>`)
}

func (b *docBuilder) row(widths []int, cells []string, header bool) {
	b.raw(`<w:tr>`)
	for i, pct := range widths {
		var text string
		if i < len(cells) {
			text = cells[i]
		}
		// pct widths are expressed in fiftieths of a percent.
		b.raw(`<w:tc><w:tcPr><w:tcW w:w="` + strconv.Itoa(pct*50) + `" w:type="pct"/></w:tcPr>`)
		b.paragraph(paraStyle{}, run{text: text, bold: header})
		b.raw(`</w:tc>`)
	}
	b.raw(`</w:tr>`)
}

func (b *docBuilder) documentXML() []byte {
	var out bytes.Buffer
	out.WriteString(xml.Header)
	out.WriteString(`<w:document xmlns:w="` + nsMain + `" xmlns:r="` + nsRel + `"><w:body>`)
	out.Write(b.body.Bytes())
	out.WriteString(fmt.Sprintf(`<w:sectPr><w:pgSz w:w="%d" w:h="%d"/>`+
		`<w:pgMar w:top="%d" w:right="%d" w:bottom="%d" w:left="%d" w:header="708" w:footer="708" w:gutter="0"/></w:sectPr>`,
		pageWidth, pageHeight, pageMargin, pageMargin, pageMargin, pageMargin))
	out.WriteString(`</w:body></w:document>`)
	return out.Bytes()
}

type docMeta struct {
	title   string
	created time.Time
}

type part struct {
	name string
	data []byte
}

// pack zips the document together with the parts every consumer expects.
func (b *docBuilder) pack(meta docMeta) ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}

	core, err := corePropsXML(meta)
	if err != nil {
		return nil, err
	}

	parts := []part{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(packageRelsXML)},
		{"docProps/core.xml", core},
		{"docProps/app.xml", []byte(appPropsXML)},
		{"word/document.xml", b.documentXML()},
		{"word/styles.xml", []byte(stylesXML)},
		{"word/_rels/document.xml.rels", []byte(documentRelsXML)},
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     p.name,
			Method:   zip.Deflate,
			Modified: zipModTime,
		})
		if err != nil {
			return nil, fmt.Errorf("docx: create %s: %w", p.name, err)
		}
		if _, err := w.Write(p.data); err != nil {
			return nil, fmt.Errorf("docx: write %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("docx: close archive: %w", err)
	}
	return buf.Bytes(), nil
}

func corePropsXML(meta docMeta) ([]byte, error) {
	var title bytes.Buffer
	if err := xml.EscapeText(&title, []byte(meta.title)); err != nil {
		return nil, err
	}
	ts := meta.created.UTC().Format(time.RFC3339)

	var out bytes.Buffer
	out.WriteString(xml.Header)
	out.WriteString(`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"` +
		` xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/"` +
		` xmlns:dcmitype="http://purl.org/dc/dcmitype/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">`)
	out.WriteString(`<dc:title>` + title.String() + `</dc:title><dc:creator>HairCareLog</dc:creator>`)
	out.WriteString(`<dcterms:created xsi:type="dcterms:W3CDTF">` + ts + `</dcterms:created>`)
	out.WriteString(`<dcterms:modified xsi:type="dcterms:W3CDTF">` + ts + `</dcterms:modified>`)
	out.WriteString(`</cp:coreProperties>`)
	return out.Bytes(), nil
}

const contentTypesXML = xml.Header +
	`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>` +
	`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>` +
	`<Override PartName="/docProps/app.xml" ContentType="application/vnd.openxmlformats-officedocument.extended-properties+xml"/>` +
	`</Types>`

const packageRelsXML = xml.Header +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>` +
	`<Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties" Target="docProps/app.xml"/>` +
	`</Relationships>`

const documentRelsXML = xml.Header +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>` +
	`</Relationships>`

const appPropsXML = xml.Header +
	`<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties"` +
	` xmlns:vt="http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes">` +
	`<Application>HairCareLog</Application></Properties>`

const stylesXML = xml.Header +
	`<w:styles xmlns:w="` + nsMain + `">` +
	`<w:docDefaults><w:rPrDefault><w:rPr><w:rFonts w:ascii="Calibri" w:hAnsi="Calibri" w:cs="Calibri"/>` +
	`<w:sz w:val="22"/><w:szCs w:val="22"/></w:rPr></w:rPrDefault>` +
	`<w:pPrDefault><w:pPr><w:spacing w:after="120" w:line="259" w:lineRule="auto"/></w:pPr></w:pPrDefault></w:docDefaults>` +
	`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/><w:qFormat/></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:basedOn w:val="Normal"/>` +
	`<w:next w:val="Normal"/><w:qFormat/><w:pPr><w:keepNext/><w:spacing w:before="240" w:after="120"/><w:outlineLvl w:val="0"/></w:pPr>` +
	`<w:rPr><w:b/><w:sz w:val="32"/><w:szCs w:val="32"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/><w:basedOn w:val="Normal"/>` +
	`<w:next w:val="Normal"/><w:qFormat/><w:pPr><w:keepNext/><w:spacing w:before="200" w:after="100"/><w:outlineLvl w:val="1"/></w:pPr>` +
	`<w:rPr><w:b/><w:sz w:val="26"/><w:szCs w:val="26"/></w:rPr></w:style>` +
	`</w:styles>`
