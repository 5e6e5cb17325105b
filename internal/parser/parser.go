package parser

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"

	"github.com/rikas05/chat-with-pdf/internal/chunker"
	"github.com/rikas05/chat-with-pdf/internal/models"
)

// Page is one unit of extracted text: a PDF page, a slide, a sheet, or
// the whole file for unpaged formats.
type Page struct {
	Number int
	Text   string
}

// Result is the parsed and chunked form of one uploaded file.
type Result struct {
	Pages  int
	Chunks []models.Chunk
}

// Parse extracts text from the file and splits it into chunks. The
// chunk sequence number runs across the whole document so retrieval
// ties can fall back to original order.
func Parse(filePath string, chk *chunker.Chunker) (*Result, error) {
	pages, err := extractPages(filePath)
	if err != nil {
		return nil, err
	}

	res := &Result{Pages: len(pages)}
	seq := 0
	for _, p := range pages {
		for _, window := range chk.Split(p.Text) {
			if strings.TrimSpace(window) == "" {
				continue
			}
			seq++
			res.Chunks = append(res.Chunks, models.Chunk{
				Content:    window,
				PageNumber: p.Number,
				ChunkID:    seq,
			})
		}
	}
	return res, nil
}

func extractPages(filePath string) ([]Page, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".pdf":
		return extractPDF(filePath)
	case ".docx":
		return extractDOCX(filePath)
	case ".pptx":
		return extractPPTX(filePath)
	case ".xlsx":
		return extractXLSX(filePath)
	case ".ods":
		return extractODS(filePath)
	case ".md", ".markdown":
		return extractMarkdown(filePath)
	case ".txt":
		return extractText(filePath)
	default:
		return nil, models.ValidationError(fmt.Sprintf("unsupported file format: %s", ext))
	}
}

func extractPDF(filePath string) ([]Page, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, models.IngestionError("open pdf", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, models.IngestionError("stat pdf", err)
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, models.IngestionError("read pdf", err)
	}

	var pages []Page
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return nil, models.IngestionError(fmt.Sprintf("extract text from page %d", i), err)
		}
		pages = append(pages, Page{Number: i, Text: pageText})
	}
	return pages, nil
}

func extractDOCX(filePath string) ([]Page, error) {
	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return nil, models.IngestionError("read docx", err)
	}
	defer r.Close()

	doc := r.Editable()
	var text strings.Builder
	for _, p := range strings.Split(doc.GetContent(), "\n") {
		p = stripTags(p)
		if strings.TrimSpace(p) == "" {
			continue
		}
		text.WriteString(p)
		text.WriteString("\n")
	}
	// DOCX has no page boundaries; treat it as a single page.
	return []Page{{Number: 1, Text: text.String()}}, nil
}

func extractPPTX(filePath string) ([]Page, error) {
	f, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, models.IngestionError("open pptx", err)
	}
	defer f.Close()

	var pages []Page
	slide := 0
	for _, file := range f.File {
		if !strings.HasPrefix(file.Name, "ppt/slides/slide") {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}
		slideText := extractTextFromXML(string(data))
		if strings.TrimSpace(slideText) == "" {
			continue
		}
		slide++
		pages = append(pages, Page{Number: slide, Text: slideText})
	}
	return pages, nil
}

func extractXLSX(filePath string) ([]Page, error) {
	f, err := xlsx.OpenFile(filePath)
	if err != nil {
		return nil, models.IngestionError("open xlsx", err)
	}

	var pages []Page
	for sheetNum, sheet := range f.Sheets {
		var text strings.Builder
		text.WriteString(fmt.Sprintf("Sheet: %s\n", sheet.Name))
		for _, row := range sheet.Rows {
			for _, cell := range row.Cells {
				text.WriteString(cell.String() + "\t")
			}
			text.WriteString("\n")
		}
		pages = append(pages, Page{Number: sheetNum + 1, Text: text.String()})
	}
	return pages, nil
}

func extractODS(filePath string) ([]Page, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, models.IngestionError("open ods", err)
	}
	defer f.Close()

	var pages []Page
	for sheetNum, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		var text strings.Builder
		text.WriteString(fmt.Sprintf("Sheet: %s\n", sheetName))
		for _, row := range rows {
			for _, cell := range row {
				text.WriteString(cell + "\t")
			}
			text.WriteString("\n")
		}
		pages = append(pages, Page{Number: sheetNum + 1, Text: text.String()})
	}
	return pages, nil
}

func extractText(filePath string) ([]Page, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, models.IngestionError("read text file", err)
	}
	return []Page{{Number: 1, Text: string(data)}}, nil
}

func extractTextFromXML(xmlContent string) string {
	var text strings.Builder
	parts := strings.Split(xmlContent, "<a:t>")
	for i, part := range parts {
		if i == 0 {
			continue
		}
		endIdx := strings.Index(part, "</a:t>")
		if endIdx >= 0 {
			text.WriteString(part[:endIdx] + " ")
		}
	}
	return text.String()
}

func stripTags(s string) string {
	var out strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			out.WriteRune(r)
		}
	}
	return out.String()
}
