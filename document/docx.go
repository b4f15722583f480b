package document

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
)

const docxBody = "word/document.xml"

// extractDOCX reads headers, body and footers in that order.
func extractDOCX(filePath string) (string, error) {
	r, err := zip.OpenReader(filePath)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer r.Close()

	var (
		body    *zip.File
		headers []*zip.File
		footers []*zip.File
	)
	for _, f := range r.File {
		name := f.Name
		switch {
		case name == docxBody:
			body = f
		case path.Dir(name) == "word" && strings.HasPrefix(path.Base(name), "header") && strings.HasSuffix(name, ".xml"):
			headers = append(headers, f)
		case path.Dir(name) == "word" && strings.HasPrefix(path.Base(name), "footer") && strings.HasSuffix(name, ".xml"):
			footers = append(footers, f)
		}
	}
	if body == nil {
		return "", fmt.Errorf("docx %s not found", docxBody)
	}

	byName := func(files []*zip.File) {
		sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	}
	byName(headers)
	byName(footers)

	parts := make([]*zip.File, 0, len(headers)+len(footers)+1)
	parts = append(parts, headers...)
	parts = append(parts, body)
	parts = append(parts, footers...)

	var sb strings.Builder
	for _, f := range parts {
		if err := writeDOCXPart(&sb, f); err != nil {
			return "", fmt.Errorf("read %s: %w", f.Name, err)
		}
	}
	return sb.String(), nil
}

func writeDOCXPart(sb *strings.Builder, f *zip.File) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	return writeWordprocessingText(sb, rc)
}

// writeWordprocessingText streams WordprocessingML and keeps only the text
// runs, translating tabs, breaks and paragraph ends.
func writeWordprocessingText(sb *strings.Builder, r io.Reader) error {
	dec := xml.NewDecoder(r)
	inText := false

	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteString("\t")
			case "br", "cr":
				sb.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
}
