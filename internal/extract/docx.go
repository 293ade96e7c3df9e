package extract

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// extractDOC handles application/msword uploads. Word files saved as OOXML under a .doc
// name go through the DOCX reader; binary OLE documents have no reader.
func extractDOC(data []byte) (string, error) {
	if bytes.HasPrefix(data, zipMagic) {
		return extractDOCX(data)
	}
	if bytes.HasPrefix(data, oleMagic) {
		return "", fmt.Errorf("%w: legacy binary .doc is not supported", ErrExtractionFailed)
	}
	return "", fmt.Errorf("%w: unrecognized .doc payload", ErrExtractionFailed)
}

func extractDOCX(data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", wrapLibraryErr(FormatDOCX, errors.New("empty docx data"))
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = wrapLibraryErr(FormatDOCX, fmt.Errorf("panic: %v", rec))
		}
	}()

	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", wrapLibraryErr(FormatDOCX, err)
	}
	defer doc.Close()

	raw := doc.Editable().GetContent()
	plain, err := documentXMLText(raw)
	if err != nil {
		return "", wrapLibraryErr(FormatDOCX, err)
	}
	return Normalize(plain), nil
}

// documentXMLText pulls the visible text out of word/document.xml, keeping paragraph
// breaks, explicit line breaks and tabs.
func documentXMLText(raw string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				buf.WriteString("\t")
			case "br", "cr":
				buf.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				buf.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				buf.Write(t)
			}
		}
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
