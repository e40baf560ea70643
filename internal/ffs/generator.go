// Package ffs writes FreeFileSync batch projects (*.ffs_gui) from a user template.
//
// The template is an ordinary FreeFileSync project whose left folder path
// contains a {version} placeholder, e.g.
//
//	<FreeFileSync XmlType="GUI" XmlFormat="17">
//	    <FolderPairs>
//	        <Pair>
//	            <Left>C:\Users\me\Downloads\FreshRSS-{version}</Left>
//	            <Right>\\nas\www\freshrss</Right>
//	        </Pair>
//	    </FolderPairs>
//	</FreeFileSync>
//
// Only that one field is touched; everything else is written back as parsed.
package ffs

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/beevik/etree"
	"github.com/m-mizutani/goerr/v2"

	"freshrss-update/internal/apperr"
	"freshrss-update/internal/logger"
)

// Declaration is the first line of every generated project. FreeFileSync
// refuses files without the encoding attribute.
const Declaration = `<?xml version="1.0" encoding="utf-8"?>`

// leftFolderPath is the element chain, below the root, holding the left folder.
var leftFolderPath = []string{"FolderPairs", "Pair", "Left"}

// Generate reads the template at templatePath, substitutes version into the
// left folder of the first folder pair and writes the result to outputPath,
// replacing any existing file.
func Generate(templatePath, outputPath, version string) error {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(templatePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return goerr.Wrap(errors.Join(apperr.ErrFileSystem, err), "template not found",
				goerr.V("path", templatePath))
		}
		return goerr.Wrap(errors.Join(apperr.ErrMalformedTemplate, err), "template is not valid XML",
			goerr.V("path", templatePath))
	}

	left, err := LeftFolder(doc)
	if err != nil {
		return goerr.Wrap(err, "unexpected template structure", goerr.V("path", templatePath))
	}
	if strings.TrimSpace(left.Text()) == "" {
		return goerr.Wrap(apperr.ErrMalformedTemplate, "left folder is empty", goerr.V("path", templatePath))
	}

	text, err := Format(left.Text(), version)
	if err != nil {
		return goerr.Wrap(err, "cannot fill left folder", goerr.V("path", templatePath))
	}
	left.SetText(text)
	logger.Debug("[DEBUG] Left folder set to %s\n", text)

	// Any declaration the template carries is replaced by ours
	var decls []etree.Token
	for _, tok := range doc.Child {
		if pi, ok := tok.(*etree.ProcInst); ok && pi.Target == "xml" {
			decls = append(decls, pi)
		}
	}
	for _, tok := range decls {
		doc.RemoveChild(tok)
	}

	var body bytes.Buffer
	if _, err := doc.WriteTo(&body); err != nil {
		return goerr.Wrap(errors.Join(apperr.ErrFileSystem, err), "failed to serialize project")
	}

	out := make([]byte, 0, len(Declaration)+1+body.Len())
	out = append(out, Declaration...)
	out = append(out, '\n')
	out = append(out, bytes.TrimLeft(body.Bytes(), "\r\n")...)

	if err := os.WriteFile(outputPath, out, 0644); err != nil {
		return goerr.Wrap(errors.Join(apperr.ErrFileSystem, err), "failed to write project",
			goerr.V("path", outputPath))
	}
	return nil
}

// LeftFolder walks root → FolderPairs → Pair → Left and returns the Left element.
// A missing root or link fails with apperr.ErrMalformedTemplate naming the
// element that could not be found.
func LeftFolder(doc *etree.Document) (*etree.Element, error) {
	el := doc.Root()
	if el == nil {
		return nil, goerr.Wrap(apperr.ErrMalformedTemplate, "document has no root element")
	}

	walked := []string{el.Tag}
	for _, tag := range leftFolderPath {
		next := el.SelectElement(tag)
		if next == nil {
			return nil, goerr.Wrap(apperr.ErrMalformedTemplate, "missing element",
				goerr.V("element", tag), goerr.V("parent", strings.Join(walked, "/")))
		}
		walked = append(walked, tag)
		el = next
	}
	return el, nil
}

// Format fills a brace template: {version} becomes version, "{{" and "}}"
// stand for literal braces. Any other field, or a lone brace, is an
// apperr.ErrMalformedTemplate error.
func Format(tmpl, version string) (string, error) {
	var b strings.Builder
	b.Grow(len(tmpl) + len(version))

	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		switch c {
		case '{':
			if i+1 < len(tmpl) && tmpl[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(tmpl[i+1:], '}')
			if end < 0 {
				return "", goerr.Wrap(apperr.ErrMalformedTemplate, "single '{' encountered in format string",
					goerr.V("template", tmpl))
			}
			field := tmpl[i+1 : i+1+end]
			if field != "version" {
				return "", goerr.Wrap(apperr.ErrMalformedTemplate, "unknown placeholder",
					goerr.V("field", field), goerr.V("template", tmpl))
			}
			b.WriteString(version)
			i += end + 1
		case '}':
			if i+1 < len(tmpl) && tmpl[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return "", goerr.Wrap(apperr.ErrMalformedTemplate, "single '}' encountered in format string",
				goerr.V("template", tmpl))
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}
