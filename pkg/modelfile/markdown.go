package modelfile

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

const fenceLanguage = "pict"

// ExtractMarkdown pulls a model out of a markdown document. Every fenced
// code block tagged `pict` contributes content in the plain-text format;
// the blocks are concatenated in document order and parsed as one model
// file. YAML frontmatter may supply the model's name and description.
func ExtractMarkdown(src []byte) (*Document, error) {
	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	pctx := parser.NewContext()
	root := md.Parser().Parse(text.NewReader(src), parser.WithContext(pctx))

	var blocks []string
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fence, ok := n.(*ast.FencedCodeBlock)
		if !ok || !bytes.Equal(fence.Language(src), []byte(fenceLanguage)) {
			return ast.WalkContinue, nil
		}
		var b strings.Builder
		for i := 0; i < fence.Lines().Len(); i++ {
			seg := fence.Lines().At(i)
			b.Write(seg.Value(src))
		}
		blocks = append(blocks, b.String())
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "walking markdown")
	}
	if len(blocks) == 0 {
		return nil, errors.Errorf("markdown document has no ```%s model blocks", fenceLanguage)
	}

	doc, err := ParseText(strings.Join(blocks, "\n"))
	if err != nil {
		return nil, err
	}
	if metaData := meta.Get(pctx); metaData != nil {
		doc.Name, _ = metaData["name"].(string)
		doc.Description, _ = metaData["description"].(string)
	}
	return doc, nil
}
