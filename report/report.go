package report

import (
	"strings"

	"github.com/valyala/fasttemplate"
)

// DefaultTemplate renders one verification outcome per
// call, mismatch digests included.
const DefaultTemplate = "{{file}}: {{status}}" +
	" ({{hash}})\n  expected {{expected}}\n" +
	"  actual   {{actual}}\n"

// Result is one verification outcome to render.
type Result struct {
	// File is the path that was verified.
	File string
	// HashName is the algorithm used.
	HashName string
	// Expected is the digest from the manifest or
	// caller.
	Expected string
	// Actual is the computed digest; empty when the
	// file could not be read.
	Actual string
	// Matched reports digest equality.
	Matched bool
	// Err is a read failure, nil otherwise.
	Err error
}

// status is the one-word summary for the template.
func (r Result) status() string {
	switch {
	case r.Err != nil:
		return "unreadable"
	case r.Matched:
		return "ok"
	default:
		return "mismatch"
	}
}

// Renderer expands a template once per Result. Zero
// values select double-brace tags and DefaultTemplate.
type Renderer struct {
	StartTag string
	EndTag   string
	Template string
}

// tags returns the configured start/end tags, falling
// back to double-brace defaults.
func (rn *Renderer) tags() (string, string) {
	startTag := rn.StartTag
	if startTag == "" {
		startTag = "{{"
	}

	endTag := rn.EndTag
	if endTag == "" {
		endTag = "}}"
	}

	return startTag, endTag
}

// Render expands the template for one result. Unknown
// placeholders are preserved as-is.
func (rn *Renderer) Render(res Result) string {
	tpl := rn.Template
	if tpl == "" {
		tpl = DefaultTemplate
	}

	errText := ""
	if res.Err != nil {
		errText = res.Err.Error()
	}

	ctx := map[string]interface{}{
		"file":     res.File,
		"status":   res.status(),
		"hash":     res.HashName,
		"expected": res.Expected,
		"actual":   res.Actual,
		"error":    errText,
	}

	startTag, endTag := rn.tags()

	return fasttemplate.ExecuteStringStd(
		tpl, startTag, endTag, ctx,
	)
}

// RenderAll renders every result in order and
// concatenates the output.
func (rn *Renderer) RenderAll(
	results []Result,
) string {
	var sb strings.Builder

	for _, res := range results {
		sb.WriteString(rn.Render(res))
	}

	return sb.String()
}
