package report

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// ManifestDiff renders a line diff of two chunk manifests. Unchanged lines are
// prefixed with two spaces, removed ones with "- " and added ones with "+ ".
func ManifestDiff(before, after string) string {
	dmp := diffmatchpatch.New()
	src, dst, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(src, dst, false), lines)

	var sb strings.Builder

	for _, d := range diffs {
		prefix := "  "

		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffEqual:
		}

		for line := range strings.SplitSeq(strings.TrimSuffix(d.Text, "\n"), "\n") {
			sb.WriteString(prefix)
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}

	return sb.String()
}
