package commit

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/temirov/commitpkg/internal/semver"
)

const (
	shortStatPatternConstant       = `(\d+) files? changed(?:, (\d+) insertions?\(\+\))?(?:, (\d+) deletions?\(-\))?`
	summaryHeaderTemplateConstant  = "Committed to %s: %s"
	summaryCountsTemplateConstant  = "%d files changed, %d insertions(+), %d deletions(-)"
	summaryVersionTemplateConstant = "manifest version: %s"
)

var shortStatPattern = regexp.MustCompile(shortStatPatternConstant)

// Summary describes a successful commit for user-facing output.
type Summary struct {
	Branch       string
	Message      string
	FilesChanged int
	Insertions   int
	Deletions    int
	Version      semver.Version
}

// parseChangeCounts extracts the shortstat counters from the commit output.
// Output without a recognizable shortstat line yields zero counts.
func parseChangeCounts(commitOutput string) (filesChanged int, insertions int, deletions int) {
	captureGroups := shortStatPattern.FindStringSubmatch(commitOutput)
	if captureGroups == nil {
		return 0, 0, 0
	}

	filesChanged, _ = strconv.Atoi(captureGroups[1])
	if len(captureGroups[2]) > 0 {
		insertions, _ = strconv.Atoi(captureGroups[2])
	}
	if len(captureGroups[3]) > 0 {
		deletions, _ = strconv.Atoi(captureGroups[3])
	}
	return filesChanged, insertions, deletions
}

// Render produces the multi-line textual form of the summary.
func (summary Summary) Render() string {
	summaryLines := []string{
		fmt.Sprintf(summaryHeaderTemplateConstant, summary.Branch, summary.Message),
		fmt.Sprintf(summaryCountsTemplateConstant, summary.FilesChanged, summary.Insertions, summary.Deletions),
		fmt.Sprintf(summaryVersionTemplateConstant, summary.Version.String()),
	}
	return strings.Join(summaryLines, "\n")
}
