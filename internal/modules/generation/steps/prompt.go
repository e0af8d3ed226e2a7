package steps

import (
	"fmt"
	"strings"

	types "github.com/yungbote/skilltree-backend/internal/domain"
	"github.com/yungbote/skilltree-backend/internal/research"
)

const (
	promptSourceLimit  = 5
	promptSummaryLimit = 200
)

// BuildDomainPrompt renders the generation instruction for topic. Only the
// first five sources are listed. Output depends on nothing but the arguments.
func BuildDomainPrompt(topic string, sources []*types.Source) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a comprehensive skill tree structure for the domain: \"%s\"\n\n", topic)
	b.WriteString("Based on the following research sources, create a hierarchical structure with:\n")
	b.WriteString("1. Domain name and description\n")
	b.WriteString("2. 3-5 main categories\n")
	b.WriteString("3. For each category, 3-5 subcategories\n")
	b.WriteString("4. For each subcategory, 3-5 skills\n")
	b.WriteString("5. For each skill, 3-5 microskills\n\n")
	b.WriteString("Sources for reference:\n")

	n := 0
	for _, s := range sources {
		if s == nil {
			continue
		}
		if n == promptSourceLimit {
			break
		}
		fmt.Fprintf(&b, "- %s: %s\n", s.Title, research.Truncate(s.Summary, promptSummaryLimit))
		n++
	}

	b.WriteString("\nFormat your response as structured text that I can parse.\n")
	b.WriteString("Include clear sections for Domain, Categories, Subcategories, Skills, and Microskills.")
	return b.String()
}
