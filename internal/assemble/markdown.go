package assemble

import (
	"fmt"
	"strings"

	"github.com/michelKingmaLord/cpeq-infolettre-automatique/internal/newsletter"
)

// Markdown renders the structured Newsletter as a Markdown digest. The
// structure itself stays the stable contract; this is a convenience for
// delivery layers that want plain text.
func Markdown(n *newsletter.Newsletter) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("# Newsletter %s - %s\n\n",
		n.PeriodStart.Format("2006-01-02"), n.PeriodEnd.Format("2006-01-02")))

	for _, section := range n.Sections {
		b.WriteString(fmt.Sprintf("## %s\n\n", titleCase(section.Category)))
		for _, article := range section.Articles {
			b.WriteString(fmt.Sprintf("### [%s](%s)\n\n", article.Title, article.URL))
			if !article.PublishedAt.IsZero() {
				b.WriteString(fmt.Sprintf("*%s*\n\n", article.PublishedAt.Format("2006-01-02 15:04")))
			}
			b.WriteString(article.Summary)
			b.WriteString("\n\n")
		}
	}

	b.WriteString(fmt.Sprintf("---\n\nGenerated at %s\n", n.GeneratedAt.Format("2006-01-02 15:04 MST")))
	return b.String()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	return strings.ToUpper(string(runes[0])) + string(runes[1:])
}
