package bulk

import (
	"regexp"
	"strings"

	"github.com/alorle/playlist-manager/internal/channel"
)

// DefaultRegroupTemplate prefixes the current group with the channel tag.
const DefaultRegroupTemplate = "{tag} {group}"

var reSpaces = regexp.MustCompile(`\s+`)

// Regroup builds a new group value from a template with {tag}, {group} and
// {name} placeholders.
type Regroup struct {
	Template string
}

// Apply renders the template for ch, collapsing whitespace runs and trimming.
func (g Regroup) Apply(ch channel.Channel) string {
	out := strings.NewReplacer(
		"{tag}", ch.Tag,
		"{group}", ch.Group,
		"{name}", ch.Name,
	).Replace(g.Template)
	return strings.TrimSpace(reSpaces.ReplaceAllString(out, " "))
}

// Transform returns ch with its group replaced by the rendered template.
func (g Regroup) Transform(ch channel.Channel) channel.Channel {
	ch.Group = g.Apply(ch)
	return ch
}
