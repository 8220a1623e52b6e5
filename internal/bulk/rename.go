// Package bulk implements the find/replace and regroup transforms applied to
// the selected channels of a playlist.
package bulk

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/alorle/playlist-manager/internal/channel"
)

var (
	ErrEmptyFind      = errors.New("find text cannot be empty")
	ErrInvalidScope   = errors.New("rename scope must be name, group or tag")
	ErrInvalidPattern = errors.New("invalid regular expression")
)

// Rename describes a find/replace over one text field.
type Rename struct {
	Scope    channel.Field
	Find     string
	Replace  string
	UseRegex bool
}

// Renamer is a validated Rename ready to be applied to many channels.
type Renamer struct {
	scope   channel.Field
	find    string
	replace string
	re      *regexp.Regexp
}

// Compile validates the rename before anything is mutated.
// Regex patterns are compiled here so an invalid pattern is reported up front.
func (r Rename) Compile() (*Renamer, error) {
	switch r.Scope {
	case channel.FieldName, channel.FieldGroup, channel.FieldTag:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidScope, r.Scope)
	}
	if r.Find == "" {
		return nil, ErrEmptyFind
	}

	rn := &Renamer{scope: r.Scope, find: r.Find, replace: r.Replace}
	if r.UseRegex {
		re, err := regexp.Compile(r.Find)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
		}
		rn.re = re
		rn.replace = expandTemplate(r.Replace, re.NumSubexp())
	}
	return rn, nil
}

// Apply replaces every occurrence of the find text (or every pattern match)
// in value.
func (r *Renamer) Apply(value string) string {
	if r.re != nil {
		return r.re.ReplaceAllString(value, r.replace)
	}
	return strings.ReplaceAll(value, r.find, r.replace)
}

// Transform returns ch with its scoped field rewritten.
func (r *Renamer) Transform(ch channel.Channel) channel.Channel {
	if v, err := ch.Value(r.scope); err == nil {
		_ = ch.Set(r.scope, r.Apply(v))
	}
	return ch
}

// expandTemplate rewrites a replacement written with $1, $& and $$ references
// into regexp.Expand syntax. References to groups the pattern does not have
// and any other $ sequence are kept literally.
func expandTemplate(tmpl string, groups int) string {
	var b strings.Builder
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		if c != '$' || i+1 == len(tmpl) {
			if c == '$' {
				b.WriteString("$$")
			} else {
				b.WriteByte(c)
			}
			continue
		}

		next := tmpl[i+1]
		switch {
		case next == '$':
			b.WriteString("$$")
			i++
		case next == '&':
			b.WriteString("${0}")
			i++
		case isDigit(next):
			n, width := int(next-'0'), 1
			if i+2 < len(tmpl) && isDigit(tmpl[i+2]) {
				if two := n*10 + int(tmpl[i+2]-'0'); two >= 1 && two <= groups {
					n, width = two, 2
				}
			}
			if n >= 1 && n <= groups {
				fmt.Fprintf(&b, "${%d}", n)
			} else {
				b.WriteString("$$")
				b.WriteString(tmpl[i+1 : i+1+width])
			}
			i += width
		default:
			b.WriteString("$$")
		}
	}
	return b.String()
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
