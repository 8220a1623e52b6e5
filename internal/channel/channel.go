package channel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Domain errors
var (
	ErrChannelNotFound = errors.New("channel not found")
	ErrUnknownField    = errors.New("unknown channel field")
	ErrReadOnlyField   = errors.New("channel field is read-only")
	ErrInvalidStatus   = errors.New("invalid channel status")
)

// DefaultGroup is assigned to channels imported without a group-title.
const DefaultGroup = "Uncategorized"

// Status represents the reachability of a channel as last observed by a probe.
type Status string

const (
	// StatusUnknown means the channel was never probed or could not be probed.
	StatusUnknown Status = "unknown"
	// StatusOnline means the last probe reached the channel URL.
	StatusOnline Status = "online"
	// StatusOffline means the last probe failed.
	StatusOffline Status = "offline"
)

// ParseStatus converts a string to a Status.
// Returns ErrInvalidStatus for anything but unknown, online or offline.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusUnknown:
		return StatusUnknown, nil
	case StatusOnline:
		return StatusOnline, nil
	case StatusOffline:
		return StatusOffline, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Field names an editable text attribute of a Channel.
type Field string

const (
	FieldID     Field = "id"
	FieldName   Field = "name"
	FieldGroup  Field = "group"
	FieldTag    Field = "tag"
	FieldLogo   Field = "logo"
	FieldURL    Field = "url"
	FieldSource Field = "source"
	FieldStatus Field = "status"
)

// ParseField converts a string to a Field.
// Returns ErrUnknownField if the name does not match any channel attribute.
func ParseField(s string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FieldID, FieldName, FieldGroup, FieldTag, FieldLogo, FieldURL, FieldSource, FieldStatus:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// Channel is one playlist entry.
// All attributes are plain strings so a value copy is a full copy.
type Channel struct {
	ID       string
	Name     string
	Group    string
	Tag      string
	Logo     string
	URL      string
	Source   string
	Status   Status
	Selected bool
}

// New creates a Channel with a fresh unique ID, unknown status and no selection.
func New(name, group, logo, url, source, tag string) Channel {
	return Channel{
		ID:     uuid.NewString(),
		Name:   name,
		Group:  group,
		Tag:    tag,
		Logo:   logo,
		URL:    url,
		Source: source,
		Status: StatusUnknown,
	}
}

// Value returns the string value of the given field.
func (c Channel) Value(f Field) (string, error) {
	switch f {
	case FieldID:
		return c.ID, nil
	case FieldName:
		return c.Name, nil
	case FieldGroup:
		return c.Group, nil
	case FieldTag:
		return c.Tag, nil
	case FieldLogo:
		return c.Logo, nil
	case FieldURL:
		return c.URL, nil
	case FieldSource:
		return c.Source, nil
	case FieldStatus:
		return string(c.Status), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, f)
}

// Set assigns value to the given field.
// The ID can never be changed and status values are validated.
func (c *Channel) Set(f Field, value string) error {
	switch f {
	case FieldID:
		return ErrReadOnlyField
	case FieldName:
		c.Name = value
	case FieldGroup:
		c.Group = value
	case FieldTag:
		c.Tag = value
	case FieldLogo:
		c.Logo = value
	case FieldURL:
		c.URL = value
	case FieldSource:
		c.Source = value
	case FieldStatus:
		s, err := ParseStatus(value)
		if err != nil {
			return err
		}
		c.Status = s
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	return nil
}
