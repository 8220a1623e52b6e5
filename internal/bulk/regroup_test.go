package bulk

import (
	"testing"

	"github.com/alorle/playlist-manager/internal/channel"
)

func TestRegroup_Apply(t *testing.T) {
	tests := []struct {
		name     string
		template string
		ch       channel.Channel
		want     string
	}{
		{
			name:     "tag and group",
			template: "{tag} > {group}",
			ch:       channel.Channel{Tag: "FR", Group: "News"},
			want:     "FR > News",
		},
		{
			name:     "default template",
			template: DefaultRegroupTemplate,
			ch:       channel.Channel{Tag: "uk", Group: "Sports"},
			want:     "uk Sports",
		},
		{
			name:     "missing values collapse whitespace",
			template: "{tag}   {group}  {name}",
			ch:       channel.Channel{Group: "News"},
			want:     "News",
		},
		{
			name:     "repeated placeholders",
			template: "{name}/{name}",
			ch:       channel.Channel{Name: "BBC"},
			want:     "BBC/BBC",
		},
		{
			name:     "placeholder text inside values is not expanded",
			template: "{tag} {group}",
			ch:       channel.Channel{Tag: "{group}", Group: "News"},
			want:     "{group} News",
		},
		{
			name:     "plain text",
			template: "  All\tChannels ",
			ch:       channel.Channel{},
			want:     "All Channels",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (Regroup{Template: tt.template}).Apply(tt.ch); got != tt.want {
				t.Errorf("Apply() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRegroup_Transform(t *testing.T) {
	ch := channel.New("BBC", "News", "", "http://x", "uk.m3u", "uk")
	got := Regroup{Template: "{tag} > {group}"}.Transform(ch)

	if got.Group != "uk > News" {
		t.Errorf("Group = %q", got.Group)
	}
	if got.ID != ch.ID || got.Name != ch.Name {
		t.Error("Transform() changed fields other than group")
	}
}
