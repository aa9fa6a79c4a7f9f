package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRemote(t *testing.T) {
	tests := []struct {
		name        string
		org         string
		expectedURL string
	}{
		{
			name:        "default upstream",
			org:         "elastic",
			expectedURL: "https://github.com/elastic/elasticsearch.git",
		},
		{
			name:        "fork",
			org:         "someuser",
			expectedURL: "https://github.com/someuser/elasticsearch.git",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRemote(tc.org)
			assert.Equal(t, tc.org, r.Name)
			assert.Equal(t, tc.expectedURL, r.URL)
		})
	}
}

func TestRemote_Listed(t *testing.T) {
	elastic := NewRemote("elastic")

	tests := []struct {
		name   string
		output string
		listed bool
	}{
		{
			name: "present with fetch and push lines",
			output: "elastic\thttps://github.com/elastic/elasticsearch.git (fetch)\n" +
				"elastic\thttps://github.com/elastic/elasticsearch.git (push)\n" +
				"origin\thttps://github.com/someuser/elasticsearch.git (fetch)",
			listed: true,
		},
		{
			name:   "empty listing",
			output: "",
			listed: false,
		},
		{
			name:   "different org under another name is not ours",
			output: "origin\thttps://github.com/other/elasticsearch.git (fetch)",
			listed: false,
		},
		{
			name:   "same name but ssh URL counts as absent",
			output: "elastic\tgit@github.com:elastic/elasticsearch.git (fetch)",
			listed: false,
		},
		{
			name:   "same URL under another name counts as absent",
			output: "upstream\thttps://github.com/elastic/elasticsearch.git (fetch)",
			listed: false,
		},
		{
			name:   "space instead of tab counts as absent",
			output: "elastic https://github.com/elastic/elasticsearch.git (fetch)",
			listed: false,
		},
		{
			name: "substring match does not need line anchoring",
			output: "origin\thttps://github.com/someuser/elasticsearch.git (fetch)\n" +
				"elastic\thttps://github.com/elastic/elasticsearch.git (fetch)",
			listed: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.listed, elastic.Listed(tc.output))
		})
	}
}
