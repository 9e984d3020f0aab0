package fanout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanMentions(t *testing.T) {
	cases := []struct {
		name string
		text string
		want []string
	}{
		{"none", "no mentions here", nil},
		{"single", "hello @alice", []string{"alice"}},
		{"multiple", "hello @alice and @bob", []string{"alice", "bob"}},
		{"duplicates collapsed", "@alice again @alice", []string{"alice"}},
		{"order of first appearance", "@bob then @alice then @bob", []string{"bob", "alice"}},
		{"underscores and dots", "ping @a_b.c", []string{"a_b.c"}},
		{"bare at sign", "email me @ noon", nil},
		{"empty", "", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ScanMentions(tc.text))
		})
	}
}
