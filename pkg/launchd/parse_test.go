package launchd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseList(t *testing.T) {
	out := "PID\tStatus\tLabel\n" +
		"412\t0\tcom.salt.integration.test\n" +
		"-\t78\tcom.example.crashed\n" +
		"\n" +
		"garbage line\n" +
		"  7  0  com.example.spaces\n"

	entries := parseList(out)

	assert.Equal(t, []ListEntry{
		{PID: 412, Status: "0", Label: "com.salt.integration.test"},
		{PID: 0, Status: "78", Label: "com.example.crashed"},
		{PID: 7, Status: "0", Label: "com.example.spaces"},
	}, entries)
	assert.True(t, entries[0].Running())
	assert.False(t, entries[1].Running())
}

func TestParseListEmpty(t *testing.T) {
	assert.Empty(t, parseList(""))
	assert.Empty(t, parseList("PID\tStatus\tLabel\n"))
}

func TestUniqueLabels(t *testing.T) {
	labels := uniqueLabels([]ListEntry{
		{Label: "b"}, {Label: "a"}, {Label: "b"}, {Label: "c"},
	})
	assert.Equal(t, []string{"a", "b", "c"}, labels)
}

func TestParseDisabled(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want map[string]bool
	}{
		{
			name: "boolean format",
			out: "disabled services = {\n" +
				"\t\"com.salt.integration.test\" => true\n" +
				"\t\"com.apple.ftpd\" => false\n" +
				"}\n",
			want: map[string]bool{"com.salt.integration.test": true, "com.apple.ftpd": false},
		},
		{
			name: "enabled disabled format",
			out: "disabled services = {\n" +
				"\t\"com.salt.integration.test\" => disabled\n" +
				"\t\"com.apple.ftpd\" => enabled\n" +
				"}\n",
			want: map[string]bool{"com.salt.integration.test": true, "com.apple.ftpd": false},
		},
		{
			name: "no entries",
			out:  "disabled services = {\n}\n",
			want: map[string]bool{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseDisabled(tt.out))
		})
	}
}
