package flagx

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{"separate value", []string{"-c", "conf.json", "-a", ":5000"}, []string{"-c"}, []string{"-c", "conf.json"}},
		{"equals form", []string{"-config=alt.json", "-a", ":5000"}, []string{"-c", "-config"}, []string{"-config=alt.json"}},
		{"unknown flags ignored", []string{"-x", "1", "--y=2", "positional"}, []string{"-c"}, []string{}},
		{"dangling flag", []string{"-r"}, []string{"-r"}, []string{"-r"}},
		{"next token is a flag", []string{"-c", "-notvalue"}, []string{"-c"}, []string{"-c"}},
		{"equals value with dashes", []string{"-config=--weird.json"}, []string{"-config"}, []string{"-config=--weird.json"}},
		{"comma list value", []string{"-r", "/files/surat/,/files2/surat/", "-z", "/home/scpkan"}, []string{"-r", "-z"},
			[]string{"-r", "/files/surat/,/files2/surat/", "-z", "/home/scpkan"}},
		{"repeated flag keeps order", []string{"-c", "one.json", "-c", "two.json"}, []string{"-c"}, []string{"-c", "one.json", "-c", "two.json"}},
		{"empty", []string{}, []string{"-c"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestJsonConfigFlags(t *testing.T) {
	tests := map[string]struct {
		args []string
		want string
	}{
		"short":          {[]string{"-c", "/etc/filedo/short.json"}, "/etc/filedo/short.json"},
		"long":           {[]string{"-config", "/etc/filedo/long.json"}, "/etc/filedo/long.json"},
		"mixed in":       {[]string{"-a", ":8080", "-c", "x.json", "-s", "key"}, "x.json"},
		"none":           {[]string{"-x", "1"}, ""},
		"last one wins":  {[]string{"-c", "1.json", "-config", "2.json"}, "2.json"},
		"no args at all": {nil, ""},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, JsonConfigFlags(tt.args))
		})
	}
}

func TestStringList(t *testing.T) {
	list := StringList{"/default/"}

	fs := flag.NewFlagSet("t", flag.ContinueOnError)
	fs.Var(&list, "r", "roots")
	require.NoError(t, fs.Parse([]string{"-r", " /files/surat/ , ,/files2/surat/"}))

	assert.Equal(t, StringList{"/files/surat/", "/files2/surat/"}, list)
	assert.Equal(t, "/files/surat/,/files2/surat/", list.String())

	var nilList *StringList
	assert.Empty(t, nilList.String())
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, SplitList(""))
	assert.Nil(t, SplitList(" , "))
	assert.Equal(t, []string{"a", "b"}, SplitList("a,b"))
}
