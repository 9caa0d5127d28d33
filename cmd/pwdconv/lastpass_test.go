package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chirichan/pwdconv/internal/entities"
)

func TestEscapeField(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: `""`},
		{name: "plain", in: "abc", want: `"abc"`},
		{name: "quotes", in: `He said "hi"`, want: `"He said ""hi"""`},
		{name: "right single quote", in: "caf’s", want: `"caf's"`},
		{name: "en dash", in: "2019–2020", want: `"2019-2020"`},
		{name: "ellipsis", in: "wait…", want: `"wait..."`},
		{name: "other non ascii", in: "café “x” 密码", want: "\"café “x” 密码\""},
		{name: "comma and newline", in: "a,b\nc", want: "\"a,b\nc\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, escapeField(tt.in))
		})
	}
}

func TestWriteLastPassCSV(t *testing.T) {
	rows := []entities.LastPassCSV{
		{
			URL:      "http://a.com",
			Username: "alice",
			Password: "pw1",
			Name:     "Site A",
			Extra:    "\nURL: http://a.com\nUsername: alice\nPassword: pw1",
		},
		{Name: `Bob's "bank"`},
	}
	var buf bytes.Buffer
	require.NoError(t, writeLastPassCSV(&buf, rows))

	want := "url,actionType,username,password,hostname,extra,name,grouping\n" +
		`"http://a.com","","alice","pw1","","` + "\nURL: http://a.com\nUsername: alice\nPassword: pw1" + `","Site A",""` + "\n" +
		`"","","","","","","Bob's ""bank""",""` + "\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteLastPassCSVHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeLastPassCSV(&buf, nil))
	assert.Equal(t, "url,actionType,username,password,hostname,extra,name,grouping\n", buf.String())
}

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriteLastPassCSVWriteError(t *testing.T) {
	err := writeLastPassCSV(failWriter{}, []entities.LastPassCSV{{Name: "a"}})
	assert.ErrorContains(t, err, "disk full")
}

func TestLastPassWriter(t *testing.T) {
	var buf bytes.Buffer
	w := newLastPassWriter(&buf)
	require.NoError(t, w.Write([]string{"a", "b"}))
	require.NoError(t, w.Write([]string{`x"y`, "z’"}))
	w.Flush()
	require.NoError(t, w.Error())
	assert.Equal(t, "a,b\n\"x\"\"y\",\"z'\"\n", buf.String())
}

func TestSaveAndVerifyLastPassCSV(t *testing.T) {
	rows := []entities.LastPassCSV{
		{URL: "http://a.com", Username: "alice", Password: `p"w,1`, Name: "Site A", Extra: "notes\nURL: http://a.com"},
		{Name: "Site B", Extra: "\nPIN: 1234"},
	}
	out := filepath.Join(t.TempDir(), "lastpass.csv")
	require.NoError(t, saveLastPassCSV(out, rows))
	require.NoError(t, verifyLastPassCSV(out, len(rows)))
	assert.ErrorIs(t, verifyLastPassCSV(out, 3), ErrVerifyOutput)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	var got []entities.LastPassCSV
	require.NoError(t, gocsv.UnmarshalFile(f, &got))
	assert.Equal(t, rows, got)

	entries, err := os.ReadDir(filepath.Dir(out))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestSaveLastPassCSVMissingDir(t *testing.T) {
	out := filepath.Join(t.TempDir(), "missing", "lastpass.csv")
	assert.Error(t, saveLastPassCSV(out, nil))
	assert.NoFileExists(t, out)
}
