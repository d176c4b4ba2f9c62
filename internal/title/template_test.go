package title

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/casebook/internal/ir"
)

func TestCompile_SubstitutesFields(t *testing.T) {
	got, err := Compile("send {{.smsMessage}} to {{.accountTag}}", ir.Record{
		"accountTag": "us",
		"smsMessage": int64(1),
	})
	require.NoError(t, err)
	assert.Equal(t, "send 1 to us", got)
}

func TestCompile_NoPlaceholdersIsIdentity(t *testing.T) {
	for _, tmpl := range []string{"", "plain title", "braces { } are fine"} {
		got, err := Compile(tmpl, ir.Record{"unused": true})
		require.NoError(t, err)
		assert.Equal(t, tmpl, got)
	}
}

func TestCompile_EmptyRecord(t *testing.T) {
	got, err := Compile("static", nil)
	require.NoError(t, err)
	assert.Equal(t, "static", got)
}

func TestCompile_IndexForNonIdentifierFields(t *testing.T) {
	got, err := Compile(`{{index . "account-tag"}}`, ir.Record{"account-tag": "us"})
	require.NoError(t, err)
	assert.Equal(t, "us", got)
}

func TestCompile_MissingFieldIsSubstitutionError(t *testing.T) {
	_, err := Compile("hello {{.name}}", ir.Record{"other": 1})
	require.Error(t, err)

	var serr *SubstitutionError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "hello {{.name}}", serr.Template)
	assert.Contains(t, err.Error(), "name")
}

func TestCompile_ParseErrorIsSubstitutionError(t *testing.T) {
	_, err := Compile("hello {{.name", ir.Record{"name": "x"})
	var serr *SubstitutionError
	require.ErrorAs(t, err, &serr)
	assert.NotNil(t, serr.Unwrap())
}
