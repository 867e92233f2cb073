package csvio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	ID   string `csv:"id"`
	Name string `csv:"name"`
	Note string `csv:"note"`
}

func TestDecode(t *testing.T) {
	in := "id,name,note\n1,alpha,first\n2,beta,second\n"
	rows, err := Decode[sample](strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, sample{ID: "1", Name: "alpha", Note: "first"}, rows[0])
	assert.Equal(t, sample{ID: "2", Name: "beta", Note: "second"}, rows[1])
}

func TestDecode_ColumnOrderIndependent(t *testing.T) {
	in := "note,id,name\nfirst,1,alpha\n"
	rows, err := Decode[sample](strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, sample{ID: "1", Name: "alpha", Note: "first"}, rows[0])
}

func TestDecode_ExtraAndMissingColumns(t *testing.T) {
	// Unknown columns are ignored, missing ones leave the field empty.
	in := "id,unknown,name\n1,x,alpha\n"
	rows, err := Decode[sample](strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, sample{ID: "1", Name: "alpha"}, rows[0])
}

func TestDecode_BOMHeader(t *testing.T) {
	in := "\xef\xbb\xbfid,name,note\n1,alpha,first\n"
	rows, err := Decode[sample](strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "1", rows[0].ID)
}

func TestDecode_RaggedRows(t *testing.T) {
	// A short row fills what it can; fields past its end stay empty.
	in := "id,name,note\n1,alpha\n2,beta,second\n"
	rows, err := Decode[sample](strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, sample{ID: "1", Name: "alpha"}, rows[0])
	assert.Equal(t, "second", rows[1].Note)
}

func TestDecode_EmptyBody(t *testing.T) {
	rows, err := Decode[sample](strings.NewReader("id,name,note\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDecode_NoHeader(t *testing.T) {
	_, err := Decode[sample](strings.NewReader(""))
	require.Error(t, err)
}

func TestDecode_QuotedFields(t *testing.T) {
	in := "id,name,note\n1,\"alpha, the first\",ok\n"
	rows, err := Decode[sample](strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "alpha, the first", rows[0].Name)
}
