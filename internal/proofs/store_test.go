package proofs

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasbuku/kasbuku/internal/errs"
)

func TestSanitize(t *testing.T) {
	cases := map[string]string{
		"Invoice 2024.PDF":   "invoice_2024.pdf",
		"../../etc/passwd":   "passwd",
		"nota pembelian.jpg": "nota_pembelian.jpg",
		"weird///name":       "name",
		"..":                 "",
		"???":                "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Sanitize(in), "input %q", in)
	}
}

func TestStore_SaveAndOpen(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	ref, err := s.Save("Receipt #42.pdf", strings.NewReader("proof-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(ref, "_receipt_42.pdf"), "ref = %s", ref)

	f, err := s.Open(ref)
	require.NoError(t, err)
	defer f.Close()
	b, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "proof-bytes", string(b))
}

func TestStore_OpenRejectsTraversal(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = s.Open("../outside")
	assert.ErrorIs(t, err, errs.ErrNotFound)
	_, err = s.Open("")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
