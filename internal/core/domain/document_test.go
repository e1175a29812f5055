package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocumentType(t *testing.T) {
	for _, s := range []string{"pdf", "webpage", "html"} {
		got, err := ParseDocumentType(s)
		require.NoError(t, err)
		assert.Equal(t, DocumentType(s), got)
	}

	_, err := ParseDocumentType("docx")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}
