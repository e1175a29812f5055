package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestChunkMetadata(t *testing.T) {
	doc := map[string]string{
		MetaSource:       SourceProcurementDocs,
		MetaDocumentType: string(DocumentTypePDF),
		MetaFilename:     "a.pdf",
	}
	chunk := Chunk{Text: "x", WordCount: 10, SentenceCount: 2, ChunkIndex: 1, TotalChunks: 4}
	at := time.Date(2024, 3, 5, 10, 11, 12, 500000000, time.UTC)

	md := ChunkMetadata(doc, chunk, at)

	assert.Equal(t, "a.pdf", md[MetaFilename])
	assert.Equal(t, "1", md[MetaChunkIndex])
	assert.Equal(t, "4", md[MetaTotalChunks])
	assert.Equal(t, "10", md[MetaWordCount])
	assert.Equal(t, "2", md[MetaSentenceCount])
	assert.Equal(t, CollectionSourceMarketplace, md[MetaCollectionSource])
	assert.Equal(t, "2024-03-05T10:11:12.500000", md[MetaProcessedAt])

	_, touched := doc[MetaChunkIndex]
	assert.False(t, touched, "document metadata must not be modified")
}

func TestMetaInt(t *testing.T) {
	md := map[string]string{"a": "12", "b": "x", "c": ""}
	assert.Equal(t, 12, MetaInt(md, "a"))
	assert.Equal(t, 0, MetaInt(md, "b"))
	assert.Equal(t, 0, MetaInt(md, "c"))
	assert.Equal(t, 0, MetaInt(md, "missing"))
}
