package domain

import (
	"strconv"
	"time"
)

// Metadata keys written onto every stored record.
const (
	MetaSource           = "source"
	MetaDocumentType     = "document_type"
	MetaFilename         = "filename"
	MetaURL              = "url"
	MetaDomain           = "domain"
	MetaFileSize         = "file_size"
	MetaExtractionMethod = "extraction_method"
	MetaExtractedAt      = "extracted_at"
	MetaProcessedAt      = "processed_at"
	MetaTitle            = "title"
	MetaSourceFile       = "source_file"
	MetaOriginalURL      = "original_url"
	MetaChunkIndex       = "chunk_index"
	MetaTotalChunks      = "total_chunks"
	MetaWordCount        = "word_count"
	MetaSentenceCount    = "sentence_count"
	MetaCollectionSource = "collection_source"
)

// Fixed metadata values.
const (
	SourceProcurementDocs       = "procurement_docs"
	CollectionSourceMarketplace = "digital_marketplace_procurement"
)

// TimestampFormat is used for every timestamp written to metadata and exports.
const TimestampFormat = "2006-01-02T15:04:05.000000"

// FormatTimestamp renders t in TimestampFormat.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampFormat)
}

// ChunkMetadata merges document metadata with the chunk's position and counts.
// The document map is not modified.
func ChunkMetadata(doc map[string]string, chunk Chunk, processedAt time.Time) map[string]string {
	md := make(map[string]string, len(doc)+8)
	for k, v := range doc {
		md[k] = v
	}
	md[MetaProcessedAt] = FormatTimestamp(processedAt)
	md[MetaChunkIndex] = strconv.Itoa(chunk.ChunkIndex)
	md[MetaTotalChunks] = strconv.Itoa(chunk.TotalChunks)
	md[MetaWordCount] = strconv.Itoa(chunk.WordCount)
	md[MetaSentenceCount] = strconv.Itoa(chunk.SentenceCount)
	md[MetaCollectionSource] = CollectionSourceMarketplace
	return md
}

// MetaInt reads an integer metadata value, returning 0 when absent or malformed.
func MetaInt(md map[string]string, key string) int {
	n, err := strconv.Atoi(md[key])
	if err != nil {
		return 0
	}
	return n
}
