// Package milvus provides a vector store adapter for Milvus using the v2 Go client.
//
// The collection schema is id (varchar primary key), text (varchar),
// metadata (JSON) and vector (float vector) with an HNSW COSINE index.
package milvus
