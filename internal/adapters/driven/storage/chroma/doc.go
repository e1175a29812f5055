// Package chroma provides a vector store adapter for a Chroma server,
// built on the chroma-go v2 client.
package chroma
