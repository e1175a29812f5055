// Package redis provides a vector store on Redis Stack, using a RediSearch
// HNSW index over hashes stored under "<collection>:".
package redis
