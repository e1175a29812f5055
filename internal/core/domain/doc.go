// Package domain holds the value types that flow through proctok: extracted
// documents, the chunks cut from them, the records a vector store keeps and
// the hits a similarity query returns. Metadata keys and sentinel errors live
// here too so every layer names them the same way.
//
// Only the standard library may be imported. Everything else in internal/
// depends on domain and never the other way round.
package domain
