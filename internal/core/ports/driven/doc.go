// Package driven lists what the core needs from the outside world.
//
// Every ingest or search wires an Extractor, the TextProcessor steps, a
// SentenceSplitter, a VectorStore, an EmbeddingService and a ConfigStore.
// Two ports are optional and may be nil:
//
//   - LLMService backs summarize --use-llm; without one summaries stay extractive.
//   - A browser PageFetcher renders pages that need JavaScript; without one
//     web extraction uses plain HTTP.
//
// Adapters import this package and domain. Nothing here imports an adapter.
package driven
