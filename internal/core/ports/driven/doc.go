// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - TextExtractor / ExtractorRegistry: Document-to-text conversion
//   - TextNormaliser: Script-aware normalisation shared by build and query
//   - PostProcessorPipeline: Chunking of extracted text
//   - EmbeddingService: Generates vector embeddings
//   - LLMService: Chat completion for rewriting, synthesis and summaries
//   - VectorIndexStore / VectorIndex: Persisted similarity search per document
//   - Workspace: Document-scoped artifact storage
//   - DocumentStore: Document metadata persistence
//   - ConfigStore / PromptStore: Application configuration and prompts
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, extractor, or post-processor package
package driven
