// Package logging provides concrete implementations of the tourload.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: Writes formatted progress lines to stderr (or any io.Writer)
//   - NullLogger: Discards all messages (useful for testing)
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging
