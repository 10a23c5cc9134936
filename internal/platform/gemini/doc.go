// Package gemini implements transcript summarization using Google's
// Gemini API. The model is asked for a fixed JSON shape via a response
// schema; its output is nonetheless treated as untrusted and parse
// failures surface as malformed-completion errors rather than job
// failures.
package gemini
