// Package parse decodes tool-call arguments produced by language models.
// Models sometimes emit slightly malformed JSON (single quotes, trailing
// commas, truncated objects); every decoder here retries once after running
// the input through jsonrepair before giving up.
//
// [ParseStringAs] decodes into a typed value. [OrderedArgs] keeps the key
// order of a top-level object, which the orchestration loop needs to render
// trace lines in the order the model wrote the arguments.
package parse
