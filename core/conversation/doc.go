// Package conversation holds the ordered message history of one query session.
//
// A [Conversation] is owned by a single caller at a time: the orchestration
// loop appends to it while answering, and the caller decides whether to keep
// it for the next turn or discard it. Messages are only ever appended.
package conversation
