package models

const (
	// SnippetMaxChars bounds the source excerpt returned with a chat
	// answer.
	SnippetMaxChars = 500
)

var (
	SystemPromptTemplate = `You are a helpful assistant answering questions about an uploaded document. Use only the provided context to answer. If the context does not contain the answer, say so instead of guessing. Do not cite sources that are not in the context.`

	AnswerPromptTemplate = `Context from the document:
%s
Question: %s`
)
