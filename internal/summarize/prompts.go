package summarize

import "fmt"

// basePrompt is the fixed structured template shared by chunk and reduce
// calls. The six sections and their order never change.
const basePrompt = `You are a professional summarizer. Produce a concise, structured summary of the following text.

Guidelines:
- Use bullet points.
- Stick to the facts. No interpretation, speculation or opinion.
- Section headings are fixed, in this order:
  1) Main topics
  2) Key content
  3) Decisions
  4) Action items
  5) Risks / issues
  6) Next schedule

The output must contain exactly these six sections and nothing else.`

// chunkSeparator joins chunk summaries inside a reduce prompt.
const chunkSeparator = "\n\n--- chunk summary separator ---\n\n"

// batchSeparator joins batch summaries in the final reduce step.
const batchSeparator = "\n\n--- batch summary separator ---\n\n"

func chunkPrompt(chunk string) string {
	return fmt.Sprintf("%s\n\nSummarize the following chunk:\n---\n%s\n---", basePrompt, chunk)
}

func reducePrompt(summaries string) string {
	return fmt.Sprintf("%s\n\nBelow is a collection of chunk summaries. Remove duplicates, reconcile conflicts and merge them into one final summary:\n---\n%s\n---", basePrompt, summaries)
}

func oneLinePrompt(summary string) string {
	return fmt.Sprintf("Compress the following summary into a single sentence. Keep only the most essential point.\n\nSummary:\n%s\n\nOne-line summary:", summary)
}
