package usecase

import "strings"

// StaticDescription grounds every answer, even before any dynamic corpus is
// ingested. It is always injected into the prompt verbatim.
const StaticDescription = `The Texas Disaster Information System (TDIS) is a comprehensive data platform for natural disaster management in Texas. It aims to streamline the ingestion, storage, processing, and utilization of disaster-related data, focusing on improving natural disaster preparedness, response, recovery, and mitigation efforts across the state.

TDIS addresses the current challenges of fragmented, poorly maintained, and inaccessible disaster data in Texas by centralizing and organizing this information. This helps overcome limitations faced by responders, planners, and researchers in effectively supporting disaster resilience.`

const promptPreamble = `You are a helpful TDIS (Texas Disaster Information System) assistant. Your primary role is to:
1. Explain what TDIS is and its purpose
2. Describe how TDIS works and its capabilities
3. Provide information about current disaster alerts in Texas
4. Help users understand disaster management in Texas`

// buildAnswerPrompt composes the single-turn prompt: persona preamble, the
// static description, the retrieved context in rank order, the literal
// question, and the answer cue.
func buildAnswerPrompt(question string, contexts []string) string {
	var b strings.Builder
	b.WriteString(promptPreamble)
	b.WriteString("\n\nTDIS Information:\n")
	b.WriteString(StaticDescription)
	b.WriteString("\n\nCurrent Disaster Context:\n")
	b.WriteString(strings.Join(contexts, "\n"))
	b.WriteString("\n\nQuestion:\n")
	b.WriteString(question)
	b.WriteString("\n\nAnswer:")
	return b.String()
}
