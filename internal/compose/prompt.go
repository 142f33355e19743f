package compose

import (
	"strings"

	"motorag/internal/domain"
)

var skillInstructions = map[domain.SkillLevel]string{
	domain.SkillBeginner:     "Use simple, clear language. Explain technical terms. Provide step-by-step instructions.",
	domain.SkillIntermediate: "Provide detailed technical information. Include specifications and procedures.",
	domain.SkillExpert:       "Focus on technical details and advanced procedures. Assume technical knowledge.",
}

// BuildPrompt assembles the generation prompt: role framing, the bounded
// context, the grounding constraint, a skill-level phrasing directive, and
// formatting directives.
func BuildPrompt(query, context string, skill domain.SkillLevel) string {
	instruction, ok := skillInstructions[skill]
	if !ok {
		instruction = skillInstructions[domain.SkillIntermediate]
	}
	var b strings.Builder
	b.WriteString("You are a helpful assistant for motorcycle owners. Use the following information from the owner's manual to answer the user's question.\n\n")
	b.WriteString("Context from Manual:\n")
	b.WriteString(context)
	b.WriteString("\n\nQuestion: ")
	b.WriteString(query)
	b.WriteString("\n\nInstructions:\n")
	b.WriteString("- Provide a clear, accurate answer based only on the manual content\n")
	b.WriteString("- If you cannot find the answer in the provided context, say so clearly\n")
	b.WriteString("- ")
	b.WriteString(instruction)
	b.WriteString("\n")
	b.WriteString("- Include specific details like measurements, procedures, or warnings when relevant\n")
	b.WriteString("- If the information involves safety warnings, emphasize them prominently\n")
	b.WriteString("- Reference the manual section and page number when helpful\n")
	b.WriteString("- Structure your response logically with clear sections if needed\n")
	b.WriteString("\nAnswer:")
	return b.String()
}
