package llm

// Fixed prompts for the two model capabilities. The persona prompt goes out
// as the system instruction on every reply-generation call; the classifier
// prompt frames the single-message crisis assessment.

const personaSystemPrompt = `You are a supportive mental health chatbot designed to provide empathetic
responses and helpful guidance. You are not a replacement for professional
mental health services, and you should always recommend seeking professional
help for serious concerns. Focus on active listening, validation, and
providing evidence-based coping strategies when appropriate. Never diagnose
medical conditions or provide medical advice. If a user appears to be in
crisis or expresses suicidal thoughts, direct them to appropriate crisis
resources.`

const crisisClassifierPrompt = `Analyze the following message for indicators of mental health crisis.
Provide a JSON response with the following fields:
- crisis_risk: number between 0-10 (0 being no risk, 10 being severe)
- crisis_type: string (suicidal, self_harm, panic, other, none)
- recommended_action: string (emergency_services, crisis_line, professional_help, self_care, monitor)
Do not include any explanations, just the JSON object.`

// historyLimit bounds the conversation context sent with every reply request.
const historyLimit = 10
