package interview

// Static question bank used when the language-model collaborator is
// unavailable. Indexed by stage and per-stage question counter so a fully
// offline interview still progresses through every stage.
var questionBank = map[Stage][]string{
	StageTechnical: {
		"Can you explain your experience with the technologies listed in your resume?",
		"Describe a challenging technical problem you've solved recently.",
		"How do you approach debugging when you encounter a difficult bug?",
		"What's your experience with version control and collaborative development?",
		"Can you walk me through your development process for a typical project?",
	},
	StageBehavioral: {
		"Tell me about a time when you had to work under tight deadlines.",
		"How do you handle disagreements with team members?",
		"Describe a situation where you had to learn something new quickly.",
		"What motivates you in your work?",
		"Where do you see yourself in the next 2-3 years?",
	},
}

// fallbackQuestion returns the bank question for the given stage and
// zero-based index, wrapping around if the index runs past the bank.
func fallbackQuestion(stage Stage, index int) string {
	bank := questionBank[stage]
	if len(bank) == 0 {
		return "Thank you for your time today."
	}
	if index < 0 {
		index = 0
	}
	return bank[index%len(bank)]
}
