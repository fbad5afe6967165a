package interview

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/voxhire/voxhire/pkg/llm"
)

const (
	technicalQuestionTarget  = 3
	behavioralQuestionTarget = 2

	scoreMaxTokens    = 16
	questionMaxTokens = 128
)

// Agent drives a single interview conversation through its stages.
// It is not safe for concurrent use; callers serialize turns.
type Agent struct {
	jobRole   string
	completer llm.Completer
	log       *slog.Logger

	stage           Stage
	questionsAsked  map[Stage]int
	currentQuestion string
	scores          []ScoreEntry
	candidateName   string
}

// NewAgent creates an agent for the given job role. The completer may be
// nil, in which case every turn uses the static question bank and the
// heuristic scorer.
func NewAgent(jobRole string, completer llm.Completer, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		jobRole:        strings.TrimSpace(jobRole),
		completer:      completer,
		log:            logger.With("component", "interview_agent"),
		stage:          StageIntroduction,
		questionsAsked: make(map[Stage]int),
	}
}

// Stage returns the current interview stage.
func (a *Agent) Stage() Stage {
	return a.stage
}

// CandidateName returns the name extracted from the introduction, if any.
func (a *Agent) CandidateName() string {
	return a.candidateName
}

// QuestionsAnswered returns how many scored answers have been recorded.
func (a *Agent) QuestionsAnswered() int {
	return len(a.scores)
}

// Scores returns a copy of the recorded score entries.
func (a *Agent) Scores() []ScoreEntry {
	out := make([]ScoreEntry, len(a.scores))
	copy(out, a.scores)
	return out
}

// Introduce produces the opening prompt asking the candidate to introduce
// themselves.
func (a *Agent) Introduce(ctx context.Context) string {
	prompt := fmt.Sprintf(
		"You are a professional interviewer for a %s position. Greet the candidate warmly in one or two sentences and ask them to introduce themselves. Reply with only the greeting.",
		a.roleOrDefault(),
	)
	if text, ok := a.complete(ctx, prompt, questionMaxTokens); ok {
		return text
	}
	return fmt.Sprintf(
		"Hello! Welcome to your interview for the %s position. Let's start with a brief introduction. Please tell me about yourself.",
		a.roleOrDefault(),
	)
}

// Advance consumes the candidate's transcript for the current turn and
// returns the interviewer's next utterance, moving the stage machine
// forward as needed. Stages only ever move forward.
func (a *Agent) Advance(ctx context.Context, transcript string) string {
	switch a.stage {
	case StageIntroduction:
		if name, ok := ExtractName(transcript); ok {
			a.candidateName = name
		}
		a.stage = StageTechnical
		return a.nextQuestion(ctx, StageTechnical, transcript)

	case StageTechnical:
		a.recordScore(ctx, transcript, StageTechnical)
		if a.questionsAsked[StageTechnical] < technicalQuestionTarget {
			return a.nextQuestion(ctx, StageTechnical, transcript)
		}
		a.stage = StageBehavioral
		return a.transitionToBehavioral(ctx) + " " + a.nextQuestion(ctx, StageBehavioral, transcript)

	case StageBehavioral:
		a.recordScore(ctx, transcript, StageBehavioral)
		if a.questionsAsked[StageBehavioral] < behavioralQuestionTarget {
			return a.nextQuestion(ctx, StageBehavioral, transcript)
		}
		a.stage = StageConclusion
		return a.conclusion()

	default:
		return "Thank you again for your time. The interview has concluded."
	}
}

// FinalScore computes the aggregate result from the recorded scores. The
// total weighs technical answers at 60% and behavioral at 40% when both
// stages produced scores, otherwise it falls back to a plain average.
func (a *Agent) FinalScore() Breakdown {
	var techSum, techN, behSum, behN, allSum float64
	for _, s := range a.scores {
		allSum += s.Value
		switch s.Stage {
		case StageTechnical:
			techSum += s.Value
			techN++
		case StageBehavioral:
			behSum += s.Value
			behN++
		}
	}

	var b Breakdown
	if len(a.scores) > 0 {
		b.Average = allSum / float64(len(a.scores))
	}
	if techN > 0 {
		b.TechnicalAvg = techSum / techN
	}
	if behN > 0 {
		b.BehavioralAvg = behSum / behN
	}
	switch {
	case techN > 0 && behN > 0:
		b.Total = 0.6*b.TechnicalAvg + 0.4*b.BehavioralAvg
	default:
		b.Total = b.Average
	}
	return b
}

func (a *Agent) nextQuestion(ctx context.Context, stage Stage, lastAnswer string) string {
	index := a.questionsAsked[stage]
	a.questionsAsked[stage]++

	prompt := fmt.Sprintf(
		"You are interviewing a candidate for a %s position. This is %s question number %d. The candidate's previous answer was: %q. Ask one concise %s interview question that does not repeat earlier topics. Reply with only the question.",
		a.roleOrDefault(), stage, index+1, lastAnswer, stage,
	)
	question := fallbackQuestion(stage, index)
	if text, ok := a.complete(ctx, prompt, questionMaxTokens); ok {
		question = text
	}
	a.currentQuestion = question
	return question
}

// transitionToBehavioral acknowledges the technical round before the
// first behavioral question is asked.
func (a *Agent) transitionToBehavioral(ctx context.Context) string {
	prompt := "Thank the candidate for their technical answers and transition to behavioral questions about their work style. Keep it to one brief, natural sentence."
	if text, ok := a.complete(ctx, prompt, questionMaxTokens); ok {
		return text
	}
	return "Thank you for working through the technical questions. Now let's talk about how you work."
}

func (a *Agent) recordScore(ctx context.Context, transcript string, stage Stage) {
	value, ok := a.scoreWithModel(ctx, transcript, stage)
	if !ok {
		value = FallbackScore(transcript)
		a.log.Warn("model scoring unavailable, using heuristic score",
			"stage", stage.String(),
			"score", value)
	}
	a.scores = append(a.scores, ScoreEntry{Value: value, Stage: stage})
}

func (a *Agent) scoreWithModel(ctx context.Context, transcript string, stage Stage) (float64, bool) {
	if a.completer == nil {
		return 0, false
	}

	var rubric string
	switch stage {
	case StageBehavioral:
		rubric = "situation and context (30 points), actions taken (30 points), outcome and impact (20 points), communication and reflection (20 points)"
	default:
		rubric = "technical accuracy (30 points), depth of knowledge (25 points), clarity of explanation (20 points), relevance to the question (15 points), concrete examples (10 points)"
	}

	prompt := fmt.Sprintf(
		"Evaluate this interview answer for a %s position.\n\nQuestion: %s\n\nAnswer: %s\n\nScore it from 0 to 100 based on: %s. Reply with only the number.",
		a.roleOrDefault(), a.currentQuestion, transcript, rubric,
	)
	reply, ok := a.complete(ctx, prompt, scoreMaxTokens)
	if !ok {
		return 0, false
	}
	value, ok := parseScore(reply)
	if !ok {
		a.log.Warn("model score reply had no parseable number", "reply", reply)
		return 0, false
	}
	return value, true
}

func (a *Agent) conclusion() string {
	score := a.FinalScore()
	name := a.candidateName
	if name == "" {
		name = "candidate"
	}
	return fmt.Sprintf(
		"Thank you, %s. That concludes our interview for the %s position. Your overall score is %.1f out of 100. We will be in touch with next steps. Have a great day!",
		name, a.roleOrDefault(), score.Total,
	)
}

func (a *Agent) complete(ctx context.Context, prompt string, maxTokens int) (string, bool) {
	if a.completer == nil {
		return "", false
	}
	reply, err := a.completer.Complete(ctx, llm.Request{
		System:      "You are a professional technical interviewer. Be concise.",
		Prompt:      prompt,
		MaxTokens:   maxTokens,
		Temperature: 0.7,
	})
	if err != nil {
		a.log.Warn("completion failed", "provider", a.completer.Name(), "error", err)
		return "", false
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", false
	}
	return reply, true
}

func (a *Agent) roleOrDefault() string {
	if a.jobRole == "" {
		return "Software Engineer"
	}
	return a.jobRole
}
