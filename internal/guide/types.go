package guide

// VocabularyCount is the fixed number of vocabulary entries per guide.
const VocabularyCount = 10

// QuizCount is the fixed number of quiz questions per guide.
const QuizCount = 10

// StudyGuide is the generated study artifact. Immutable once created;
// consumers that shuffle quiz options work on copies.
type StudyGuide struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`

	// LanguageCode is the detected BCP-47 language of the source notes.
	LanguageCode string `json:"language_code"`

	// AudioInstruction is a free-text tone/accent directive for speech
	// synthesis, e.g. "Speak clearly and calmly in US English".
	AudioInstruction string `json:"audio_instruction"`

	Vocabulary []VocabularyEntry `json:"vocabulary"`
	Quiz       []QuizItem        `json:"quiz"`
}

// VocabularyEntry is one word/definition pair.
type VocabularyEntry struct {
	Word       string `json:"word"`
	Definition string `json:"definition"`
}

// QuizItem is one multiple-choice question.
// Invariant: 0 <= AnswerIndex < len(Options).
type QuizItem struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	AnswerIndex int      `json:"answer_index"`
}
