package orchestrator

import (
	"github.com/intellecta/intellecta/internal/llm"
	"github.com/intellecta/intellecta/internal/models"
)

// Mode is the closed execution-mode enum. Mode only ever affects the
// generation call; retrieval runs the same two-stage pipeline in both modes.
type Mode string

const (
	ModeFast    Mode = "fast"
	ModeQuality Mode = "quality"
)

type modeSettings struct {
	Options llm.GenOptions
	// ChainOfThought enables a reasoning pass whose final answer is
	// extracted from the completion.
	ChainOfThought bool
}

// modeTable is the effect table per mode value.
var modeTable = map[Mode]modeSettings{
	ModeFast: {
		Options: llm.GenOptions{
			Temperature:   0.7,
			TopP:          0.9,
			MaxTokens:     1024,
			ContextWindow: 4096,
		},
	},
	ModeQuality: {
		Options: llm.GenOptions{
			Temperature:   0.3,
			TopP:          0.95,
			MaxTokens:     2048,
			ContextWindow: 8192,
		},
		ChainOfThought: true,
	},
}

type languageSettings struct {
	// Name is the English name of the language, used in prompts.
	Name string
	// Translate marks languages whose queries are translated to English
	// for retrieval and whose answers are translated back.
	Translate bool
}

// languageTable is the effect table per language tag.
var languageTable = map[models.Language]languageSettings{
	models.LangEnglish:    {Name: "English"},
	models.LangKorean:     {Name: "Korean", Translate: true},
	models.LangVietnamese: {Name: "Vietnamese", Translate: true},
}

func modeFor(fast bool) Mode {
	if fast {
		return ModeFast
	}
	return ModeQuality
}
