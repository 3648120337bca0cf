package phrases

import "github.com/gcbaptista/vibe-rank/model"

// DefaultPhrases returns the seed phrase table. Every phrase starts at
// model.DefaultPhraseRank until the first re-rank.
func DefaultPhrases() []model.VibePhrase {
	seed := []struct {
		phrase string
		vibe   model.Vibe
	}{
		{"bélico", model.VibeCorridos},
		{"troca", model.VibeCorridos},
		{"plebita", model.VibeCorridos},
		{"marlboro", model.VibeCorridos},
		{"ansiedad", model.VibeSad},
		{"jálate", model.VibeTraka},
		{"Dompe", model.VibePerrea},
		{"pantera", model.VibeCorridos},
		{"AMG", model.VibeCorridos},
		{"tatuaje", model.VibeSad},
		{"rockstar", model.VibeTraka},
		{"finde", model.VibePerrea},
		{"lock-in", model.VibeProductivo},
		{"bones day", model.VibeProductivo},
		{"deep work", model.VibeProductivo},
		{"pomodoro", model.VibeProductivo},
		{"grindset", model.VibeProductivo},
		{"coffee badging", model.VibeProductivo},
		{"study sesh", model.VibeProductivo},
		{"lofi", model.VibeChill},
		{"headphones on", model.VibeChill},
		{"zen mode", model.VibeChill},
		{"quiet flex", model.VibeChill},
		{"pana", model.VibeGeneric},
		{"parce", model.VibeGeneric},
		{"chido", model.VibeGeneric},
		{"chévere", model.VibeGeneric},
		{"bacano", model.VibeGeneric},
		{"chamo", model.VibeGeneric},
		{"güey", model.VibeGeneric},
		{"boludo", model.VibeGeneric},
		{"pibe", model.VibeGeneric},
		{"dale", model.VibeGeneric},
		{"quilombo", model.VibeGeneric},
		{"janguear", model.VibeGeneric},
		{"piola", model.VibeGeneric},
		{"morro", model.VibeGeneric},
		{"bacán", model.VibeGeneric},
		{"weón", model.VibeGeneric},
		{"birra", model.VibeGeneric},
		{"chela", model.VibeGeneric},
		{"facha", model.VibeGeneric},
		{"tranqui", model.VibeChill},
	}

	out := make([]model.VibePhrase, len(seed))
	for i, s := range seed {
		out[i] = model.VibePhrase{Phrase: s.phrase, Vibe: s.vibe, Rank: model.DefaultPhraseRank}
	}
	return out
}
