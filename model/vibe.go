package model

// Vibe is a categorical mood/style tag. It classifies phrases and keys the boost table.
type Vibe string

const (
	VibeCorridos   Vibe = "corridos"
	VibePerrea     Vibe = "perrea"
	VibeSad        Vibe = "sad"
	VibeChill      Vibe = "chill"
	VibeTraka      Vibe = "traka"
	VibeProductivo Vibe = "productivo"
	VibeEco        Vibe = "eco"
	VibeKCute      Vibe = "k-cute"
	VibeGeneric    Vibe = "generic"
)

// KnownVibes returns the recognized vibe tags in their canonical order
func KnownVibes() []Vibe {
	return []Vibe{
		VibeCorridos,
		VibePerrea,
		VibeSad,
		VibeChill,
		VibeTraka,
		VibeProductivo,
		VibeEco,
		VibeKCute,
		VibeGeneric,
	}
}

// IsKnown reports whether v is one of the recognized vibe tags
func (v Vibe) IsKnown() bool {
	for _, known := range KnownVibes() {
		if v == known {
			return true
		}
	}
	return false
}
