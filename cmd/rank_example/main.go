// Command rank_example prints rank explanations for a sample day of phrase analytics.
package main

import (
	"fmt"
	"strings"

	"github.com/gcbaptista/vibe-rank/internal/rank"
	"github.com/gcbaptista/vibe-rank/model"
)

func examplePhrases() []model.RankInput {
	return []model.RankInput{
		{Vibe: model.VibeProductivo, ChartPos: model.ChartPosition(1), FreqLyrics: 0.85, TikTokHits: 15000, MaxTikTok: 20000},
		{Vibe: model.VibePerrea, ChartPos: model.ChartPosition(3), FreqLyrics: 0.92, TikTokHits: 18000, MaxTikTok: 20000},
		{Vibe: model.VibeSad, FreqLyrics: 0.45, TikTokHits: 8000, MaxTikTok: 20000},
		{Vibe: model.VibeChill, ChartPos: model.ChartPosition(15), FreqLyrics: 0.67, TikTokHits: 12000, MaxTikTok: 20000},
		{Vibe: model.VibeEco, FreqLyrics: 0.23, TikTokHits: 3000, MaxTikTok: 20000},
	}
}

func chartLabel(pos *int) string {
	if pos == nil || *pos == 0 {
		return "Not charting"
	}
	return fmt.Sprintf("%d", *pos)
}

func main() {
	inputs := examplePhrases()

	fmt.Println("Phrase Ranking Example")
	fmt.Println()

	for _, input := range inputs {
		explanation := rank.ExplainRank(input)
		fmt.Printf("%s\n", strings.ToUpper(string(input.Vibe)))
		fmt.Printf("   Chart Position: %s\n", chartLabel(input.ChartPos))
		fmt.Printf("   Lyrics Frequency: %.1f%%\n", input.FreqLyrics*100)
		fmt.Printf("   TikTok Hits: %.0f\n", input.TikTokHits)
		fmt.Printf("   Final Rank: %g\n", explanation.Rank)
		fmt.Printf("   Components:\n")
		fmt.Printf("     - Popularity: %g\n", explanation.Components.Popularity)
		fmt.Printf("     - Frequency: %g\n", explanation.Components.Frequency)
		fmt.Printf("     - Buzz: %g\n", explanation.Components.Buzz)
		fmt.Printf("     - Boost: %gx\n", explanation.Components.Boost)
		fmt.Println()
	}

	fmt.Println("Top 3 Ranked Vibes:")
	for i, result := range rank.GetTopRankedVibes(inputs, 3) {
		fmt.Printf("   %d. %s (%g)\n", i+1, result.Vibe, result.Rank)
	}
}
