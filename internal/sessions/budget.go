package sessions

import "github.com/max-de-bug/zoidclaw/pkg/models"

// estimateTokens approximates a message's token cost as its character
// count divided by 4, floored at 1, per spec §4.2.
func estimateTokens(msg models.ChatMessage) int {
	n := len(msg.Content) / 4
	if n < 1 {
		return 1
	}
	return n
}

// withinBudget implements GetHistoryWithinBudget's walk-from-the-tail
// rule shared by every Store implementation: include each message, from
// the most recent backwards, so long as its estimated cost plus the
// running total stays within maxTokens. The most recent message is
// always included even if it alone exceeds the budget.
func withinBudget(history []models.ChatMessage, maxTokens int) []models.ChatMessage {
	if len(history) == 0 {
		return nil
	}

	total := 0
	start := len(history)
	for i := len(history) - 1; i >= 0; i-- {
		cost := estimateTokens(history[i])
		if i < len(history)-1 && total+cost > maxTokens {
			break
		}
		total += cost
		start = i
	}
	out := make([]models.ChatMessage, len(history)-start)
	copy(out, history[start:])
	return out
}
