package advisor

import "strings"

// Aggregate groups parsed records by account. Records with a blank or
// unknown account land in "Default". Emission order is preserved both in
// the flat list and within each group; the two views share record
// instances. Recurring records never enter the per-account map.
func Aggregate(parsed *ParsedOutput, knownAccounts map[string]bool) *RecommendationResult {
	result := &RecommendationResult{
		Recommendations:          make([]*RecommendationRecord, 0, len(parsed.Records)),
		RecommendationsByAccount: make(map[string][]*RecommendationRecord),
		RecurringInvestments:     parsed.RecurringInvestments,
		Feedback:                 parsed.Feedback,
		AnalysisText:             parsed.Narrative,
		Warnings:                 parsed.Warnings,
	}

	for _, record := range parsed.Records {
		account := strings.TrimSpace(record.Account)
		if account == "" || (knownAccounts != nil && !knownAccounts[account]) {
			account = DefaultAccount
		}
		record.Account = account
		result.Recommendations = append(result.Recommendations, record)
		result.RecommendationsByAccount[account] = append(result.RecommendationsByAccount[account], record)
	}

	for _, record := range result.RecurringInvestments {
		if strings.TrimSpace(record.Account) == "" {
			record.Account = DefaultAccount
		}
	}

	return result
}
