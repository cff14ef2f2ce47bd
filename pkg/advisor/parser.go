package advisor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// CashTicker is the hold-as-cash sentinel used in the recurring block.
const CashTicker = "CASH"

// ParseShape tells the parser what the caller expects from the raw text.
type ParseShape struct {
	// ExpectRecords marks responses that should carry recommendation
	// lines; their absence becomes a warning, never an error.
	ExpectRecords bool
	// KnownTickers is the request's portfolio ticker set, used to tag
	// recommendations for assets the caller does not already hold.
	KnownTickers map[string]bool
}

var (
	accountHeaderRe = regexp.MustCompile(`(?i)^#{1,6}\s*ACCOUNT\s*:\s*(.+?)\s*$`)
	recurringHeadRe = regexp.MustCompile(`(?i)^#{1,6}\s*RECURRING\s+INVESTMENTS\b`)
	feedbackHeadRe  = regexp.MustCompile(`(?i)^(?:#{1,6}\s*FEEDBACK\b\s*:?|FEEDBACK\s*:)\s*(.*)$`)

	// Labeled record lines: "- TICKER: AAPL, ACTION: BUY, AMOUNT: 2500, ...".
	// QUANTITY and REASON are accepted as aliases from an earlier format.
	labelRe = regexp.MustCompile(`(?i)\b(TICKER|ACTION|AMOUNT|QUANTITY|ACCOUNT|COMMENTS|REASON)\s*:`)

	// Bare record lines: "MSFT BUY $2,500 Excellent growth".
	bareLineRe = regexp.MustCompile(`^[-*\s]*([A-Za-z][A-Za-z0-9.\-]{0,11})\s+(?i:(BUY|SELL|HOLD))\b[\s:,]*(\$?[\d$,.]+)?\s*(.*)$`)
	// Without a bullet, only an upper-case ticker plus upper-case action
	// counts as a record line.
	strictBareRe = regexp.MustCompile(`^[A-Z][A-Z0-9.\-]{0,11}\s+(BUY|SELL|HOLD)\b`)
)

// Parse extracts narrative text, recommendation records, a recurring
// investment list and a feedback paragraph from raw model output. Malformed
// pieces degrade to warnings; the only hard failure is output with no
// locatable narrative at all. Parsing the same text twice yields the same
// structure.
func Parse(raw string, shape ParseShape) (*ParsedOutput, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: empty response", ErrParseFailed)
	}

	out := &ParsedOutput{}

	const (
		sectionBody = iota
		sectionRecurring
		sectionFeedback
	)
	section := sectionBody
	currentAccount := ""
	var narrative, feedback []string

	for _, rawLine := range strings.Split(raw, "\n") {
		line := strings.TrimSpace(rawLine)

		if section != sectionFeedback {
			if m := feedbackHeadRe.FindStringSubmatch(line); m != nil {
				section = sectionFeedback
				if rest := strings.TrimSpace(m[1]); rest != "" {
					feedback = append(feedback, rest)
				}
				continue
			}
		}

		switch section {
		case sectionFeedback:
			feedback = append(feedback, line)
			continue
		case sectionBody:
			if recurringHeadRe.MatchString(line) {
				section = sectionRecurring
				currentAccount = ""
				continue
			}
		case sectionRecurring:
			// A new account header after the recurring block returns to
			// account-grouped records.
			if accountHeaderRe.MatchString(line) {
				section = sectionBody
			}
		}

		if m := accountHeaderRe.FindStringSubmatch(line); m != nil {
			currentAccount = trimAccountName(m[1])
			continue
		}

		if line == "" {
			if section == sectionBody {
				narrative = append(narrative, "")
			}
			continue
		}

		record, matched := parseRecordLine(line, currentAccount, out)
		if !matched {
			if section == sectionBody {
				narrative = append(narrative, rawLine)
			}
			continue
		}
		if record == nil {
			continue // skipped with warning
		}

		if section == sectionRecurring {
			record.IsRecurring = true
			if record.Action != ActionBuy {
				out.Warnings = append(out.Warnings, ParseWarning{
					Stage:   "recurring",
					Line:    line,
					Message: fmt.Sprintf("recurring investments must be BUY, got %s; dropped", record.Action),
				})
				continue
			}
			tagNewAsset(record, shape.KnownTickers)
			out.RecurringInvestments = append(out.RecurringInvestments, record)
		} else {
			tagNewAsset(record, shape.KnownTickers)
			out.Records = append(out.Records, record)
		}
	}

	out.Narrative = strings.TrimSpace(strings.Join(narrative, "\n"))
	out.Feedback = strings.TrimSpace(strings.Join(feedback, "\n"))

	if out.Narrative == "" && len(out.Records) == 0 && len(out.RecurringInvestments) == 0 && out.Feedback == "" {
		return nil, fmt.Errorf("%w: no narrative or records located", ErrParseFailed)
	}

	if shape.ExpectRecords && len(out.Records) == 0 && len(out.RecurringInvestments) == 0 {
		out.Warnings = append(out.Warnings, ParseWarning{
			Stage:   "records",
			Message: "no recommendation lines found; response degraded to narrative only",
		})
	}

	return out, nil
}

// parseRecordLine attempts both record forms. Returns (nil, true) when the
// line carried record labels but had to be skipped; warnings are appended
// to out. Lines matching neither form stay in the narrative, bulleted or
// not.
func parseRecordLine(line, currentAccount string, out *ParsedOutput) (*RecommendationRecord, bool) {
	if labelRe.MatchString(line) {
		return parseLabeledLine(line, currentAccount, out), true
	}
	if looksLikeRecordLine(line) {
		if record := parseBareLine(line, currentAccount, out); record != nil {
			return record, true
		}
	}
	return nil, false
}

// looksLikeRecordLine guards the bare pattern so prose paragraphs are not
// misread as records: dash/bullet lines qualify, and so do lines opening
// with an upper-case ticker followed by an upper-case action keyword.
func looksLikeRecordLine(line string) bool {
	if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") {
		return true
	}
	return strictBareRe.MatchString(line)
}

func parseLabeledLine(line, currentAccount string, out *ParsedOutput) *RecommendationRecord {
	fields := splitLabeledFields(line)

	ticker := canonicalSymbol(fields["TICKER"])
	if ticker == "" {
		out.Warnings = append(out.Warnings, ParseWarning{
			Stage: "records", Line: line, Message: "record line missing ticker; skipped",
		})
		return nil
	}

	action, ok := ParseAction(fields["ACTION"])
	if !ok {
		out.Warnings = append(out.Warnings, ParseWarning{
			Stage: "records", Line: line,
			Message: fmt.Sprintf("unknown action %q; skipped", fields["ACTION"]),
		})
		return nil
	}

	comments := fields["COMMENTS"]
	if comments == "" {
		comments = fields["REASON"]
	}
	amountRaw := fields["AMOUNT"]
	if amountRaw == "" {
		amountRaw = fields["QUANTITY"]
	}

	record := &RecommendationRecord{
		Ticker:   ticker,
		Action:   action,
		Account:  firstNonEmpty(fields["ACCOUNT"], currentAccount),
		Comments: comments,
	}
	record.Amount = normalizeAmount(amountRaw, record, line, out)
	return record
}

func parseBareLine(line, currentAccount string, out *ParsedOutput) *RecommendationRecord {
	m := bareLineRe.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	action, ok := ParseAction(m[2])
	if !ok {
		return nil
	}
	record := &RecommendationRecord{
		Ticker:   canonicalSymbol(m[1]),
		Action:   action,
		Account:  currentAccount,
		Comments: strings.TrimSpace(m[4]),
	}
	record.Amount = normalizeAmount(m[3], record, line, out)
	return record
}

// splitLabeledFields slices the text between recognized labels so commas
// inside comments survive.
func splitLabeledFields(line string) map[string]string {
	fields := make(map[string]string)
	locs := labelRe.FindAllStringSubmatchIndex(line, -1)
	for i, loc := range locs {
		label := strings.ToUpper(line[loc[2]:loc[3]])
		end := len(line)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		value := strings.TrimSpace(line[loc[1]:end])
		value = strings.TrimRight(value, ", ")
		fields[label] = value
	}
	return fields
}

// normalizeAmount cleans a monetary token ($ and thousands separators) and
// converts it to a decimal. HOLD always normalizes to zero. A token that
// still fails to parse keeps the action as the sole signal: amount zero,
// warning emitted, raw token preserved in the record's comments.
func normalizeAmount(raw string, record *RecommendationRecord, line string, out *ParsedOutput) decimal.Decimal {
	if record.Action == ActionHold {
		return decimal.Zero
	}

	cleaned := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(raw))
	cleaned = strings.TrimRight(cleaned, ".")
	if cleaned != "" {
		if amount, err := decimal.NewFromString(cleaned); err == nil && amount.Sign() >= 0 {
			return amount
		}
	}

	out.Warnings = append(out.Warnings, ParseWarning{
		Stage:   "amount",
		Line:    line,
		Message: fmt.Sprintf("unparseable amount %q; defaulted to 0", raw),
	})
	if raw = strings.TrimSpace(raw); raw != "" {
		note := fmt.Sprintf("(unparsed amount: %s)", raw)
		if record.Comments == "" {
			record.Comments = note
		} else {
			record.Comments += " " + note
		}
	}
	return decimal.Zero
}

// tagNewAsset prefixes comments for tickers absent from the caller's
// portfolio. The cash sentinel is never a new asset.
func tagNewAsset(record *RecommendationRecord, known map[string]bool) {
	if known == nil || known[record.Ticker] || record.Ticker == CashTicker {
		return
	}
	if !strings.HasPrefix(record.Comments, "[NEW ASSET]") {
		record.Comments = strings.TrimSpace("[NEW ASSET] " + record.Comments)
	}
}

func trimAccountName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "[")
	name = strings.TrimSuffix(name, "]")
	return strings.TrimSpace(name)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
