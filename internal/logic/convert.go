package logic

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"advisor-api/internal/types"
	"advisor-api/pkg/advisor"
)

func parsePortfolio(assets []types.AssetPayload) ([]advisor.AssetInput, error) {
	if len(assets) == 0 {
		return nil, nil
	}
	result := make([]advisor.AssetInput, 0, len(assets))
	for i, a := range assets {
		input := advisor.AssetInput{
			Symbol:  strings.TrimSpace(a.Symbol),
			Account: strings.TrimSpace(a.Account),
		}
		if input.Symbol == "" {
			return nil, fmt.Errorf("%w: asset %d: symbol is required", advisor.ErrInvalidRequest, i)
		}
		if a.Shares != "" {
			shares, err := parseAmount(a.Shares)
			if err != nil {
				return nil, fmt.Errorf("%w: asset %s: bad shares %q", advisor.ErrInvalidRequest, input.Symbol, a.Shares)
			}
			input.Shares = &shares
		}
		if a.Value != "" {
			value, err := parseAmount(a.Value)
			if err != nil {
				return nil, fmt.Errorf("%w: asset %s: bad value %q", advisor.ErrInvalidRequest, input.Symbol, a.Value)
			}
			input.Value = &value
		}
		result = append(result, input)
	}
	return result, nil
}

func parseCash(raw, field string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, nil
	}
	amount, err := parseAmount(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: bad %s %q", advisor.ErrInvalidRequest, field, raw)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s cannot be negative", advisor.ErrInvalidRequest, field)
	}
	return amount, nil
}

// parseAmount accepts plain decimals plus the human forms "$1,234.56".
func parseAmount(raw string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(raw))
	return decimal.NewFromString(cleaned)
}

func parseConversationID(raw string) (*uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: bad conversation_id %q", advisor.ErrInvalidRequest, raw)
	}
	return &id, nil
}
