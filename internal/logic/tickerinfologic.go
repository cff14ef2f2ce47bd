package logic

import (
	"context"
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"advisor-api/internal/svc"
	"advisor-api/internal/types"
	"advisor-api/pkg/advisor"
)

type TickerInfoLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewTickerInfoLogic(ctx context.Context, svcCtx *svc.ServiceContext) *TickerInfoLogic {
	return &TickerInfoLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *TickerInfoLogic) TickerInfo(req *types.TickerInfoReq) (*types.TickerInfoResp, error) {
	symbol := strings.TrimSpace(req.Symbol)
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", advisor.ErrInvalidRequest)
	}

	quote, err := l.svcCtx.Market.Lookup(l.ctx, symbol)
	if err != nil {
		return nil, err
	}

	resp := &types.TickerInfoResp{
		Ticker:    quote.Ticker,
		UnitPrice: quote.UnitPrice.StringFixed(2),
		AssetType: string(quote.AssetType),
		Sector:    quote.Sector,
	}
	if !quote.MarketCap.IsZero() {
		resp.MarketCap = quote.MarketCap.String()
	}
	return resp, nil
}
