package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"advisor-api/internal/svc"
	"advisor-api/internal/types"
	"advisor-api/pkg/advisor"
)

type AnalyzeLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewAnalyzeLogic(ctx context.Context, svcCtx *svc.ServiceContext) *AnalyzeLogic {
	return &AnalyzeLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *AnalyzeLogic) Analyze(req *types.AnalyzeReq) (*advisor.AnalysisResult, error) {
	portfolio, err := parsePortfolio(req.Portfolio)
	if err != nil {
		return nil, err
	}
	cash, err := parseCash(req.Cash, "cash")
	if err != nil {
		return nil, err
	}
	conversationID, err := parseConversationID(req.ConversationID)
	if err != nil {
		return nil, err
	}

	return l.svcCtx.Engine.Analyze(l.ctx, &advisor.AnalyzeRequest{
		Portfolio:       portfolio,
		Cash:            cash,
		InvestmentGoals: req.InvestmentGoals,
		ConversationID:  conversationID,
		UserRef:         req.UserRef,
		Debug:           req.Debug,
	})
}
