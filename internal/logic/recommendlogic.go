package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"advisor-api/internal/svc"
	"advisor-api/internal/types"
	"advisor-api/pkg/advisor"
)

type RecommendLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRecommendLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RecommendLogic {
	return &RecommendLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *RecommendLogic) Recommend(req *types.RecommendReq) (*advisor.RecommendationResult, error) {
	portfolio, err := parsePortfolio(req.Portfolio)
	if err != nil {
		return nil, err
	}
	cash, err := parseCash(req.Cash, "cash")
	if err != nil {
		return nil, err
	}
	monthlyCash, err := parseCash(req.MonthlyCash, "monthly_cash")
	if err != nil {
		return nil, err
	}
	conversationID, err := parseConversationID(req.ConversationID)
	if err != nil {
		return nil, err
	}

	return l.svcCtx.Engine.Recommend(l.ctx, &advisor.RecommendRequest{
		AnalyzeRequest: advisor.AnalyzeRequest{
			Portfolio:       portfolio,
			Cash:            cash,
			InvestmentGoals: req.InvestmentGoals,
			ConversationID:  conversationID,
			UserRef:         req.UserRef,
			Debug:           req.Debug,
		},
		Chat:        req.Chat,
		MonthlyCash: monthlyCash,
	})
}
