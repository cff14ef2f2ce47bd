package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"advisor-api/internal/svc"
	"advisor-api/internal/types"
	"advisor-api/pkg/advisor"
)

type ChatLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewChatLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ChatLogic {
	return &ChatLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *ChatLogic) Chat(req *types.ChatReq) (*advisor.ChatResult, error) {
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

	return l.svcCtx.Engine.Chat(l.ctx, &advisor.ChatRequest{
		Portfolio:       portfolio,
		Cash:            cash,
		InvestmentGoals: req.InvestmentGoals,
		Chat:            req.Chat,
		ConversationID:  conversationID,
		UserRef:         req.UserRef,
		Debug:           req.Debug,
	})
}
