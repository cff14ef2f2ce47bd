package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest"

	"advisor-api/internal/svc"
)

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodPost,
				Path:    "/api/v1/portfolio/analyze",
				Handler: AnalyzeHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/api/v1/portfolio/recommend",
				Handler: RecommendHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/api/v1/portfolio/chat",
				Handler: ChatHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/v1/tickers/:symbol",
				Handler: TickerInfoHandler(serverCtx),
			},
		},
	)
}
