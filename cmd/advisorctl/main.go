// advisorctl runs one advisor operation from the command line, without the
// HTTP server. Useful for smoke-testing provider configuration and prompt
// changes against a real portfolio file.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/zeromicro/go-zero/core/logx"

	"advisor-api/internal/cli"
	"advisor-api/internal/config"
	"advisor-api/internal/logic"
	"advisor-api/internal/svc"
	"advisor-api/internal/types"
)

func fatalf(format string, args ...interface{}) {
	logx.Errorf(format, args...)
	os.Exit(1)
}

func loadPortfolio(path string) []types.AssetPayload {
	if path == "" {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		fatalf("read portfolio file: %v", err)
	}
	var assets []types.AssetPayload
	if err := json.Unmarshal(raw, &assets); err != nil {
		fatalf("parse portfolio file %s: %v", path, err)
	}
	return assets
}

func printJSON(v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fatalf("encode result: %v", err)
	}
	fmt.Println(string(out))
}

func main() {
	var (
		configPath     = flag.String("f", "etc/advisor.yaml", "path to the service configuration")
		op             = flag.String("op", "analyze", "operation to run: analyze | recommend | chat")
		portfolioPath  = flag.String("portfolio", "", "path to a JSON portfolio file")
		cash           = flag.String("cash", "0", "uninvested cash on hand")
		goals          = flag.String("goals", "", "investment goals passed to the model")
		chat           = flag.String("chat", "", "free-form question or guidance")
		monthlyCash    = flag.String("monthly-cash", "0", "monthly contribution for the recurring plan")
		conversationID = flag.String("conversation", "", "existing conversation id to continue")
		debug          = flag.Bool("debug", false, "include the provider trace in the output")
	)
	flag.Parse()
	logx.MustSetup(logx.LogConf{})
	logx.DisableStat()

	cfg := config.MustLoad(*configPath)
	cli.LogConfigSummary(cfg)

	svcCtx := svc.NewServiceContext(*cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logx.Infof("received signal %s, cancelling", sig)
		cancel()
	}()

	portfolio := loadPortfolio(*portfolioPath)

	switch strings.ToLower(strings.TrimSpace(*op)) {
	case "analyze":
		result, err := logic.NewAnalyzeLogic(ctx, svcCtx).Analyze(&types.AnalyzeReq{
			Portfolio:       portfolio,
			Cash:            *cash,
			InvestmentGoals: *goals,
			ConversationID:  *conversationID,
			Debug:           *debug,
		})
		if err != nil {
			fatalf("analyze: %v", err)
		}
		printJSON(result)
	case "recommend":
		result, err := logic.NewRecommendLogic(ctx, svcCtx).Recommend(&types.RecommendReq{
			Portfolio:       portfolio,
			Cash:            *cash,
			InvestmentGoals: *goals,
			Chat:            *chat,
			MonthlyCash:     *monthlyCash,
			ConversationID:  *conversationID,
			Debug:           *debug,
		})
		if err != nil {
			fatalf("recommend: %v", err)
		}
		printJSON(result)
	case "chat":
		result, err := logic.NewChatLogic(ctx, svcCtx).Chat(&types.ChatReq{
			Chat:            *chat,
			Portfolio:       portfolio,
			Cash:            *cash,
			InvestmentGoals: *goals,
			ConversationID:  *conversationID,
			Debug:           *debug,
		})
		if err != nil {
			fatalf("chat: %v", err)
		}
		printJSON(result)
	default:
		fatalf("unknown operation %q; expected analyze, recommend, or chat", *op)
	}
}
