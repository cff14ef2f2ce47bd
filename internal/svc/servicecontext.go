package svc

import (
	"log"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"advisor-api/internal/config"
	"advisor-api/internal/store"
	"advisor-api/pkg/advisor"
	llmpkg "advisor-api/pkg/llm"
	marketpkg "advisor-api/pkg/marketdata"
)

type ServiceContext struct {
	Config config.Config

	Gateway *llmpkg.Gateway
	Market  marketpkg.Provider
	Store   advisor.Store
	Engine  *advisor.Engine

	DBConn sqlx.SqlConn
}

func NewServiceContext(c config.Config) *ServiceContext {
	svc := &ServiceContext{Config: c}

	if c.LLM.Value == nil {
		log.Fatal("llm config section is required")
	}
	gateway, err := llmpkg.NewGateway(c.LLM.Value)
	if err != nil {
		log.Fatalf("failed to build llm gateway: %v", err)
	}
	svc.Gateway = gateway

	// Without a market section the service falls back to the static sim
	// provider, which is enough for dev and test.
	if c.Market.Value != nil {
		market, err := c.Market.Value.BuildDefault()
		if err != nil {
			log.Fatalf("failed to build market provider: %v", err)
		}
		svc.Market = market
	} else {
		market, err := marketpkg.NewSimProvider(nil)
		if err != nil {
			log.Fatalf("failed to build sim market provider: %v", err)
		}
		svc.Market = market
	}

	if dsn := c.Postgres.DSN; dsn != "" {
		conn := sqlx.NewSqlConn("pgx", dsn)
		if db, err := conn.RawDB(); err == nil {
			db.SetMaxOpenConns(c.Postgres.MaxOpen)
			db.SetMaxIdleConns(c.Postgres.MaxIdle)
		}
		svc.DBConn = conn
		svc.Store = store.NewSQLStore(conn)
	} else {
		svc.Store = advisor.NewMemoryStore()
	}

	engine, err := advisor.NewEngine(svc.Gateway, svc.Market, svc.Store)
	if err != nil {
		log.Fatalf("failed to build advisor engine: %v", err)
	}
	svc.Engine = engine

	return svc
}
