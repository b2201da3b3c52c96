package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"hyperliquid-perps/internal/audit"
	"hyperliquid-perps/internal/config"
	"hyperliquid-perps/internal/execution"
	"hyperliquid-perps/internal/hyperliquid"
	"hyperliquid-perps/internal/lit"
	"hyperliquid-perps/internal/precheck"
	"hyperliquid-perps/internal/store"
)

// App 聚合核心依赖并驱动系统生命周期。
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store
}

// New 创建 App 实例。
func New(cfg *config.Config, logger *zap.Logger, store *store.Store) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
		store:  store,
	}
}

// Run 装配两阶段处理链并以 HTTP 服务对宿主暴露，阻塞至收到退出信号。
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("能力服务已初始化",
		zap.String("environment", a.cfg.App.Environment),
		zap.String("hyperliquid_api", a.cfg.Hyperliquid.APIURL),
		zap.String("lit_network", a.cfg.Lit.Network),
	)

	auditSvc, err := audit.NewService(a.store, a.logger)
	if err != nil {
		return err
	}

	delegator, err := lit.AddressFromPKPPublicKey(a.cfg.Delegation.PKPPublicKey)
	if err != nil {
		return fmt.Errorf("解析 PKP 公钥失败: %w", err)
	}

	info := hyperliquid.NewInfoClient(a.cfg.Hyperliquid.APIURL, a.cfg.Hyperliquid.Timeout, a.logger)
	evaluator := precheck.NewEvaluator(info, a.logger)

	litProvider := lit.NewProvider(lit.Config{
		NodeURL: a.cfg.Lit.NodeURL,
		Network: a.cfg.Lit.Network,
		Timeout: a.cfg.Lit.Timeout,
	}, a.logger)

	sessions := execution.SessionProviderFunc(func(ctx context.Context, pkpPublicKey, delegateeKey string) (hyperliquid.Wallet, error) {
		session, err := litProvider.Acquire(ctx, pkpPublicKey, delegateeKey)
		if err != nil {
			return nil, err
		}
		return session.Wallet(), nil
	})

	factory := execution.SubmitterFactory(func(wallet hyperliquid.Wallet) execution.OrderSubmitter {
		return hyperliquid.NewExchangeClient(a.cfg.Hyperliquid.APIURL, wallet, info, a.cfg.Hyperliquid.Timeout, a.logger)
	})

	orchestrator := execution.NewOrchestrator(sessions, factory, info, a.logger)

	srv := newServer(serverDeps{
		evaluator:    evaluator,
		orchestrator: orchestrator,
		audit:        auditSvc,
		delegator:    delegator,
		pkpPublicKey: a.cfg.Delegation.PKPPublicKey,
		logger:       a.logger,
	})

	httpSrv := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:      srv.routes(),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		a.logger.Info("宿主接口已启动", zap.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("宿主接口异常: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownTimeout := a.cfg.Server.ShutdownTimeout
		if shutdownTimeout <= 0 {
			shutdownTimeout = 5 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Warn("关闭宿主接口失败", zap.Error(err))
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		return err
	}

	a.logger.Info("系统收到退出信号，已停止")
	return nil
}
