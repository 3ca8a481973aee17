package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/spanner"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	app "github.com/murkotick/marketplace-service/internal/app/marketplace"
	contracts "github.com/murkotick/marketplace-service/internal/app/marketplace/contracts"
	"github.com/murkotick/marketplace-service/internal/app/marketplace/queries"
	"github.com/murkotick/marketplace-service/internal/config"
	"github.com/murkotick/marketplace-service/internal/payments"
	"github.com/murkotick/marketplace-service/internal/pkg/clock"
	committer "github.com/murkotick/marketplace-service/internal/pkg/committer"
	"github.com/murkotick/marketplace-service/internal/pkg/keyedlog"
	"github.com/murkotick/marketplace-service/internal/pkg/logging"
	"github.com/murkotick/marketplace-service/internal/pkg/memstore"
	grpcmarketplace "github.com/murkotick/marketplace-service/internal/transport/grpc/marketplace"
	httpmarketplace "github.com/murkotick/marketplace-service/internal/transport/http/marketplace"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "marketplace-server",
		Short: "Product catalog and order ledger service",
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the gRPC and HTTP servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	root.AddCommand(serve)
	return root
}

// storage is the backend the keyed logs and the outbox run on.
type storage struct {
	reader    keyedlog.Reader
	committer contracts.Committer
	outbox    contracts.OutboxReader
	close     func()
}

func openStorage(ctx context.Context, cfg config.StorageConfig) (*storage, error) {
	switch cfg.Backend {
	case config.StorageSpanner:
		client, err := spanner.NewClient(ctx, cfg.SpannerDatabase)
		if err != nil {
			return nil, fmt.Errorf("spanner.NewClient: %w", err)
		}
		rm := queries.NewSpannerReadModel(client)
		return &storage{reader: rm, committer: committer.NewAdapter(client), outbox: rm, close: client.Close}, nil
	default:
		st := memstore.New()
		return &storage{reader: st, committer: st, outbox: queries.NewMemoryOutboxReader(st), close: func() {}}, nil
	}
}

// paymentBackend is the gateway plus whatever must happen once the app exists.
type paymentBackend struct {
	gateway contracts.PaymentGateway
	// bind hands the callback target to in-process workers.
	bind func(n payments.RefundNotifier)
	stop func()
}

func openPayments(ctx context.Context, cfg config.PaymentsConfig, logger *zap.Logger) (*paymentBackend, error) {
	switch cfg.Backend {
	case config.PaymentsAMQP:
		conn, err := amqp.Dial(cfg.AMQPURL)
		if err != nil {
			return nil, fmt.Errorf("dial rabbitmq: %w", err)
		}
		gw, err := payments.NewAMQPGateway(conn, cfg.BatchQueue)
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		return &paymentBackend{
			gateway: gw,
			bind:    func(payments.RefundNotifier) {},
			stop: func() {
				_ = gw.Close()
				_ = conn.Close()
			},
		}, nil
	default:
		q := payments.NewQueue(0, logger)
		mgr := payments.NewManager(payments.ManagerConfig{
			InitialWorkers: cfg.Workers,
			WorkerMin:      cfg.Workers,
			WorkerMax:      cfg.WorkerMax,
			ScaleInterval:  cfg.ScaleInterval,
			HighWatermark:  cfg.HighWatermark,
		}, q, payments.NewLedger(), nil, logger)
		gw := payments.NewQueueGateway(q)
		return &paymentBackend{
			gateway: gw,
			bind: func(n payments.RefundNotifier) {
				mgr.SetNotifier(n)
				mgr.Start(ctx)
			},
			stop: func() {
				gw.Close()
				drainCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if !mgr.DrainUntil(drainCtx) {
					logger.Warn("payment queue not drained before shutdown")
				}
				mgr.Stop()
			},
		}, nil
	}
}

func run(parent context.Context, cfg config.Config) error {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer st.close()

	pay, err := openPayments(context.Background(), cfg.Payments, logger.Named("payments"))
	if err != nil {
		return err
	}

	clk := clock.RealClock{}
	a, err := app.New(app.Deps{
		Reader:        st.reader,
		Committer:     st.committer,
		Outbox:        st.outbox,
		Gateway:       pay.gateway,
		Clock:         clk,
		Logger:        logger,
		ProductIDSeed: cfg.Catalog.ProductIDSeed,
		OrderIDSeed:   cfg.Catalog.OrderIDSeed,
	})
	if err != nil {
		return err
	}
	self := cfg.ContractAccount
	pay.bind(payments.RefundNotifierFunc(func(ctx context.Context, outcome contracts.RefundOutcome) error {
		call := contracts.CallContext{Caller: self, Self: self, Timestamp: clk.Now()}
		return a.Commands.CompleteRefund.Execute(ctx, call, outcome)
	}))
	defer pay.stop()

	// gRPC server
	srv := grpc.NewServer(grpc.UnaryInterceptor(grpcmarketplace.LoggingInterceptor(logger.Named("grpc"))))
	grpcmarketplace.RegisterMarketplaceServer(srv, grpcmarketplace.NewHandler(a.Commands, a.Queries, clk, self))

	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.GRPC.Addr, err)
	}
	go func() {
		logger.Info("gRPC server listening", zap.String("addr", cfg.GRPC.Addr))
		if err := srv.Serve(lis); err != nil {
			logger.Error("grpc serve", zap.Error(err))
			cancel()
		}
	}()

	// HTTP server
	var httpSrv *http.Server
	if cfg.HTTP.Addr != "" {
		httpSrv = &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           httpmarketplace.NewServer(a.Commands, a.Queries, clk, self, logger.Named("http")).Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("HTTP server listening", zap.String("addr", cfg.HTTP.Addr))
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http serve", zap.Error(err))
				cancel()
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutdown signal received")

	if httpSrv != nil {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		_ = httpSrv.Shutdown(shutdownCtx)
		cancelShutdown()
	}

	stopped := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		srv.Stop()
	}

	logger.Info("server stopped")
	return nil
}
