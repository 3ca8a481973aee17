package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	contracts "github.com/murkotick/marketplace-service/internal/app/marketplace/contracts"
	"github.com/murkotick/marketplace-service/internal/app/marketplace/domain"
	"github.com/murkotick/marketplace-service/internal/config"
	"github.com/murkotick/marketplace-service/internal/payments"
	"github.com/murkotick/marketplace-service/internal/pkg/logging"
	"github.com/murkotick/marketplace-service/internal/transport/api"
	grpcmarketplace "github.com/murkotick/marketplace-service/internal/transport/grpc/marketplace"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		target     string
	)

	root := &cobra.Command{
		Use:   "settlement-worker",
		Short: "Bridges the settlement queue and the marketplace refund callback",
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	consume := &cobra.Command{
		Use:   "consume",
		Short: "Deliver settlement notifications to OnRefundComplete over gRPC",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if target == "" {
				target = cfg.GRPC.Addr
			}
			return runConsume(cmd.Context(), cfg, target)
		},
	}
	consume.Flags().StringVar(&target, "target", "", "marketplace gRPC address (defaults to grpc.addr)")

	simulate := &cobra.Command{
		Use:   "simulate",
		Short: "Settle published batches against an in-memory ledger and publish the outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return runSimulate(cmd.Context(), cfg)
		},
	}

	root.AddCommand(consume, simulate)
	return root
}

func runConsume(parent context.Context, cfg config.Config, target string) error {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cc, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("dial %s: %w", target, err)
	}
	defer cc.Close()
	client := grpcmarketplace.NewClient(cc)

	conn, err := amqp.Dial(cfg.Payments.AMQPURL)
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}
	defer conn.Close()

	handle := callbackHandler(client, cfg.ContractAccount)
	err = payments.ConsumeSettlements(ctx, conn, cfg.Payments.SettlementQueue, handle, logger)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// callbackHandler reports outcomes as the service account. Rejections that
// retrying cannot fix drop the message.
func callbackHandler(client *grpcmarketplace.Client, self string) payments.SettlementHandler {
	return func(ctx context.Context, outcome contracts.RefundOutcome) error {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		ctx = grpcmarketplace.WithCallContext(ctx, self, domain.Amount{})

		_, err := client.OnRefundComplete(ctx, &api.OnRefundCompleteRequest{
			OrderID: outcome.OrderID,
			BatchID: outcome.BatchID,
			Settled: outcome.Settled,
			Reason:  outcome.Reason,
		})
		switch status.Code(err) {
		case codes.OK:
			return nil
		case codes.NotFound, codes.InvalidArgument, codes.PermissionDenied:
			return fmt.Errorf("%w: %v", payments.ErrDropMessage, err)
		default:
			return err
		}
	}
}

func runSimulate(parent context.Context, cfg config.Config) error {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	conn, err := amqp.Dial(cfg.Payments.AMQPURL)
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}
	defer conn.Close()

	sim := payments.NewSimulator(conn, cfg.Payments.BatchQueue, cfg.Payments.SettlementQueue, payments.NewLedger(), logger.Named("simulator"))
	err = sim.Run(ctx)
	if ctx.Err() != nil {
		logger.Info("simulator stopped", zap.Error(ctx.Err()))
		return nil
	}
	return err
}
