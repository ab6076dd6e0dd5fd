package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/medichain/medichain/adapters/chain"
	"github.com/medichain/medichain/adapters/events"
	"github.com/medichain/medichain/adapters/store"
	"github.com/medichain/medichain/adapters/tokenizer"
	"github.com/medichain/medichain/internal/config"
	"github.com/medichain/medichain/ports"
	"github.com/medichain/medichain/service"
	transport "github.com/medichain/medichain/transport/http"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "medichain",
		Short: "DID healthcare-data platform API",
	}

	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

func runServer(ctx context.Context) error {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.IsDev() {
		log = log.Level(zerolog.DebugLevel)
	}

	// Redis backs both the challenge store and the revocation store, and
	// carries the event stream.
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}
	redisClient := redis.NewClient(opts)
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}

	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{Client: redisClient},
		watermill.NewStdLogger(false, false),
	)
	if err != nil {
		return fmt.Errorf("create event publisher: %w", err)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.ChainPrivateKey, "0x"))
	if err != nil {
		return fmt.Errorf("parse chain private key: %w", err)
	}

	chainClient, err := chain.Dial(ctx, cfg.ChainRPCURL, key)
	if err != nil {
		return fmt.Errorf("connect to chain: %w", err)
	}
	defer chainClient.Close()

	didRegistryAddr, err := contractAddress(cfg, config.ContractDIDRegistry)
	if err != nil {
		return err
	}
	didAuthAddr, err := contractAddress(cfg, config.ContractDIDAuth)
	if err != nil {
		return err
	}

	didRegistry := chain.NewDIDRegistry(chainClient, didRegistryAddr)
	authRegistry := chain.NewDIDAuth(chainClient, didAuthAddr)

	var checker ports.SignatureChecker
	if cfg.HasContract(config.ContractDIDVerifier) {
		addr, err := contractAddress(cfg, config.ContractDIDVerifier)
		if err != nil {
			return err
		}
		checker = chain.NewDIDVerifier(chainClient, addr)
	}

	redisStore := store.NewRedisStore(redisClient)
	eventPub := events.NewWatermillPublisher(publisher)
	tok := tokenizer.NewJWTTokenizer([]byte(cfg.JWTAccessSecret), []byte(cfg.JWTRefreshSecret))
	roles := service.NewRoleResolver(authRegistry, log)

	authService := service.NewAuthService(tok, redisStore, redisStore, didRegistry, roles, checker, eventPub, log).
		WithTTLs(cfg.ChallengeTTL, cfg.AccessTTL, cfg.RefreshTTL)

	services := transport.Services{
		Auth: authService,
		DID:  service.NewDIDService(didRegistry, eventPub, log),
	}

	if cfg.HasContract(config.ContractDataRegistry) {
		addr, err := contractAddress(cfg, config.ContractDataRegistry)
		if err != nil {
			return err
		}
		services.Records = service.NewRecordService(chain.NewDataRegistry(chainClient, addr), log)
	}

	if cfg.HasContract(config.ContractConsent) {
		addr, err := contractAddress(cfg, config.ContractConsent)
		if err != nil {
			return err
		}
		services.Consent = service.NewConsentService(chain.NewConsentRegistry(chainClient, addr), log)
	}

	if cfg.HasContract(config.ContractCompensation) && cfg.HasContract(config.ContractToken) {
		compAddr, err := contractAddress(cfg, config.ContractCompensation)
		if err != nil {
			return err
		}
		tokenAddr, err := contractAddress(cfg, config.ContractToken)
		if err != nil {
			return err
		}
		services.Compensation = service.NewCompensationService(chain.NewCompensation(chainClient, compAddr, tokenAddr), log)
	}

	router := transport.SetupRouter(services)

	log.Info().
		Str("port", cfg.Port).
		Dur("access_ttl", cfg.AccessTTL).
		Dur("refresh_ttl", cfg.RefreshTTL).
		Msg("starting server")

	if err := router.Run(":" + cfg.Port); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}

	return nil
}

func contractAddress(cfg *config.Config, name string) (common.Address, error) {
	addr, err := cfg.Contract(name)
	if err != nil {
		return common.Address{}, err
	}
	if !common.IsHexAddress(addr) {
		return common.Address{}, fmt.Errorf("contract %s address %q is not a valid hex address", name, addr)
	}
	return common.HexToAddress(addr), nil
}
