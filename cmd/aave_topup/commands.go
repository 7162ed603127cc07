package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"aave_topup/internal/app/service"
	"aave_topup/internal/infrastructure/configloader"
	"aave_topup/internal/infrastructure/restapi"
	"aave_topup/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Serve the health factor value source polled by TriggerX",
		Action: serve,
	}
}

func RegisterCommand() *cli.Command {
	return &cli.Command{
		Name:   "register",
		Usage:  "Resolve the Safe wallet and register the auto top-up job",
		Action: register,
	}
}

func CreateSafeCommand() *cli.Command {
	return &cli.Command{
		Name:   "create-safe",
		Usage:  "Create a Safe wallet through the factory and save its address",
		Action: createSafe,
	}
}

func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "List registered TriggerX jobs next to the current health factor",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "owner", Usage: "job owner address, defaults to the monitored user"},
		},
		Action: status,
	}
}

func CheckCommand() *cli.Command {
	return &cli.Command{
		Name:   "check",
		Usage:  "Run the registration diagnostics without submitting a job",
		Action: check,
	}
}

func serve(c *cli.Context) error {
	rt, err := newRuntime(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	gin.SetMode(gin.ReleaseMode)
	if rt.cfg.Logging.Development {
		gin.SetMode(gin.DebugMode)
	}

	handler := restapi.NewHealthHandler(rt.monitor, rt.cfg.SettleDelay(), rt.log)
	router := restapi.SetupRouter(handler, restapi.RouterOptions{
		Logger:           rt.zapLogger,
		CORSAllowOrigins: rt.cfg.Server.CORSAllowOrigins,
		EnableSwagger:    rt.cfg.Server.EnableSwagger,
		EnablePprof:      rt.cfg.Server.EnablePprof,
	})

	srv := &http.Server{
		Addr:         rt.cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(rt.cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(rt.cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(rt.cfg.Server.IdleTimeoutSeconds) * time.Second,
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rt.zapLogger.Info("Server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		rt.zapLogger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	logEndpoints(rt)

	if err := g.Wait(); err != nil {
		rt.zapLogger.Error("Server stopped with error", zap.Error(err))
		return err
	}
	rt.zapLogger.Info("Server exiting")
	return nil
}

func logEndpoints(rt *runtime) {
	base := rt.cfg.Server.PublicURL
	if base == "" {
		base = "http://localhost" + rt.cfg.Server.Port
	}
	base = strings.TrimRight(base, "/")
	user := rt.user.Hex()

	rt.zapLogger.Info("Value source endpoints",
		zap.String("healthFactor", base+"/health-factor/"+user),
		zap.String("debug", base+"/debug-health/"+user),
		zap.String("accountData", base+"/account-data/"+user),
		zap.String("verify", base+"/verify-execution/"+user),
		zap.String("threshold", rt.monitor.Threshold().String()),
	)
}

func register(c *cli.Context) error {
	rt, err := newRuntime(c, configloader.RequireScheduler, configloader.RequirePublicURL)
	if err != nil {
		return err
	}
	defer rt.Close()

	wallet, _, err := rt.safeCoordinator(true)
	if err != nil {
		return err
	}
	registrar, err := rt.jobRegistrar(wallet)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(c.Context, rt)
	defer cancel()

	safe, err := wallet.Resolve(ctx)
	if err != nil {
		return err
	}
	rt.log.Info("Safe wallet resolved", "safe", safe.Hex(), "state", wallet.Handle().State.String())

	result, err := registrar.RegisterTopUpJob(ctx, rt.user, rt.cfg.Server.PublicURL)
	if err != nil {
		if result.Error != nil {
			fmt.Fprintf(c.App.Writer, "Job registration failed: %s\n", result.Error.Error())
			for k, v := range result.Error.Details {
				fmt.Fprintf(c.App.Writer, "  %s: %v\n", k, v)
			}
		}
		return err
	}

	fmt.Fprintf(c.App.Writer, "Job registered\n  job ids: %s\n  safe:    %s\n  source:  %s\n",
		strings.Join(result.JobIDs, ", "), safe.Hex(), strings.TrimRight(rt.cfg.Server.PublicURL, "/")+"/health-factor/"+rt.user.Hex())
	return nil
}

func createSafe(c *cli.Context) error {
	rt, err := newRuntime(c, configloader.RequireSigner, configloader.RequireSafeFactory)
	if err != nil {
		return err
	}
	defer rt.Close()

	creator, err := rt.safeCreator()
	if err != nil {
		return err
	}
	owner, err := rt.owner()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context, rt.cfg.TxTimeout())
	defer cancel()

	wallet := service.NewSafeWalletCoordinator("", owner, creator, rt.log).PersistTo(rt.safeStore())
	safe, err := wallet.Resolve(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Safe wallet created: %s\nSaved to %s\n", safe.Hex(), rt.cfg.Safe.AddressFile)
	return nil
}

func status(c *cli.Context) error {
	rt, err := newRuntime(c, configloader.RequireScheduler)
	if err != nil {
		return err
	}
	defer rt.Close()

	owner := rt.user
	if raw := c.String("owner"); raw != "" {
		if owner, err = utils.ParseAddress(raw); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(c.Context, rt.cfg.SchedulerTimeout()+rt.cfg.RPCCallTimeout())
	defer cancel()

	report, err := service.NewJobStatusService(rt.scheduler(), rt.monitor, rt.log).Status(ctx, owner, rt.user)
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Health factor: %s (%s, threshold %s)\n",
		report.Assessment.Value.String(), report.Assessment.Classification, report.Assessment.Threshold.String())
	if len(report.Jobs) == 0 {
		fmt.Fprintf(w, "No jobs registered for %s\n", owner.Hex())
		return nil
	}
	fmt.Fprintf(w, "Jobs for %s:\n", owner.Hex())
	for _, j := range report.Jobs {
		fmt.Fprintf(w, "  #%s %q status=%s active=%t condition=%s [%g, %g]\n    source: %s\n",
			j.JobID, j.Title, j.Status, j.Active, j.ConditionType, j.LowerLimit, j.UpperLimit, j.ValueSourceURL)
		if !j.LastExecutedAt.IsZero() {
			fmt.Fprintf(w, "    last executed: %s\n", j.LastExecutedAt.Format(time.RFC3339))
		}
	}
	return nil
}

func check(c *cli.Context) error {
	rt, err := newRuntime(c, configloader.RequirePublicURL)
	if err != nil {
		return err
	}
	defer rt.Close()

	wallet, known, err := rt.safeCoordinator(false)
	if err != nil {
		return err
	}
	if known {
		if _, err := wallet.Resolve(c.Context); err != nil {
			return err
		}
	} else {
		rt.log.Warn("No Safe wallet configured or persisted, the code check is skipped")
	}

	registrar, err := rt.jobRegistrar(wallet)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context, rt.cfg.ProbeTimeout()+rt.cfg.RPCCallTimeout())
	defer cancel()

	report, err := registrar.Preflight(ctx, rt.user, rt.cfg.Server.PublicURL)
	if err != nil {
		return err
	}
	current := rt.monitor.HealthFactor(ctx, rt.user)

	w := c.App.Writer
	fmt.Fprintf(w, "Value source: %s\n", report.ValueSourceURL)
	if report.ChainErr != nil {
		fmt.Fprintf(w, "  RPC:         unreachable (%v)\n", report.ChainErr)
	} else {
		fmt.Fprintf(w, "  RPC:         chain id %s (configured %d)\n", report.ChainID, rt.cfg.Chain.ChainID)
	}
	switch {
	case report.SafeAddress == (common.Address{}):
		fmt.Fprintf(w, "  Safe:        not resolved\n")
	case report.SafeCodeErr != nil:
		fmt.Fprintf(w, "  Safe:        %s (code check failed: %v)\n", report.SafeAddress.Hex(), report.SafeCodeErr)
	default:
		fmt.Fprintf(w, "  Safe:        %s (contract code: %t)\n", report.SafeAddress.Hex(), report.SafeHasCode)
	}
	if report.Probe.OK() {
		fmt.Fprintf(w, "  Probe:       %d %s in %s\n", report.Probe.StatusCode, report.Probe.Value.String(), report.Probe.Latency)
	} else {
		fmt.Fprintf(w, "  Probe:       failed (status %d, body %q, error %v)\n", report.Probe.StatusCode, report.Probe.Body, report.Probe.Err)
	}
	fmt.Fprintf(w, "  Health:      %s (%s)\n", current.Value.String(), current.Classification)
	return nil
}
