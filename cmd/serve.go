package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"github.com/Oumaima1mal/task-pilot-front/internal/channel"
	httpapi "github.com/Oumaima1mal/task-pilot-front/internal/http"
	"github.com/Oumaima1mal/task-pilot-front/internal/logging"
	"github.com/Oumaima1mal/task-pilot-front/internal/reminders"
	"github.com/Oumaima1mal/task-pilot-front/internal/services"
	model "github.com/Oumaima1mal/task-pilot-front/pkg/models"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the client runtime and its local API",
	Long:  "Loads tasks and groups, keeps the push channel open and exposes the state over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		push := channel.New(cfg.WSURL, a.session, time.Duration(cfg.ReconnectDelaySeconds)*time.Second)
		notifications := services.NewNotificationService(a.notificationAPI, a.session, push, reminders.LogNotifier{})
		defer notifications.Close()

		loop := services.NewSyncLoop(map[string]services.Refresher{
			services.TargetTasks:  a.tasks,
			services.TargetGroups: a.groups,
		}, time.Duration(cfg.SyncIntervalSeconds)*time.Second, 16)

		notifications.OnPush(func(n model.Notification) {
			if n.TacheID != nil {
				logging.Logger.WithField("task", strconv.FormatInt(*n.TacheID, 10)).Debug("push references a task, refreshing")
				loop.Enqueue(services.TargetTasks)
			}
		})

		go func() {
			if err := push.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logging.Logger.Errorf("push channel stopped: %v", err)
			}
		}()
		go notifications.Run(ctx)

		loop.Enqueue(services.TargetTasks)
		loop.Enqueue(services.TargetGroups)

		e := echo.New()
		e.HideBanner = true
		httpapi.Register(e, httpapi.NewHandler(a.tasks, a.groups, notifications), cfg.RateLimit)

		go func() {
			logging.Logger.Infof("HTTP server listening on %s", cfg.AppURL)
			if err := e.Start(cfg.AppURL); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Logger.Errorf("server stopped: %v", err)
				stop()
			}
		}()

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()

		_ = e.Shutdown(shutdownCtx)
		loop.Shutdown(shutdownCtx)

		logging.Logger.Info("HTTP server and sync loop shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
