package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/Oumaima1mal/task-pilot-front/internal/auth"
	config "github.com/Oumaima1mal/task-pilot-front/internal/configs"
	"github.com/Oumaima1mal/task-pilot-front/internal/gateway"
	"github.com/Oumaima1mal/task-pilot-front/internal/logging"
	"github.com/Oumaima1mal/task-pilot-front/internal/reminders"
	"github.com/Oumaima1mal/task-pilot-front/internal/services"
	"github.com/Oumaima1mal/task-pilot-front/internal/snapshot"
)

// app is the dependency graph shared by every command.
type app struct {
	store     *snapshot.Advisory
	session   *auth.Session
	reminders *reminders.Scheduler

	authAPI         *gateway.AuthGateway
	taskAPI         *gateway.TaskGateway
	groupAPI        *gateway.GroupGateway
	notificationAPI *gateway.NotificationGateway

	tasks  *services.TaskService
	groups *services.GroupService

	redis rueidis.Client
}

func newSnapshotStore(cfg config.Config) (snapshot.Store, rueidis.Client, error) {
	switch cfg.SnapshotDriver {
	case config.DriverRedis:
		client, err := config.NewRedisClient(cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		return snapshot.NewRedisStore(client, cfg.RedisKeyPrefix), client, nil
	default:
		db, err := config.NewDatabaseClient(cfg.SnapshotDSN)
		if err != nil {
			return nil, nil, err
		}
		store, err := snapshot.NewSQLiteStore(db)
		if err != nil {
			return nil, nil, fmt.Errorf("snapshot migration failed: %w", err)
		}
		return store, nil, nil
	}
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	backend, redisClient, err := newSnapshotStore(cfg)
	if err != nil {
		return nil, err
	}

	a := &app{
		store: snapshot.NewAdvisory(backend),
		redis: redisClient,
	}

	a.session = auth.NewSession(a.store)
	if a.session.Restore(ctx) {
		logging.Logger.Info("restored persisted session")
	}
	a.session.OnUnauthorized(func() {
		a.session.SetRoute(auth.LoginRoute)
	})

	timeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	client := gateway.NewClient(cfg.APIBaseURL, timeout, a.session, gateway.NewBreaker("backend", cfg.BreakerMaxFailures))

	a.authAPI = gateway.NewAuthGateway(client)
	a.taskAPI = gateway.NewTaskGateway(client)
	a.groupAPI = gateway.NewGroupGateway(client)
	a.notificationAPI = gateway.NewNotificationGateway(client)

	a.reminders = reminders.NewScheduler(reminders.LogNotifier{}, a.store)
	a.tasks = services.NewTaskService(a.taskAPI, a.session, a.reminders, a.store)
	a.groups = services.NewGroupService(a.groupAPI, a.session, a.store)

	return a, nil
}

func (a *app) Close() {
	a.tasks.Close()
	a.groups.Close()
	a.reminders.Close()
	if a.redis != nil {
		a.redis.Close()
	}
}
