package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"autoapply/automation"
	"autoapply/boards"
	"autoapply/config"
	"autoapply/discovery"
	"autoapply/forms"
	"autoapply/model"
	"autoapply/orchestrator"
	"autoapply/repository"
	"autoapply/runlog"
	"autoapply/service"
	"autoapply/utils"
	"autoapply/worker/greenhouse"
	"autoapply/worker/indeed"
)

type Application struct {
	cfg     *config.GlobalConfig
	db      *gorm.DB
	session automation.Session
	runner  *orchestrator.Orchestrator
	runLog  runlog.Logger
	runID   string
}

func NewApplication() *Application {
	return &Application{}
}

func (app *Application) InitConfig() error {
	cfg, err := config.InitConfig()
	if err != nil {
		return err
	}
	app.cfg = cfg
	app.runID = uuid.NewString()
	return nil
}

func (app *Application) InitDatabase() error {
	if app.cfg.Storage.Driver != "mysql" {
		return nil
	}
	log.Info("Connecting to MySQL...")
	db, err := gorm.Open(mysql.Open(app.cfg.Storage.MySQL.DSN()), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("access database pool: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	app.db = db
	log.Info("MySQL connected")
	return nil
}

func (app *Application) newRepository() (repository.JobRepository, error) {
	switch app.cfg.Storage.Driver {
	case "mysql":
		return repository.NewGormJobRepository(app.db)
	case "memory":
		return repository.NewMemoryJobRepository(), nil
	default:
		return repository.NewFileJobRepository(app.cfg.Storage.DataDir)
	}
}

func (app *Application) newSession() (automation.Session, error) {
	opts := automation.Options{
		Headless:   app.cfg.Automation.Headless,
		SlowMo:     time.Duration(app.cfg.Automation.SlowMoMs) * time.Millisecond,
		CookiePath: app.cfg.Automation.CookiePath,
	}
	if app.cfg.Automation.Engine == "chromedp" {
		return automation.NewChromedpSession(opts)
	}
	return automation.NewPlaywrightSession(opts)
}

func (app *Application) InitServices() error {
	if err := app.InitDatabase(); err != nil {
		return err
	}

	repo, err := app.newRepository()
	if err != nil {
		return fmt.Errorf("init repository: %w", err)
	}

	logDir := app.cfg.Run.LogDir
	if err := utils.EnsureDir(logDir); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	runLog, err := runlog.New(logDir, app.runID)
	if err != nil {
		return fmt.Errorf("open run log: %w", err)
	}
	app.runLog = runLog
	manifest := runlog.Manifest{
		RunID:           app.runID,
		StartedAt:       time.Now().UTC(),
		Board:           app.cfg.Run.Board,
		DryRun:          app.cfg.Run.DryRun,
		MaxApplications: app.cfg.Run.MaxApplications,
	}
	if err := runlog.WriteManifest(logDir, manifest); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	profileService := service.NewProfileService(app.cfg.Profile.Path)
	profile, err := profileService.Load()
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	answerService := service.NewAnswerService(app.cfg.LLM)

	session, err := app.newSession()
	if err != nil {
		return fmt.Errorf("start browser session: %w", err)
	}
	app.session = session

	var generate func(string, *model.CandidateProfile) (string, error)
	if app.cfg.LLM.Enabled() {
		generate = answerService.GenerateAnswer
	}

	actx := &boards.ApplyContext{
		RunID:               app.runID,
		LogDir:              logDir,
		DataDir:             app.cfg.Storage.DataDir,
		DryRun:              app.cfg.Run.DryRun,
		KeepOpen:            app.cfg.Run.KeepOpen,
		PauseOnVerification: app.cfg.Run.PauseOnVerification,
		Profile:             profile,
		Resume:              app.cfg.Resume.Default(),
		Criteria:            app.cfg.Search,
		Session:             session,
		Engine:              forms.NewEngine(),
		RunLog:              runLog,
		Repo:                repo,
		Generate:            generate,
		PersistAnswer:       profileService.PersistAnswer,
		WaitForHuman:        waitForEnter,
	}

	discoverer := discovery.NewDiscoverer(app.cfg.Discovery)
	connectors := []boards.Connector{
		greenhouse.NewConnector(discoverer),
		indeed.NewConnector(app.session),
	}
	app.runner = orchestrator.New(connectors, actx)

	log.Infof("Run %s initialized (board=%s dryRun=%t)", app.runID, app.cfg.Run.Board, app.cfg.Run.DryRun)
	return nil
}

func (app *Application) Start(ctx context.Context) {
	go func() {
		err := app.runner.Run(ctx, orchestrator.Options{
			Board:           app.cfg.Run.Board,
			DryRun:          app.cfg.Run.DryRun,
			MaxApplications: app.cfg.Run.MaxApplications,
		})
		if err != nil {
			log.Errorf("Run failed: %v", err)
		}
		status := app.runner.Status()
		log.Infof("Run finished: state=%s applied=%d message=%q",
			status.State, status.AppliedCount, status.LastMessage)
	}()
}

func (app *Application) Stop() {
	if app.runner != nil {
		app.runner.Stop()
	}
	if app.session != nil {
		if err := app.session.Close(); err != nil {
			log.Warnf("Closing browser session failed: %v", err)
		}
	}
	if app.runLog != nil {
		if err := app.runLog.Close(); err != nil {
			log.Warnf("Closing run log failed: %v", err)
		}
	}
	if app.db != nil {
		if sqlDB, err := app.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	log.Info("Application stopped")
}

func waitForEnter() {
	reader := bufio.NewReader(os.Stdin)
	_, _ = reader.ReadString('\n')
}

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	app := NewApplication()
	if err := app.InitConfig(); err != nil {
		log.Fatalf("Config init failed: %v", err)
	}
	if err := app.InitServices(); err != nil {
		log.Fatalf("Service init failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	app.Start(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		for {
			status := app.runner.Status()
			if status.State == orchestrator.StateStopped {
				close(done)
				return
			}
			time.Sleep(time.Second)
		}
	}()

	select {
	case sig := <-sigChan:
		log.Infof("Received %v, shutting down...", sig)
		cancel()
	case <-done:
	}
	app.Stop()
}
