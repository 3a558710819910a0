package main

import (
	"context"
	"fmt"
	"os"

	"guide-exam/internal/catalog"
	"guide-exam/internal/config"
	"guide-exam/internal/database"
	"guide-exam/internal/logger"
	"guide-exam/internal/repository"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		// logger is not initialized yet
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Get()

	log.Info("Starting initial data seeding process...")
	c, err := catalog.Default()
	if err != nil {
		log.Fatal("Failed to load embedded catalog", zap.Error(err))
	}

	db, err := database.NewSQLXDB(cfg.DB, cfg.GetDSN())
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	questions := repository.NewQuestionDatabaseAdapter(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	// one transaction so a bad row leaves the previous bank untouched
	err = txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		for i, s := range c.Subjects {
			if err := questions.SaveSubject(txCtx, s, i); err != nil {
				return err
			}
		}
		for i, q := range c.Questions {
			if err := questions.SaveQuestion(txCtx, q, i); err != nil {
				return err
			}
		}
		for _, p := range c.Papers {
			if err := questions.SavePaper(txCtx, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal("Seeding failed, transaction rolled back", zap.Error(err))
	}

	log.Info("Initial data seeding process completed.",
		zap.Int("subjects", len(c.Subjects)),
		zap.Int("questions", len(c.Questions)),
		zap.Int("papers", len(c.Papers)))
}
