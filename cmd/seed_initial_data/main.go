package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"quizmaster/cmd/seed_initial_data/internal/seedmodels"
	"quizmaster/internal/config"
	"quizmaster/internal/database"
	"quizmaster/internal/domain"
	"quizmaster/internal/logger"
	"quizmaster/internal/repository"
	"quizmaster/internal/repository/models"
	"quizmaster/internal/service"

	"go.uber.org/zap"
)

const defaultSeedFilePath = "configs/seed_data/demo_quizzes.json"

func main() {
	seedFilePath := flag.String("file", defaultSeedFilePath, "path to the JSON seed file")
	printTokens := flag.Bool("tokens", true, "print a development access token per seeded user")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		// If logger is not initialized yet, use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() // Ensure logs are flushed
	log := logger.Get()

	log.Info("Starting initial data seeding process...")
	db, err := database.NewSQLXOracleDB(cfg.DB.Driver, cfg.GetDSN())
	if err != nil {
		log.Fatal("Failed to connect to Oracle database", zap.Error(err))
	}
	defer db.Close()

	log.Info("Loading seed data from file", zap.String("path", *seedFilePath))
	byteValue, err := os.ReadFile(*seedFilePath)
	if err != nil {
		log.Fatal("Failed to read seed file", zap.String("path", *seedFilePath), zap.Error(err))
	}

	var seed seedmodels.SeedData
	if err := json.Unmarshal(byteValue, &seed); err != nil {
		log.Fatal("Failed to unmarshal seed data", zap.Error(err))
	}
	log.Info("Successfully unmarshalled seed data",
		zap.Int("users_loaded", len(seed.Users)),
		zap.Int("quizzes_loaded", len(seed.Quizzes)))

	txManager := repository.NewTransactionManagerAdapter(db)
	userRepo := repository.NewUserDatabaseAdapter(db)
	quizRepo := repository.NewQuizDatabaseAdapter(db)

	err = txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		for _, su := range seed.Users {
			user := &models.User{
				ID:    su.ID,
				Email: su.Email,
				Name:  sql.NullString{String: su.Name, Valid: su.Name != ""},
				Role:  string(domain.ParseRole(su.Role)),
			}
			if err := userRepo.CreateUser(txCtx, user); err != nil {
				return fmt.Errorf("failed to save user %s: %w", su.Email, err)
			}
			log.Info("Created user", zap.String("id", user.ID), zap.String("email", user.Email), zap.String("role", user.Role))
		}
		for _, sq := range seed.Quizzes {
			quiz := toDomainQuiz(sq)
			if err := quizRepo.CreateQuiz(txCtx, quiz); err != nil {
				return fmt.Errorf("failed to save quiz %q: %w", sq.Title, err)
			}
			log.Info("Created quiz", zap.String("id", quiz.ID), zap.String("title", quiz.Title), zap.Int("questions", len(quiz.Questions)))
		}
		return nil
	})
	if err != nil {
		log.Fatal("Seeding failed, transaction rolled back", zap.Error(err))
	}

	if *printTokens {
		tokens := service.NewTokenService(cfg.JWT)
		for _, su := range seed.Users {
			token, err := tokens.IssueAccessToken(domain.Principal{ID: su.ID, Role: domain.ParseRole(su.Role)})
			if err != nil {
				log.Error("Failed to issue development token", zap.String("user_id", su.ID), zap.Error(err))
				continue
			}
			fmt.Printf("%s (%s): %s\n", su.Email, su.Role, token)
		}
	}
	log.Info("Initial data seeding process completed.")
}

func toDomainQuiz(sq seedmodels.SeedQuiz) *domain.Quiz {
	quiz := &domain.Quiz{
		ID:               sq.ID,
		Title:            sq.Title,
		Description:      sq.Description,
		Category:         sq.Category,
		TimeLimit:        sq.TimeLimit,
		PassingScore:     sq.PassingScore,
		ShuffleQuestions: sq.ShuffleQuestions,
		IsPublic:         sq.IsPublic,
		CreatorID:        sq.Creator,
		Questions:        make([]domain.Question, 0, len(sq.Questions)),
	}
	for _, q := range sq.Questions {
		points := q.Points
		if points == 0 {
			points = 1
		}
		quiz.Questions = append(quiz.Questions, domain.Question{
			Text:        q.Text,
			Choices:     q.Choices,
			RightAnswer: q.RightAnswer,
			Explanation: q.Explanation,
			Points:      points,
			Difficulty:  domain.ParseDifficulty(q.Difficulty),
		})
	}
	return quiz
}
