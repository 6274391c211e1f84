package main

import (
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/server"
	"app/internal/token"
	"app/internal/usecase"
	"app/internal/validator"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	//.envがあれば読む（なくても環境変数だけで動く）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		panic(err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Session{},
		&model.AuditLog{},
		&model.Post{},
	); err != nil {
		panic(err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	sessionRepo := infraRepo.NewSessionGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	postRepo := infraRepo.NewPostGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}

	//bcrypt（会員登録：Hash / ログイン：Verify）
	hasher := usecase.NewBcryptPasswordHasher(cfg.BcryptCost)
	verifier := usecase.NewBcryptPasswordVerifier()

	//JWT issuer（access/refreshで別シークレット）
	issuer := token.NewIssuer(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	//ロックアウトポリシー
	policy := model.LockoutPolicy{
		MaxAttempts:  cfg.MaxLoginAttempts,
		LockDuration: cfg.LockoutDuration,
	}

	//Usecase生成
	audit := usecase.NewAuditRecorder(auditRepo, clock)
	sessions := usecase.NewSessionManager(sessionRepo, txManager, idGen, clock)
	authUC := usecase.NewAuthUsecase(
		userRepo, sessions, issuer,
		hasher, verifier,
		validator.NewAuthValidator(),
		audit, clock, idGen, policy,
	)
	postUC := usecase.NewPostUsecase(postRepo, audit, idGen)

	//Handler生成
	h := server.Handlers{
		Auth:      handler.NewAuthHandler(authUC, cfg.RefreshTokenTTL),
		Post:      handler.NewPostHandler(postUC),
		AuditLog:  handler.NewAuditLogHandler(auditRepo),
		Health:    handler.NewHealthHandler(gormDB),
		UserRepo:  userRepo,
		Issuer:    issuer,
		RateLimit: cfg.AuthRateLimit,
	}

	//Server起動
	e := server.New(cfg, h)
	if err := server.Start(e, ":"+cfg.Port); err != nil {
		e.Logger.Fatal(err)
	}
}
