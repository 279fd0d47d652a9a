package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/utils"

	"presensiku_backend/internals/bootstrap"
	"presensiku_backend/internals/configs"
	"presensiku_backend/internals/constants"
	database "presensiku_backend/internals/databases"
	scheduler "presensiku_backend/internals/features/school/attendance/scheduler"
	userModel "presensiku_backend/internals/features/users/users/model"
	middlewares "presensiku_backend/internals/middlewares"
	routes "presensiku_backend/internals/route"
	"presensiku_backend/internals/seeds"
)

func main() {
	configs.LoadEnv()

	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		DisableStartupMessage: true,
		ProxyHeader:           fiber.HeaderXForwardedFor,
	})

	// ⚙️ middleware dasar + performa
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())

	// 🔎 Request-ID + timing
	app.Use(func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = utils.UUID()
		}
		c.Set("X-Request-ID", id)
		c.Locals("reqid", id)
		start := time.Now()
		err := c.Next()
		log.Printf("[REQ] id=%s %s %s status=%d dur=%s",
			id, c.Method(), c.OriginalURL(), c.Response().StatusCode(), time.Since(start))
		return err
	})

	middlewares.SetupMiddlewares(app)

	// 🔌 DB connect + pool + migrasi
	database.ConnectDB()
	database.TunePool()
	if err := database.RunMigrations(database.DB); err != nil {
		log.Fatalf("❌ Migrasi gagal: %v", err)
	}
	seeds.SeedDefaultStaff(database.DB)

	// Setup mode: aktif selama belum ada admin satupun.
	var adminCount int64
	if err := database.DB.Model(&userModel.UserModel{}).
		Where("user_role = ?", constants.RoleAdmin).
		Count(&adminCount).Error; err != nil {
		log.Fatalf("❌ Gagal cek akun admin: %v", err)
	}
	state := bootstrap.NewState(adminCount == 0)
	if state.NeedsSetup() {
		log.Println("⚠️ Belum ada akun admin — aplikasi berjalan dalam SETUP MODE.")
		log.Println("⚠️ Buka POST /api/setup untuk membuat akun admin pertama.")
	}

	// ⏱ sweep auto-absent setelah DB siap
	sweeper := scheduler.NewAutoAbsentScheduler(database.DB, configs.SweepInterval)
	sweeper.Start()

	// ✅ Routes
	routes.SetupRoutes(app, database.DB, state)

	// 🔒 timeout koneksi server
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	go func() {
		log.Printf("✅ Listening on :%s", port)
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown: stop sweeper, tutup server, tutup pool DB
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	if sqlDB, err := database.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
