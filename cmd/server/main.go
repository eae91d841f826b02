package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/afterlife-world/internal/afterlife"
	"github.com/annel0/afterlife-world/internal/api"
	"github.com/annel0/afterlife-world/internal/config"
	"github.com/annel0/afterlife-world/internal/eventbus"
	"github.com/annel0/afterlife-world/internal/logging"
	"github.com/annel0/afterlife-world/internal/session"
	"github.com/annel0/afterlife-world/internal/storage"
	"github.com/annel0/afterlife-world/internal/world"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML-конфигурации (или ENV AFTERLIFE_CONFIG)")
	flag.Parse()

	// Инициализируем систему логирования
	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	logging.Info("🌅 Запуск сервера загробного мира...")

	// === КОНФИГУРАЦИЯ ===
	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Error("❌ Ошибка загрузки конфигурации: %v", err)
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	restAddr := cfg.GetString("server.rest-addr", ":8088")
	metricsAddr := cfg.GetString("server.metrics-addr", ":2112")
	storageRoot := cfg.GetString("server.worlds-dir", "worlds")
	mainWorldName := cfg.GetString("server.main-world", "world")

	logging.Info("📡 Конфигурация: REST=%s, metrics=%s, worlds=%s", restAddr, metricsAddr, storageRoot)

	// === ШИНА СОБЫТИЙ ===
	var bus eventbus.EventBus
	if natsURL := cfg.GetString("eventbus.nats-url", ""); natsURL != "" {
		jsBus, err := eventbus.NewJetStreamBus(natsURL, cfg.GetString("eventbus.stream", "AFTERLIFE"), 24*time.Hour)
		if err != nil {
			logging.Error("❌ Не удалось подключиться к NATS (%s), переключаюсь на in-memory шину: %v", natsURL, err)
			bus = eventbus.NewMemoryBus(1024)
		} else {
			logging.Info("✉️  Шина событий: NATS JetStream %s", natsURL)
			bus = jsBus
		}
	} else {
		logging.Info("✉️  Шина событий: in-memory")
		bus = eventbus.NewMemoryBus(1024)
	}
	eventbus.Init(bus)
	if err := eventbus.StartLoggingListener(bus); err != nil {
		logging.Warn("Не удалось подписать лог-слушателя на шину: %v", err)
	}

	metrics := eventbus.NewMetricsExporter(bus)
	metrics.StartHTTP(metricsAddr)
	defer metrics.Stop()

	// === РЕПОЗИТОРИЙ ПОЗИЦИЙ ===
	positions := buildPositionRepo(cfg)

	// === МИРЫ И СЕССИИ ===
	registry := world.NewRegistry(storageRoot)
	defer registry.CloseAll()

	if _, err := registry.Create(mainWorldName, world.CreateOptions{}); err != nil {
		logging.Error("❌ Ошибка создания главного мира '%s': %v", mainWorldName, err)
		log.Fatalf("❌ Ошибка создания главного мира: %v", err)
	}
	logging.Info("🌍 Главный мир '%s' загружен", mainWorldName)

	sessions := session.NewManager(positions)

	// === КОНТРОЛЛЕР ЗАГРОБНОГО МИРА ===
	manager := afterlife.NewManager(cfg, registry, sessions)
	if err := manager.Init(false, nil); err != nil {
		logging.Error("❌ Ошибка инициализации загробного мира: %v", err)
		log.Fatalf("❌ Ошибка инициализации загробного мира: %v", err)
	}

	// === REST API ===
	restServer := api.NewRestServer(api.Config{Addr: restAddr, EnableMetrics: true}, manager, registry)
	restServer.Start()

	logging.Info("✅ Все сервисы запущены")
	logging.Info("   🌐 REST API: http://localhost%s", restAddr)
	logging.Info("   📈 Метрики: http://localhost%s/metrics", metricsAddr)
	logging.Info("   ❤️  Health check: http://localhost%s/health", restAddr)
	logging.Info("💡 Регенерация: curl -X POST http://localhost%s/api/afterlife/regenerate", restAddr)

	// Ждём сигнала для завершения
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logging.Info("📡 Получен сигнал %v, завершение работы...", sig)

	// === GRACEFUL SHUTDOWN ===
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := restServer.Stop(ctx); err != nil {
		logging.Error("❌ Ошибка остановки REST API: %v", err)
	}

	logging.Info("👋 Сервер успешно остановлен")
}

// buildPositionRepo выбирает реализацию репозитория позиций по конфигурации:
// memory (по умолчанию), redis или mariadb.
func buildPositionRepo(cfg *config.Store) storage.PositionRepo {
	backend := cfg.GetString("positions.backend", "memory")
	switch backend {
	case "redis":
		redisCfg := storage.DefaultRedisConfig()
		redisCfg.Addr = cfg.GetString("positions.redis-addr", redisCfg.Addr)
		redisCfg.Password = cfg.GetString("positions.redis-password", "")
		redisCfg.DB = cfg.GetInt("positions.redis-db", 0)
		repo, err := storage.NewRedisPositionRepo(redisCfg)
		if err != nil {
			logging.Error("❌ Redis недоступен, переключаюсь на память: %v", err)
			return storage.NewMemoryPositionRepo()
		}
		logging.Info("💾 Позиции игроков: Redis")
		return repo
	case "mariadb":
		repo, err := storage.NewMariaPositionRepo(cfg.GetString("positions.maria-dsn", ""))
		if err != nil {
			logging.Error("❌ MariaDB недоступна, переключаюсь на память: %v", err)
			return storage.NewMemoryPositionRepo()
		}
		logging.Info("💾 Позиции игроков: MariaDB")
		return repo
	default:
		logging.Info("💾 Позиции игроков: in-memory")
		return storage.NewMemoryPositionRepo()
	}
}
