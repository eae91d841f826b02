package api

import (
	"context"
	"net/http"
	"time"

	"github.com/annel0/afterlife-world/internal/afterlife"
	"github.com/annel0/afterlife-world/internal/logging"
	"github.com/annel0/afterlife-world/internal/middleware"
	"github.com/annel0/afterlife-world/internal/world"
	"github.com/gin-gonic/gin"
)

// Config — настройки REST-сервера управления
type Config struct {
	Addr          string // Адрес прослушивания, например ":8088"
	EnableMetrics bool   // Регистрировать Prometheus-middleware и /metrics
}

// RestServer — административный HTTP API: статус загробного мира,
// безопасный спавн и запуск регенерации.
type RestServer struct {
	engine   *gin.Engine
	srv      *http.Server
	manager  *afterlife.Manager
	registry *world.Registry
	log      *logging.Logger
}

// NewRestServer собирает маршруты и middleware
func NewRestServer(cfg Config, manager *afterlife.Manager, registry *world.Registry) *RestServer {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.NewRequestLogger().Handler())

	if cfg.EnableMetrics {
		pm := middleware.NewPrometheusMiddleware("afterlife_api")
		engine.Use(pm.Handler())
		pm.RegisterMetricsEndpoint(engine)
	}

	rs := &RestServer{
		engine:   engine,
		manager:  manager,
		registry: registry,
		log:      logging.GetComponentLogger("rest_api"),
	}
	rs.srv = &http.Server{Addr: cfg.Addr, Handler: engine}

	engine.GET("/health", rs.handleHealth)

	apiGroup := engine.Group("/api")
	{
		apiGroup.GET("/worlds", rs.handleWorlds)
		apiGroup.GET("/afterlife/status", rs.handleStatus)
		apiGroup.GET("/afterlife/spawn", rs.handleSpawn)
		apiGroup.POST("/afterlife/regenerate", rs.handleRegenerate)
	}

	return rs
}

// Engine возвращает роутер (для httptest)
func (rs *RestServer) Engine() *gin.Engine {
	return rs.engine
}

// Start запускает HTTP-сервер в отдельной горутине
func (rs *RestServer) Start() {
	go func() {
		rs.log.Info("🌐 REST API слушает на %s", rs.srv.Addr)
		if err := rs.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			rs.log.Error("Ошибка REST API сервера: %v", err)
		}
	}()
}

// Stop останавливает HTTP-сервер с дедлайном
func (rs *RestServer) Stop(ctx context.Context) error {
	return rs.srv.Shutdown(ctx)
}

func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
}

type worldInfo struct {
	Name        string `json:"name"`
	Environment string `json:"environment"`
	Generator   string `json:"generator"`
	Seed        int64  `json:"seed"`
	MaxHeight   int    `json:"max_height"`
}

func describeWorld(w *world.World) worldInfo {
	return worldInfo{
		Name:        w.Name(),
		Environment: w.Environment().String(),
		Generator:   w.GeneratorMode(),
		Seed:        w.Seed(),
		MaxHeight:   w.MaxHeight(),
	}
}

func (rs *RestServer) handleWorlds(c *gin.Context) {
	all := rs.registry.All()
	out := make([]worldInfo, 0, len(all))
	for _, w := range all {
		out = append(out, describeWorld(w))
	}
	c.JSON(http.StatusOK, gin.H{"worlds": out})
}

func (rs *RestServer) handleStatus(c *gin.Context) {
	w := rs.manager.GetWorld()
	if w == nil {
		c.JSON(http.StatusOK, gin.H{"loaded": false})
		return
	}

	border := w.WorldBorder()
	c.JSON(http.StatusOK, gin.H{
		"loaded": true,
		"world":  describeWorld(w),
		"border": gin.H{
			"center_x":         border.CenterX,
			"center_z":         border.CenterZ,
			"size":             border.Size,
			"warning_distance": border.WarningDistance,
		},
		"pvp":   w.PVP(),
		"spawn": w.SpawnLocation(),
	})
}

func (rs *RestServer) handleSpawn(c *gin.Context) {
	loc, ok := rs.manager.GetSpawnLocation()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "загробный мир не загружен"})
		return
	}
	c.JSON(http.StatusOK, loc)
}

type regenerateRequest struct {
	Seed *int64 `json:"seed"`
}

func (rs *RestServer) handleRegenerate(c *gin.Context) {
	var req regenerateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "некорректное тело запроса"})
			return
		}
	}

	notifier := afterlife.NewCollectingNotifier()
	outcome := rs.manager.RegenerateWorld(c.Request.Context(), notifier, req.Seed)

	status := http.StatusOK
	if !outcome.OK {
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{
		"ok":       outcome.OK,
		"reason":   outcome.Reason,
		"messages": notifier.Messages(),
	})
}
