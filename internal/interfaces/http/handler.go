// @title           Trading Pipeline API
// @version         1.0
// @description     API for placing trade orders and reading derived positions and analytics

// @host      localhost:8080
// @BasePath  /api/v1

package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	appanalytics "main/internal/application/service/analytics"
	apptrading "main/internal/application/service/trading"
	interfaces "main/internal/domain/interfaces"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const basePath = "/api/v1"

type Handler struct {
	router    *gin.Engine
	trades    *apptrading.Service
	analytics *appanalytics.Service
	positions interfaces.PositionStore
	cache     *redis.Client
	cacheTTL  time.Duration
	now       func() time.Time
}

func NewHandler(trades *apptrading.Service, analytics *appanalytics.Service, positions interfaces.PositionStore, cache *redis.Client, cacheTTL time.Duration) *Handler {
	router := gin.New()
	router.Use(gin.Recovery())

	h := &Handler{
		router:    router,
		trades:    trades,
		analytics: analytics,
		positions: positions,
		cache:     cache,
		cacheTTL:  cacheTTL,
		now:       time.Now,
	}
	h.registerRoutes()
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := h.router.Group(basePath)
	{
		api.POST("/trade", h.placeTrade)

		api.GET("/positions", h.getPositions)
		api.GET("/positions/:symbol", h.getPosition)

		analytics := api.Group("/analytics")
		if h.cache != nil {
			analytics.Use(h.cacheMiddleware())
		}
		{
			analytics.GET("/daily", h.getDailyAnalytics)
		}

		api.GET("/trades/today", h.getTradesToday)
	}
}

// placeTrade accepts a trade order and publishes it for async processing
// @Summary      Place trade
// @Description  Validate a trade order, publish it to the event broker and return the constructed event
// @Tags         trades
// @Accept       json
// @Produce      json
// @Param        trade  body      apptrading.TradeRequest  true  "Trade order"
// @Success      201    {object}  trading.TradeEvent
// @Failure      400    {object}  map[string]map[string]string
// @Failure      503    {object}  map[string]string
// @Router       /trade [post]
func (h *Handler) placeTrade(c *gin.Context) {
	var req apptrading.TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	event, err := h.trades.PlaceTrade(c.Request.Context(), req)
	if err != nil {
		var validation *apptrading.ValidationError
		if errors.As(err, &validation) {
			c.JSON(http.StatusBadRequest, gin.H{"errors": validation.Fields})
			return
		}
		// The event was built but the broker did not accept it; the caller
		// may retry with the same request.
		writeError(c, http.StatusServiceUnavailable, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

// getPositions returns all real-time positions
// @Summary      List positions
// @Description  Get the current position for every symbol seen so far
// @Tags         positions
// @Produce      json
// @Success      200  {object}  map[string]trading.Position
// @Failure      500  {object}  map[string]string
// @Router       /positions [get]
func (h *Handler) getPositions(c *gin.Context) {
	positions, err := h.positions.List(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, positions)
}

// getPosition returns the position for one symbol
// @Summary      Get position
// @Description  Get the current position for a symbol, zero if the symbol has never traded
// @Tags         positions
// @Produce      json
// @Param        symbol  path      string  true  "Symbol"
// @Success      200     {object}  trading.Position
// @Failure      500     {object}  map[string]string
// @Router       /positions/{symbol} [get]
func (h *Handler) getPosition(c *gin.Context) {
	position, err := h.positions.Get(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, position)
}

// getDailyAnalytics returns per-symbol totals for the current date
// @Summary      Daily analytics
// @Description  Recompute today's per-symbol quantity and PnL totals from the trade log
// @Tags         analytics
// @Produce      json
// @Success      200  {object}  map[string]trading.SymbolAnalytics
// @Failure      500  {object}  map[string]string
// @Router       /analytics/daily [get]
func (h *Handler) getDailyAnalytics(c *gin.Context) {
	totals, err := h.analytics.DailyAnalytics(c.Request.Context(), h.now())
	if err != nil {
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

// getTradesToday returns today's trade records, newest first
// @Summary      Today's trades
// @Description  Get every trade recorded today, ordered by trade time descending
// @Tags         trades
// @Produce      json
// @Success      200  {array}   trading.TradeRecord
// @Failure      500  {object}  map[string]string
// @Router       /trades/today [get]
func (h *Handler) getTradesToday(c *gin.Context) {
	records, err := h.analytics.TradesForDate(c.Request.Context(), h.now())
	if err != nil {
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func writeError(c *gin.Context, status int, err error) {
	if err == nil {
		status = http.StatusInternalServerError
		err = errors.New("unknown error")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// cacheMiddleware caches GET responses in Redis. Only the analytics group is
// cached; position reads must stay real-time.
func (h *Handler) cacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.cache == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := h.cacheKey(c)
		ctx := c.Request.Context()

		if cached, err := h.cache.Get(ctx, key).Result(); err == nil {
			c.Data(http.StatusOK, "application/json", []byte(cached))
			c.Abort()
			return
		}

		recorder := &responseRecorder{
			ResponseWriter: c.Writer,
			status:         http.StatusOK,
			body:           &bytes.Buffer{},
		}
		c.Writer = recorder

		c.Next()

		if recorder.status >= 200 && recorder.status < 300 && recorder.body.Len() > 0 {
			_ = h.cache.Set(ctx, key, recorder.body.Bytes(), h.cacheTTL).Err()
		}
	}
}

type responseRecorder struct {
	gin.ResponseWriter
	body   *bytes.Buffer
	status int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(data []byte) (int, error) {
	if len(data) > 0 {
		r.body.Write(data)
	}
	return r.ResponseWriter.Write(data)
}

func (h *Handler) cacheKey(c *gin.Context) string {
	return fmt.Sprintf("cache:%s:%s?%s", c.Request.Method, c.FullPath(), c.Request.URL.RawQuery)
}
