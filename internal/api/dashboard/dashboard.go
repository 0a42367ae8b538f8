package dashboard

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fytours/tourdash/internal/engine"
	"github.com/fytours/tourdash/internal/export"
	kafkax "github.com/fytours/tourdash/internal/kafka"
	"github.com/fytours/tourdash/internal/loader"
	jwtMiddleware "github.com/fytours/tourdash/internal/middleware"
	"github.com/fytours/tourdash/internal/service/dashboard"
	"github.com/fytours/tourdash/internal/snapshot"
)

type DashboardHandler struct {
	log      *zap.Logger
	svc      *dashboard.Service
	holder   *snapshot.Holder
	cache    *snapshot.Cache
	producer *kafkax.Producer
	secret   string
}

func NewDashboardHandler(log *zap.Logger, svc *dashboard.Service, holder *snapshot.Holder, cache *snapshot.Cache, producer *kafkax.Producer, secret string) *DashboardHandler {
	return &DashboardHandler{log: log, svc: svc, holder: holder, cache: cache, producer: producer, secret: secret}
}

func (h *DashboardHandler) Register(r *gin.Engine) {
	g := r.Group("/v1/dashboard")
	g.Use(jwtMiddleware.Middleware(h.secret, true))
	{
		g.GET("/kpis", h.kpis)
		g.GET("/alerts", h.alerts)
		g.GET("/charts/:name", h.chart)
		g.GET("/advisors/top", h.topAdvisors)
		g.GET("/bookings", h.bookings)
		g.GET("/filters", h.filterOptions)
		g.GET("/export", h.exportWorkbook)
		g.POST("/refresh", h.refresh)
	}
}

// criteriaFromQuery rebuilds the filter criteria from the request on every
// interaction; no selection state lives server side. A status parameter that
// is entirely absent means no constraint, while supplying only empty values
// yields the match-nothing empty set (the multiselect clear case).
func criteriaFromQuery(c *gin.Context) engine.Criteria {
	var crit engine.Criteria
	if v := c.Query("from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			crit.DateFrom = &t
		}
	}
	if v := c.Query("to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			crit.DateTo = &t
		}
	}
	if vals, ok := c.GetQueryArray("payment_status"); ok {
		crit.PaymentStatuses = nonEmpty(vals)
	}
	if vals, ok := c.GetQueryArray("status"); ok {
		crit.BookingStatuses = nonEmpty(vals)
	}
	if v := c.Query("client_type"); v != "" && v != "All" {
		crit.ClientType = &v
	}
	if v := c.Query("country"); v != "" && v != "All" {
		crit.Country = &v
	}
	crit.AdvisorQuery = c.Query("advisor")
	crit.DestinationQuery = c.Query("destination")
	return crit
}

func nonEmpty(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (h *DashboardHandler) kpis(c *gin.Context) {
	summary, err := h.svc.KPIs(c.Request.Context(), criteriaFromQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"kpis": summary})
}

func (h *DashboardHandler) alerts(c *gin.Context) {
	alerts, err := h.svc.AlertCounts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

func (h *DashboardHandler) chart(c *gin.Context) {
	name := c.Param("name")
	points, err := h.svc.Chart(c.Request.Context(), name, criteriaFromQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if points == nil {
		points = []dashboard.ChartPoint{}
	}
	c.JSON(http.StatusOK, gin.H{"chart": name, "points": points})
}

func (h *DashboardHandler) topAdvisors(c *gin.Context) {
	n, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	advisors, err := h.svc.TopAdvisors(c.Request.Context(), criteriaFromQuery(c), n)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if advisors == nil {
		advisors = []dashboard.AdvisorPerf{}
	}
	c.JSON(http.StatusOK, gin.H{"advisors": advisors})
}

func (h *DashboardHandler) bookings(c *gin.Context) {
	filtered, err := h.svc.FilteredBookings(c.Request.Context(), criteriaFromQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"cols": filtered.Cols,
		"rows": filtered.Rows,
		"n":    filtered.NumRows(),
	})
}

func (h *DashboardHandler) filterOptions(c *gin.Context) {
	opts, err := h.svc.Options(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	tableErrs, err := h.svc.TableErrors(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"options": opts, "table_errors": tableErrs})
}

func (h *DashboardHandler) exportWorkbook(c *gin.Context) {
	snap, err := h.holder.Current(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, snap.Tables); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if h.producer != nil {
		if err := h.producer.PublishEvent(c.Request.Context(), kafkax.Envelope{
			Type:        kafkax.EventExportRequested,
			RequestedBy: c.GetString("uid"),
		}); err != nil {
			h.log.Warn("export event publish failed", zap.Error(err))
		}
	}
	filename := fmt.Sprintf("fyt_dashboard_export_%s.zip", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/zip", buf.Bytes())
}

func (h *DashboardHandler) refresh(c *gin.Context) {
	// Drop the cached query results first so the reload actually hits the store.
	if err := h.cache.Invalidate(c.Request.Context(), loader.CacheKeys()...); err != nil {
		h.log.Warn("cache invalidation failed", zap.Error(err))
	}
	if err := h.holder.Refresh(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if h.producer != nil {
		if err := h.producer.PublishEvent(c.Request.Context(), kafkax.Envelope{
			Type:        kafkax.EventSnapshotRefresh,
			RequestedBy: c.GetString("uid"),
		}); err != nil {
			h.log.Warn("refresh event publish failed", zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, gin.H{"loaded_at": h.holder.LoadedAt()})
}
