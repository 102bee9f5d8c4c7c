package wheel

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"prizewheel/pkg/db/pagination"
	"prizewheel/pkg/errutil"
	"prizewheel/services/reward"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(r gin.IRouter) {
	v1 := r.Group("/api/v1")
	v1.GET("/rewards", h.ListRewards)
	v1.GET("/rewards/:id/redeem", h.Redeem)
	v1.GET("/rewards/:id/qr.png", h.QRCode)
	v1.GET("/cooldown", h.Cooldown)
	v1.POST("/spin", h.Spin)
	v1.GET("/spins", h.ListSpins)
	v1.GET("/spins/stats", h.SpinStats)
}

type rewardView struct {
	Reward      reward.Reward `json:"reward"`
	Probability float64       `json:"probability"`
}

func (h *Handler) ListRewards(c *gin.Context) {
	table := h.svc.Table()
	out := make([]rewardView, 0, table.Len())
	for i, r := range table.Entries() {
		out = append(out, rewardView{Reward: r, Probability: table.Probability(i)})
	}
	c.JSON(http.StatusOK, gin.H{"rewards": out})
}

func (h *Handler) Cooldown(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Status(c.Request.Context()))
}

func (h *Handler) Spin(c *gin.Context) {
	res, err := h.svc.Spin(c.Request.Context())
	if err != nil {
		if IsLocked(err) {
			status := h.svc.Status(c.Request.Context())
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(status.Remaining.Seconds()))))
		}
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Redeem(c *gin.Context) {
	link, err := h.svc.RedeemURL(c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if c.Query("redirect") == "true" {
		c.Redirect(http.StatusFound, link)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": link})
}

func (h *Handler) QRCode(c *gin.Context) {
	size := 0
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 64 || n > 1024 {
			_ = c.Error(errutil.BadRequest("size must be between 64 and 1024", err))
			return
		}
		size = n
	}

	png, err := h.svc.QRCode(c.Param("id"), size)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) ListSpins(c *gin.Context) {
	var p pagination.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		_ = c.Error(errutil.BadRequest("invalid pagination", err))
		return
	}

	spins, info, err := h.svc.History(c.Request.Context(), p)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"spins": spins, "page_info": info})
}

func (h *Handler) SpinStats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rewards": stats})
}
