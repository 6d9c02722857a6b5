package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/aryaawcksn/counter/internal/domain"
	"github.com/aryaawcksn/counter/internal/interfaces"
	"github.com/aryaawcksn/counter/internal/render"
	"github.com/aryaawcksn/counter/internal/service/stats"
	"github.com/aryaawcksn/counter/internal/service/visit"

	"github.com/gin-gonic/gin"
)

type visitUsecase struct {
	visits visit.Service
	stats  stats.Service
}

func NewVisitUsecase(visits visit.Service, stats stats.Service) interfaces.Usecase {
	return &visitUsecase{visits: visits, stats: stats}
}

// CounterBadgeHandler records a visit and responds with the SVG badge.
// A cooled visit is still a well-formed request: it gets the badge with
// the current count plus a Retry-After header, never an error status.
func (u *visitUsecase) CounterBadgeHandler(c *gin.Context) {
	counterID := c.Param("id")

	ttl, err := cooldownTTLFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	event := domain.VisitEvent{
		CounterID:     counterID,
		ClientAddress: c.Request.RemoteAddr,
		Headers:       headersFromRequest(c),
		CooldownTTL:   ttl,
	}

	outcome, err := u.visits.RecordVisit(ctx, event)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("❌ Failed to record visit for %q: %v", counterID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record visit"})
		return
	}

	count := outcome.Count
	if !outcome.Counted {
		// Suppressed by the cooldown; show the current count unchanged.
		counter, err := u.stats.GetCounter(ctx, counterID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			log.Printf("❌ Failed to fetch counter %q: %v", counterID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch counter"})
			return
		}
		if counter != nil {
			count = counter.Count
		}
		c.Header("Retry-After", strconv.FormatInt(int64(outcome.RetryAfter/time.Second), 10))
	}

	c.Header("Cache-Control", "no-cache, no-store, must-revalidate, max-age=0")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	c.Header("ETag", fmt.Sprintf("%q", fmt.Sprintf("%d-%d", time.Now().UnixMilli(), count)))
	c.Data(http.StatusOK, render.BadgeContentType, []byte(render.Badge(count)))
}

// ForumCounterHandler redirects to the badge with a timestamp query so
// forum proxies that cache aggressively still fetch a fresh image.
func (u *visitUsecase) ForumCounterHandler(c *gin.Context) {
	target := fmt.Sprintf("/counter/%s?t=%d", c.Param("id"), time.Now().UnixMilli())
	c.Redirect(http.StatusFound, target)
}

// GetCounterHandler is the JSON debug view of a counter. A missing counter
// reports a zero count rather than a 404, matching the badge behavior.
func (u *visitUsecase) GetCounterHandler(c *gin.Context) {
	counterID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	counter, err := u.stats.GetCounter(ctx, counterID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{
				"id":      counterID,
				"count":   0,
				"message": "Counter not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch counter", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, counter)
}

// CountryBreakdownHandler returns one counter's per-country sub-counts,
// enriched with display names and flags.
func (u *visitUsecase) CountryBreakdownHandler(c *gin.Context) {
	counterID := c.Param("id")
	limit := limitFromQuery(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	counts, err := u.stats.GetCountryBreakdown(ctx, counterID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch breakdown", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"counter_id": counterID,
		"data":       enrich(counts),
	})
}

// TopCountriesHandler returns the cross-counter country leaderboard.
func (u *visitUsecase) TopCountriesHandler(c *gin.Context) {
	limit := limitFromQuery(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	counts, err := u.stats.GetGlobalTopCountries(ctx, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch top countries", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": enrich(counts)})
}

type countryRow struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Flag  string `json:"flag"`
	Count int64  `json:"count"`
}

func enrich(counts []domain.CountryCount) []countryRow {
	rows := make([]countryRow, 0, len(counts))
	for _, cc := range counts {
		info := render.Country(cc.Code)
		rows = append(rows, countryRow{
			Code:  info.Code,
			Name:  info.Name,
			Flag:  info.Flag,
			Count: cc.Count,
		})
	}
	return rows
}

func headersFromRequest(c *gin.Context) domain.VisitHeaders {
	return domain.VisitHeaders{
		ForwardedFor:   c.GetHeader("X-Forwarded-For"),
		RealIP:         c.GetHeader("X-Real-IP"),
		CFConnectingIP: c.GetHeader("CF-Connecting-IP"),
		CFCountry:      c.GetHeader("CF-IPCountry"),
	}
}

// cooldownTTLFromQuery parses the optional ttl override in seconds. Range
// validation belongs to the visit service; this only rejects values that
// are not durations at all.
func cooldownTTLFromQuery(c *gin.Context) (*time.Duration, error) {
	raw := c.Query("ttl")
	if raw == "" {
		return nil, nil
	}
	seconds, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("query parameter 'ttl' must be an integer number of seconds")
	}
	ttl := time.Duration(seconds) * time.Second
	return &ttl, nil
}

func limitFromQuery(c *gin.Context) int {
	limitStr := c.DefaultQuery("limit", "10")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = 10
	}
	return limit
}
