package api

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"spendr/backend/internal/allocation"
	"spendr/backend/internal/match"
	"spendr/backend/internal/store"
	"spendr/backend/internal/util"
)

var errInvalidInput = errors.New("invalid input")

// campaign is a validated allocation request with its labels resolved to catalog keys.
type campaign struct {
	budget          float64
	aov             float64
	industry        allocation.Industry
	audience        allocation.Audience
	industryLabel   string
	audienceLabel   string
	audienceMatched bool
}

func (s *Server) resolveCampaign(req AllocateRequest) (campaign, error) {
	if req.TotalBudget == nil {
		return campaign{}, fmt.Errorf("%w: total_budget is required", errInvalidInput)
	}
	budget := *req.TotalBudget
	if budget < 0 || math.IsInf(budget, 0) || math.IsNaN(budget) {
		return campaign{}, fmt.Errorf("%w: total_budget must be a non-negative number", errInvalidInput)
	}
	if budget > allocation.MaxAmount {
		return campaign{}, fmt.Errorf("%w: total_budget must not exceed %g", errInvalidInput, allocation.MaxAmount)
	}
	aov := s.defaultAOV
	if req.AOV != nil {
		aov = *req.AOV
		if aov < 0 || math.IsInf(aov, 0) || math.IsNaN(aov) {
			return campaign{}, fmt.Errorf("%w: aov must be a non-negative number", errInvalidInput)
		}
		if aov > allocation.MaxAmount {
			return campaign{}, fmt.Errorf("%w: aov must not exceed %g", errInvalidInput, allocation.MaxAmount)
		}
	}

	industryLabel := strings.TrimSpace(req.Industry)
	if industryLabel == "" {
		return campaign{}, fmt.Errorf("%w: industry is required", errInvalidInput)
	}
	industry := match.MapIndustry(industryLabel)
	if !industry.Matched {
		return campaign{}, fmt.Errorf("%w: %q", allocation.ErrUnknownIndustry, industryLabel)
	}

	// Unrecognised audiences pass through unchanged so the allocator applies no multipliers.
	audienceLabel := strings.TrimSpace(req.Audience)
	audience := match.MapAudience(audienceLabel)
	key := audience.Key
	if !audience.Matched {
		key = allocation.Audience(audienceLabel)
	}

	return campaign{
		budget:          budget,
		aov:             aov,
		industry:        industry.Key,
		audience:        key,
		industryLabel:   industryLabel,
		audienceLabel:   audienceLabel,
		audienceMatched: audience.Matched,
	}, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, allocation.ErrUnknownIndustry):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func failureReason(err error) string {
	switch statusFor(err) {
	case http.StatusBadRequest:
		return "invalid_input"
	case http.StatusUnprocessableEntity:
		return "unknown_industry"
	default:
		return "internal"
	}
}

func (s *Server) handleAllocate(c *gin.Context) {
	var req AllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		allocationFailures.WithLabelValues("allocate", "invalid_input").Inc()
		s.renderError(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	resp, err := s.allocate(req)
	if err != nil {
		allocationFailures.WithLabelValues("allocate", failureReason(err)).Inc()
		s.renderError(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) allocate(req AllocateRequest) (AllocationResponse, error) {
	camp, err := s.resolveCampaign(req)
	if err != nil {
		return AllocationResponse{}, err
	}

	timer := util.StartTimer()
	result, err := allocation.AllocateSlabs(camp.budget, camp.industry, camp.audience, camp.aov)
	if err != nil {
		return AllocationResponse{}, err
	}
	resp := AllocationFromResult(result)
	computeDuration.WithLabelValues("allocate").Observe(timer.ElapsedSeconds())
	allocationsTotal.WithLabelValues("allocate", string(camp.industry)).Inc()

	resp.IndustryLabel = camp.industryLabel
	resp.AudienceLabel = camp.audienceLabel
	resp.AudienceMatched = camp.audienceMatched
	resp.ProcessingTimeUs = timer.ElapsedUs()

	plan := planModel("allocate", camp, result, resp.ProcessingTimeUs)
	if id, ok := s.recordPlan(plan, resp); ok {
		resp.ID = id
	}

	logrus.WithFields(logrus.Fields{
		"industry":   camp.industry,
		"audience":   camp.audience,
		"budget":     camp.budget,
		"top":        plan.TopChannel,
		"elapsed_us": resp.ProcessingTimeUs,
	}).Debug("allocation computed")
	return resp, nil
}

func (s *Server) handleCompare(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		allocationFailures.WithLabelValues("compare", "invalid_input").Inc()
		s.renderError(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	camp, err := s.resolveCampaign(req.AllocateRequest)
	if err == nil {
		err = validateManual(req.ManualAllocation)
	}
	if err != nil {
		allocationFailures.WithLabelValues("compare", failureReason(err)).Inc()
		s.renderError(c, statusFor(err), err)
		return
	}

	timer := util.StartTimer()
	cmp, err := allocation.Compare(allocation.ComparisonInput{
		TotalBudget: camp.budget,
		Industry:    camp.industry,
		Audience:    camp.audience,
		AOV:         camp.aov,
		Manual:      lowerKeys(req.ManualAllocation),
	})
	if err != nil {
		allocationFailures.WithLabelValues("compare", failureReason(err)).Inc()
		s.renderError(c, statusFor(err), err)
		return
	}
	resp := CompareFromResult(cmp)
	computeDuration.WithLabelValues("compare").Observe(timer.ElapsedSeconds())
	allocationsTotal.WithLabelValues("compare", string(camp.industry)).Inc()

	resp.Allocation.IndustryLabel = camp.industryLabel
	resp.Allocation.AudienceLabel = camp.audienceLabel
	resp.Allocation.AudienceMatched = camp.audienceMatched
	resp.ProcessingTimeUs = timer.ElapsedUs()

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.narrateTimeout)
	defer cancel()
	if narrative, err := s.narrator.Narrate(ctx, cmp); err == nil {
		resp.Insight = &narrative
	} else {
		logrus.WithError(err).Warn("narrate comparison")
	}

	plan := planModel("compare", camp, cmp.Result, resp.ProcessingTimeUs)
	if id, ok := s.recordPlan(plan, resp); ok {
		resp.ID = id
	}
	c.JSON(http.StatusOK, resp)
}

func validateManual(manual map[string]float64) error {
	var sum float64
	for key, pct := range manual {
		if pct < 0 || pct > 100 || math.IsNaN(pct) {
			return fmt.Errorf("%w: manual_allocation[%s] must be between 0 and 100", errInvalidInput, key)
		}
		sum += pct
	}
	if sum > 100.0001 {
		return fmt.Errorf("%w: manual_allocation sums to %.2f%%", errInvalidInput, sum)
	}
	return nil
}

func lowerKeys(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[strings.ToLower(strings.TrimSpace(k))] += v
	}
	return out
}

func planModel(kind string, camp campaign, result allocation.AllocationResult, elapsedUs int64) *store.Plan {
	projected := allocation.Sum(result.Projected)
	plan := &store.Plan{
		Industry:         string(camp.industry),
		Audience:         string(camp.audience),
		IndustryLabel:    camp.industryLabel,
		AudienceLabel:    camp.audienceLabel,
		TotalBudget:      camp.budget,
		AOV:              camp.aov,
		Kind:             kind,
		ProjectedROI:     projected.ROI,
		ProjectedRevenue: projected.Revenue,
		ProcessingTimeUs: elapsedUs,
	}
	if len(result.Ranked) > 0 {
		plan.TopChannel = result.Ranked[0].Channel
	}
	return plan
}

// recordPlan persists the plan with its response payload. Failures are logged and counted,
// never surfaced to the caller.
func (s *Server) recordPlan(plan *store.Plan, payload any) (string, bool) {
	if s.db == nil {
		return "", false
	}
	if err := plan.SetPayload(payload); err != nil {
		historyWriteFailures.WithLabelValues("plans").Inc()
		logrus.WithError(err).Warn("encode plan payload")
		return "", false
	}
	if err := s.db.SavePlan(plan); err != nil {
		historyWriteFailures.WithLabelValues("plans").Inc()
		logrus.WithError(err).Warn("save plan")
		return "", false
	}
	dto := PlanFromModel(*plan, false)
	s.notifier.Broadcast(Event{Type: EventPlan, Plan: &dto})
	return plan.PublicID, true
}

func (s *Server) handleListPlans(c *gin.Context) {
	if !s.requireHistory(c) {
		return
	}
	offset, limit := pagination(c, 25)
	rows, total, err := s.db.ListPlans(store.PlanQuery{
		Industry: c.Query("industry"),
		Audience: c.Query("audience"),
		Kind:     c.Query("kind"),
		Sort:     c.Query("sort"),
		Offset:   offset,
		Limit:    limit,
	})
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	dtos := make([]PlanDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, PlanFromModel(row, false))
	}
	c.JSON(http.StatusOK, PlansResponse{Items: dtos, Total: total})
}

func (s *Server) handleGetPlan(c *gin.Context) {
	if !s.requireHistory(c) {
		return
	}
	plan, err := s.db.GetPlan(c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.renderError(c, http.StatusNotFound, fmt.Errorf("plan %s not found", c.Param("id")))
		} else {
			s.renderError(c, http.StatusInternalServerError, err)
		}
		return
	}
	c.JSON(http.StatusOK, PlanFromModel(*plan, true))
}

func (s *Server) handleClearHistory(c *gin.Context) {
	if !s.requireHistory(c) {
		return
	}
	if err := s.db.ClearHistory(); err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	logrus.Info("run history cleared")
	c.Status(http.StatusNoContent)
}
