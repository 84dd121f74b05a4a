package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"spendr/backend/internal/store"
	"spendr/backend/internal/util"
)

func (s *Server) handleScoreAd(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxFrameBytes)
	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	resp := s.score(req.Text, "http")
	s.notifier.Broadcast(Event{Type: EventScore, Score: &resp})
	c.JSON(http.StatusOK, resp)
}

// score evaluates the ad text and persists it when history is enabled. Blank texts are not stored.
func (s *Server) score(text, source string) ScoreResponse {
	timer := util.StartTimer()
	score := s.scorer.Evaluate(text)
	computeDuration.WithLabelValues("score").Observe(timer.ElapsedSeconds())
	adScoresTotal.WithLabelValues(source, score.Band).Inc()

	resp := ScoreResponse{AdScore: score, ProcessingTimeUs: timer.ElapsedUs()}
	if s.db != nil && strings.TrimSpace(text) != "" {
		row := EvaluationModel(text, score, resp.ProcessingTimeUs)
		if err := s.db.SaveAdEvaluation(row); err != nil {
			historyWriteFailures.WithLabelValues("ad_evaluations").Inc()
			logrus.WithError(err).Warn("save ad evaluation")
		} else {
			resp.ID = row.PublicID
		}
	}

	logrus.WithFields(logrus.Fields{
		"source": source,
		"words":  score.WordCount,
		"total":  score.Total,
		"band":   score.Band,
	}).Debug("ad scored")
	return resp
}

func (s *Server) handleListEvaluations(c *gin.Context) {
	if !s.requireHistory(c) {
		return
	}
	var minTotal float64
	if value := strings.TrimSpace(c.Query("min_total")); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			s.renderError(c, http.StatusBadRequest, fmt.Errorf("invalid min_total: %s", value))
			return
		}
		minTotal = parsed
	}
	offset, limit := pagination(c, 25)
	rows, total, err := s.db.ListAdEvaluations(store.EvaluationQuery{
		Query:    strings.TrimSpace(c.Query("q")),
		Band:     c.Query("band"),
		MinTotal: minTotal,
		Sort:     c.Query("sort"),
		Offset:   offset,
		Limit:    limit,
	})
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	dtos := make([]EvaluationDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, EvaluationFromModel(row))
	}
	c.JSON(http.StatusOK, EvaluationsResponse{Items: dtos, Total: total})
}

func (s *Server) handleGetEvaluation(c *gin.Context) {
	if !s.requireHistory(c) {
		return
	}
	row, err := s.db.GetAdEvaluation(c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.renderError(c, http.StatusNotFound, fmt.Errorf("evaluation %s not found", c.Param("id")))
		} else {
			s.renderError(c, http.StatusInternalServerError, err)
		}
		return
	}
	c.JSON(http.StatusOK, EvaluationFromModel(*row))
}
