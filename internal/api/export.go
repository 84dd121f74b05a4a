package api

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"spendr/backend/internal/store"
)

func exportKind(c *gin.Context) (string, error) {
	kind := strings.ToLower(strings.TrimSpace(c.DefaultQuery("type", "plans")))
	switch kind {
	case "plans", "evaluations":
		return kind, nil
	default:
		return "", fmt.Errorf("invalid export type: %s", kind)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func (s *Server) handleExportCSV(c *gin.Context) {
	if !s.requireHistory(c) {
		return
	}
	kind, err := exportKind(c)
	if err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}

	var (
		headers []string
		lines   [][]string
	)
	if kind == "plans" {
		rows, _, err := s.db.ListPlans(store.PlanQuery{Sort: c.Query("sort")})
		if err != nil {
			s.renderError(c, http.StatusInternalServerError, err)
			return
		}
		headers = []string{"id", "kind", "industry", "audience", "total_budget", "aov", "top_channel", "projected_roi", "projected_revenue", "created_at"}
		for _, row := range rows {
			lines = append(lines, []string{
				row.PublicID,
				row.Kind,
				row.Industry,
				row.Audience,
				formatFloat(row.TotalBudget),
				formatFloat(row.AOV),
				row.TopChannel,
				formatFloat(row.ProjectedROI),
				formatFloat(row.ProjectedRevenue),
				row.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
			})
		}
	} else {
		rows, _, err := s.db.ListAdEvaluations(store.EvaluationQuery{Sort: c.Query("sort")})
		if err != nil {
			s.renderError(c, http.StatusInternalServerError, err)
			return
		}
		headers = []string{"id", "text", "word_count", "readability", "length_conciseness", "emotion", "power_words", "cta", "uniqueness", "total", "band", "suggestions"}
		for _, row := range rows {
			dto := EvaluationFromModel(row)
			lines = append(lines, []string{
				dto.ID,
				dto.Text,
				strconv.Itoa(dto.WordCount),
				formatFloat(dto.Scores.Readability),
				formatFloat(dto.Scores.LengthConciseness),
				formatFloat(dto.Scores.Emotion),
				formatFloat(dto.Scores.PowerWords),
				formatFloat(dto.Scores.CTA),
				formatFloat(dto.Scores.Uniqueness),
				formatFloat(dto.Total),
				dto.Band,
				strings.Join(dto.Suggestions, "|"),
			})
		}
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=spendr-%s.csv", kind))
	c.Header("Content-Type", "text/csv")

	writer := csv.NewWriter(c.Writer)
	if err := writer.Write(headers); err != nil {
		return
	}
	for _, line := range lines {
		if err := writer.Write(line); err != nil {
			return
		}
	}
	writer.Flush()
}

func (s *Server) handleExportJSON(c *gin.Context) {
	if !s.requireHistory(c) {
		return
	}
	kind, err := exportKind(c)
	if err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=spendr-%s.json", kind))
	if kind == "plans" {
		rows, _, err := s.db.ListPlans(store.PlanQuery{Sort: c.Query("sort")})
		if err != nil {
			s.renderError(c, http.StatusInternalServerError, err)
			return
		}
		dtos := make([]PlanDTO, 0, len(rows))
		for _, row := range rows {
			dtos = append(dtos, PlanFromModel(row, true))
		}
		c.JSON(http.StatusOK, dtos)
		return
	}

	rows, _, err := s.db.ListAdEvaluations(store.EvaluationQuery{Sort: c.Query("sort")})
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	dtos := make([]EvaluationDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, EvaluationFromModel(row))
	}
	c.JSON(http.StatusOK, dtos)
}
