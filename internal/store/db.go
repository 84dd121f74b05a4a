package store

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when a record with the requested public ID does not exist.
var ErrNotFound = errors.New("record not found")

// Database wraps the GORM DB handle and exposes repository helpers.
type Database struct {
	gorm *gorm.DB
	mu   sync.Mutex
}

// Open initializes the SQLite-backed database at the provided path.
func Open(path string, silent bool) (*Database, error) {
	cfg := &gorm.Config{}
	if silent {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}
	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&Plan{}, &AdEvaluation{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		logrus.WithError(err).Warn("enable WAL mode")
	}
	if err := db.Exec("PRAGMA synchronous=NORMAL").Error; err != nil {
		logrus.WithError(err).Warn("set synchronous pragma")
	}
	if err := applyIndexes(db); err != nil {
		return nil, fmt.Errorf("apply indexes: %w", err)
	}
	return &Database{gorm: db}, nil
}

// GORM exposes the raw gorm.DB handle.
func (d *Database) GORM() *gorm.DB {
	return d.gorm
}

// Close closes the underlying database connection.
func (d *Database) Close() error {
	if d == nil {
		return nil
	}
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SavePlan inserts a plan, assigning a public ID when missing.
func (d *Database) SavePlan(p *Plan) error {
	if p == nil {
		return errors.New("plan is nil")
	}
	if p.PublicID == "" {
		p.PublicID = uuid.NewString()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Create(p).Error
}

// GetPlan fetches a plan by public ID.
func (d *Database) GetPlan(publicID string) (*Plan, error) {
	var plan Plan
	if err := d.gorm.Where("public_id = ?", strings.TrimSpace(publicID)).First(&plan).Error; err != nil {
		return nil, notFound(err)
	}
	return &plan, nil
}

// PlanQuery encapsulates filters and pagination for listing plans.
type PlanQuery struct {
	Industry string
	Audience string
	Kind     string
	Sort     string
	Offset   int
	Limit    int
}

// ListPlans returns paginated plans applying optional filters.
func (d *Database) ListPlans(opts PlanQuery) ([]Plan, int64, error) {
	base := d.gorm.Model(&Plan{})
	if v := strings.TrimSpace(opts.Industry); v != "" {
		base = base.Where("LOWER(industry) = ?", strings.ToLower(v))
	}
	if v := strings.TrimSpace(opts.Audience); v != "" {
		base = base.Where("LOWER(audience) = ?", strings.ToLower(v))
	}
	if v := strings.TrimSpace(opts.Kind); v != "" {
		base = base.Where("kind = ?", strings.ToLower(v))
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := base.Order(planOrder(opts.Sort)).Offset(opts.Offset)
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	var rows []Plan
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// SaveAdEvaluation upserts an evaluation keyed by the hash of its text and reloads the
// stored row into e.
func (d *Database) SaveAdEvaluation(e *AdEvaluation) error {
	if e == nil {
		return errors.New("evaluation is nil")
	}
	e.TextHash = TextHash(e.Text)
	if e.PublicID == "" {
		e.PublicID = uuid.NewString()
	}
	columns := []string{
		"word_count",
		"readability",
		"length_conciseness",
		"emotion",
		"power_words",
		"cta",
		"uniqueness",
		"total",
		"band",
		"suggestions_json",
		"processing_time_us",
		"updated_at",
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.gorm.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "text_hash"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(e).Error; err != nil {
		return err
	}
	var stored AdEvaluation
	if err := d.gorm.Where("text_hash = ?", e.TextHash).First(&stored).Error; err != nil {
		return err
	}
	*e = stored
	return nil
}

// GetAdEvaluation fetches an evaluation by public ID.
func (d *Database) GetAdEvaluation(publicID string) (*AdEvaluation, error) {
	var row AdEvaluation
	if err := d.gorm.Where("public_id = ?", strings.TrimSpace(publicID)).First(&row).Error; err != nil {
		return nil, notFound(err)
	}
	return &row, nil
}

// EvaluationQuery encapsulates filters and pagination for listing ad evaluations.
type EvaluationQuery struct {
	Query    string
	Band     string
	MinTotal float64
	Sort     string
	Offset   int
	Limit    int
}

// ListAdEvaluations returns paginated evaluation records applying optional filters.
func (d *Database) ListAdEvaluations(opts EvaluationQuery) ([]AdEvaluation, int64, error) {
	base := d.gorm.Model(&AdEvaluation{})
	if opts.Query != "" {
		base = base.Where("text LIKE ?", fmt.Sprintf("%%%s%%", opts.Query))
	}
	if band := strings.TrimSpace(opts.Band); band != "" {
		base = base.Where("LOWER(band) = ?", strings.ToLower(band))
	}
	if opts.MinTotal > 0 {
		base = base.Where("total >= ?", opts.MinTotal)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := base.Order(evaluationOrder(opts.Sort)).Offset(opts.Offset)
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	var rows []AdEvaluation
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Counts returns the number of stored plans and evaluations.
func (d *Database) Counts() (plans int64, evaluations int64, err error) {
	if err = d.gorm.Model(&Plan{}).Count(&plans).Error; err != nil {
		return 0, 0, err
	}
	if err = d.gorm.Model(&AdEvaluation{}).Count(&evaluations).Error; err != nil {
		return 0, 0, err
	}
	return plans, evaluations, nil
}

// ClearHistory removes every stored plan and evaluation.
func (d *Database) ClearHistory() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Plan{}).Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&AdEvaluation{}).Error
	})
}

// TextHash returns the key used to deduplicate ad texts: sha256 of the trimmed, lower-cased text.
func TextHash(text string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(text))))
	return hex.EncodeToString(sum[:])
}

func planOrder(sort string) string {
	switch strings.ToLower(strings.TrimSpace(sort)) {
	case "created_asc":
		return "plans.created_at ASC, plans.id ASC"
	case "budget_desc":
		return "plans.total_budget DESC, plans.id DESC"
	case "budget_asc":
		return "plans.total_budget ASC, plans.id DESC"
	case "roi_desc":
		return "plans.projected_roi DESC, plans.id DESC"
	default:
		return "plans.id DESC"
	}
}

func evaluationOrder(sort string) string {
	switch strings.ToLower(strings.TrimSpace(sort)) {
	case "total_desc":
		return "ad_evaluations.total DESC, ad_evaluations.id DESC"
	case "total_asc":
		return "ad_evaluations.total ASC, ad_evaluations.id DESC"
	case "created_asc":
		return "ad_evaluations.created_at ASC, ad_evaluations.id ASC"
	default:
		return "ad_evaluations.id DESC"
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func applyIndexes(db *gorm.DB) error {
	stmts := []string{
		"CREATE INDEX IF NOT EXISTS idx_plans_industry_audience ON plans(industry, audience)",
		"CREATE INDEX IF NOT EXISTS idx_ad_evaluations_band_total ON ad_evaluations(band, total)",
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
