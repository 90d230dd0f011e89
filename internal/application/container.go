package application

import (
	"fmt"

	"go.uber.org/zap"

	auditapp "github.com/bughunter/bughunter/internal/application/audit"
	reportapp "github.com/bughunter/bughunter/internal/application/report"
	scanapp "github.com/bughunter/bughunter/internal/application/scan"
	scheduleapp "github.com/bughunter/bughunter/internal/application/schedule"
	"github.com/bughunter/bughunter/internal/backend"
	"github.com/bughunter/bughunter/internal/catalog"
	"github.com/bughunter/bughunter/internal/config"
	"github.com/bughunter/bughunter/internal/domain/audit"
	domainratelimit "github.com/bughunter/bughunter/internal/domain/ratelimit"
	"github.com/bughunter/bughunter/internal/domain/report"
	"github.com/bughunter/bughunter/internal/domain/scan"
	"github.com/bughunter/bughunter/internal/domain/schedule"
	"github.com/bughunter/bughunter/internal/infrastructure/persistence/json"
	"github.com/bughunter/bughunter/internal/ratelimit"
)

// Container holds all application services and repositories
// This is a simple dependency injection container
type Container struct {
	// Repositories
	ScanRepo      scan.Repository
	AuditRepo     audit.Repository
	RateLimitRepo domainratelimit.Repository
	ScheduleRepo  schedule.Repository
	ReportRepo    report.Repository

	// Domain components
	Catalog *catalog.Catalog
	Matcher *catalog.Matcher
	Limiter *ratelimit.Limiter

	// Services
	Orchestrator    *scanapp.Orchestrator
	AuditService    *auditapp.Service
	ScheduleService *scheduleapp.Service
	ReportService   *reportapp.Service
}

// NewContainer creates a new application service container
func NewContainer(cfg *config.Config, logger *zap.SugaredLogger) (*Container, error) {
	// Initialize repositories
	scanRepo, err := json.NewScanRepository(cfg.ResultsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create scan repository: %w", err)
	}

	auditRepo, err := json.NewAuditRepository(cfg.ResultsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit repository: %w", err)
	}

	rateLimitRepo, err := json.NewRateLimitRepository(cfg.ResultsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit repository: %w", err)
	}

	scheduleRepo, err := json.NewScheduleRepository(cfg.ResultsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create schedule repository: %w", err)
	}

	reportRepo, err := json.NewReportRepository(cfg.ResultsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create report repository: %w", err)
	}

	// Load the template corpus and build the content matcher
	templateCatalog, err := catalog.Load(cfg.TemplatesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load template catalog: %w", err)
	}
	matcher := catalog.NewMatcher(templateCatalog, catalog.MatcherConfig{
		Threshold: cfg.MatchThreshold,
	})

	limiter := ratelimit.NewLimiter(ratelimit.Config{
		Limit:  cfg.RateLimit,
		Window: cfg.RateWindow,
	}, rateLimitRepo)

	// Assemble the backend set
	fetcher := &backend.HTTPFetcher{Timeout: cfg.FetchTimeout}
	backends := []backend.Backend{
		&backend.SecurityHeaderCheck{Fetcher: fetcher},
		&backend.TLSCheck{Timeout: cfg.FetchTimeout},
		&backend.TemplateProbe{Fetcher: fetcher, Matcher: matcher, Catalog: templateCatalog},
	}
	if cfg.ExternalTool.Command != "" {
		backends = append(backends, backend.NewExternalToolAdapter(backend.ExternalToolConfig{
			Name:           cfg.ExternalTool.Name,
			Command:        cfg.ExternalTool.Command,
			Args:           cfg.ExternalTool.Args,
			TimeoutSeconds: cfg.ExternalTool.TimeoutSeconds,
		}))
	}

	// Initialize services
	orchestrator := scanapp.NewOrchestrator(scanapp.Config{
		MaxConcurrentScans: cfg.MaxConcurrentScans,
		ScanTimeout:        cfg.ScanTimeout,
		RequestsPerSecond:  cfg.RequestsPerSecond,
	}, backends, limiter, scanRepo, auditRepo, logger)

	auditService := auditapp.NewService(auditRepo)
	scheduleService := scheduleapp.NewService(scheduleRepo)
	reportService := reportapp.NewService(reportRepo, scanRepo)

	return &Container{
		ScanRepo:        scanRepo,
		AuditRepo:       auditRepo,
		RateLimitRepo:   rateLimitRepo,
		ScheduleRepo:    scheduleRepo,
		ReportRepo:      reportRepo,
		Catalog:         templateCatalog,
		Matcher:         matcher,
		Limiter:         limiter,
		Orchestrator:    orchestrator,
		AuditService:    auditService,
		ScheduleService: scheduleService,
		ReportService:   reportService,
	}, nil
}
