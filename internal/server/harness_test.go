package server

import (
	"context"
	"fmt"
	"time"

	"github.com/bobmcallan/sweep/internal/app"
	"github.com/bobmcallan/sweep/internal/common"
	"github.com/bobmcallan/sweep/internal/models"
)

// --- Mocks ---

type mockScanService struct {
	scanFunc  func(ctx context.Context, req models.ScanRequest) (*models.ScanResponse, error)
	universes []models.Universe
	lastReq   models.ScanRequest
}

func (m *mockScanService) Scan(ctx context.Context, req models.ScanRequest) (*models.ScanResponse, error) {
	m.lastReq = req
	if m.scanFunc != nil {
		return m.scanFunc(ctx, req)
	}
	return sampleScanResponse(), nil
}

func (m *mockScanService) ListUniverses() []models.Universe { return m.universes }

func (m *mockScanService) ResolveUniverse(name string) ([]string, error) {
	for _, u := range m.universes {
		if u.Name == name {
			return u.Tickers, nil
		}
	}
	return nil, fmt.Errorf("unknown universe: %s", name)
}

type mockReportService struct {
	markdown   string
	htmlErr    error
	chartPNG   []byte
	chartErr   error
	gotResults []models.ScanResult
}

func (m *mockReportService) Build(results []models.ScanResult) string {
	m.gotResults = results
	if m.markdown != "" {
		return m.markdown
	}
	return "# Market Scan Report\n"
}

func (m *mockReportService) RenderHTML(markdown string) (string, error) {
	if m.htmlErr != nil {
		return "", m.htmlErr
	}
	return "<html><body>" + markdown + "</body></html>", nil
}

func (m *mockReportService) RenderTrendChart(ticker string, bars []models.PriceBar) ([]byte, error) {
	if m.chartErr != nil {
		return nil, m.chartErr
	}
	if m.chartPNG != nil {
		return m.chartPNG, nil
	}
	return []byte("\x89PNG\r\n\x1a\n"), nil
}

type mockIntelService struct {
	enabled bool
	brief   *models.ScanBrief
	called  bool
}

func (m *mockIntelService) Summarize(ctx context.Context, results []models.ScanResult) *models.ScanBrief {
	m.called = true
	return m.brief
}

func (m *mockIntelService) Enabled() bool { return m.enabled }

type mockScheduleService struct {
	jobs    map[string]*models.Job
	addErr  error
	stopped bool
}

func (m *mockScheduleService) Add(spec models.JobSpec) (*models.Job, error) {
	if m.addErr != nil {
		return nil, m.addErr
	}
	if _, err := spec.GetInterval(); err != nil {
		return nil, err
	}
	job := &models.Job{ID: fmt.Sprintf("job-%d", len(m.jobs)+1), Spec: spec, CreatedAt: time.Now()}
	if m.jobs == nil {
		m.jobs = map[string]*models.Job{}
	}
	m.jobs[job.ID] = job
	return job, nil
}

func (m *mockScheduleService) Get(id string) (*models.Job, error) {
	if job, ok := m.jobs[id]; ok {
		return job, nil
	}
	return nil, fmt.Errorf("job %s not found", id)
}

func (m *mockScheduleService) List() []*models.Job {
	out := make([]*models.Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		out = append(out, j)
	}
	return out
}

func (m *mockScheduleService) Remove(id string) error {
	if _, ok := m.jobs[id]; !ok {
		return fmt.Errorf("job %s not found", id)
	}
	delete(m.jobs, id)
	return nil
}

func (m *mockScheduleService) Stop(ctx context.Context) error {
	m.stopped = true
	return nil
}

type mockMarketClient struct {
	closesFunc func(ctx context.Context, ticker, rng string) ([]models.PriceBar, error)
	lastTicker string
	lastRange  string
}

func (m *mockMarketClient) GetHeadlines(ctx context.Context, ticker string, limit int) ([]string, error) {
	return nil, nil
}

func (m *mockMarketClient) GetFinancials(ctx context.Context, ticker string) (*models.Financials, error) {
	return nil, nil
}

func (m *mockMarketClient) GetDailyCloses(ctx context.Context, ticker string, rng string) ([]models.PriceBar, error) {
	m.lastTicker = ticker
	m.lastRange = rng
	if m.closesFunc != nil {
		return m.closesFunc(ctx, ticker, rng)
	}
	return []models.PriceBar{
		{Date: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), Close: 100},
	}, nil
}

// --- Harness ---

type testMocks struct {
	scan     *mockScanService
	report   *mockReportService
	intel    *mockIntelService
	schedule *mockScheduleService
	market   *mockMarketClient
}

func newTestServer(cfg *common.Config) (*Server, *testMocks) {
	logger := common.NewSilentLogger()
	if cfg == nil {
		cfg = common.NewDefaultConfig()
	}
	m := &testMocks{
		scan:     &mockScanService{},
		report:   &mockReportService{},
		intel:    &mockIntelService{},
		schedule: &mockScheduleService{},
		market:   &mockMarketClient{},
	}
	a := &app.App{
		Config:          cfg,
		Logger:          logger,
		MarketClient:    m.market,
		ScanService:     m.scan,
		ReportService:   m.report,
		IntelService:    m.intel,
		ScheduleService: m.schedule,
		StartupTime:     time.Now(),
	}
	return &Server{app: a, logger: logger}, m
}

func sampleScanResponse() *models.ScanResponse {
	return &models.ScanResponse{
		Results: []models.ScanResult{
			{
				Ticker:      "AAPL",
				News:        5,
				NewsStatus:  models.StatusOK,
				Headlines:   5,
				Fund:        20,
				FundReason:  "Revenue growing, Net income improving",
				FundStatus:  models.StatusOK,
				Trend:       10,
				TrendReason: "Uptrend",
				TrendStatus: models.StatusOK,
				FinalScore:  14,
				Signal:      "BEARISH",
			},
		},
		Meta: models.ScanMeta{
			Requested:  1,
			Returned:   1,
			Weights:    models.DefaultWeights(),
			ExecutedAt: time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
		},
	}
}
