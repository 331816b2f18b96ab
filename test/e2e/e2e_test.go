// Package e2e drives the assembled service: sqlite reference data behind a
// redis cache, the scoring engine, and the HTTP transport on a real socket.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellness-engine/internal/assessment"
	apihttp "wellness-engine/internal/api/http"
	"wellness-engine/internal/common/camunda"
	"wellness-engine/internal/common/config"
	"wellness-engine/internal/common/database"
	"wellness-engine/internal/common/logger"
	"wellness-engine/internal/common/metrics"
	"wellness-engine/internal/scoring"
	"wellness-engine/internal/scoring/reference"
	ew "wellness-engine/internal/workers/assessment/evaluate-wellness"
	"wellness-engine/pkg/registry"
)

const (
	tablesPath   = "../../configs/reference_tables.yaml"
	registryPath = "../../configs/activity-registry.json"
)

// seedSQLite writes the shipped tables into a fresh database file and
// returns its path.
func seedSQLite(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	snap, err := reference.NewFileSource(tablesPath).Fetch(ctx)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "reference.db")
	db, err := database.Open(ctx, database.DriverSQLite, "file:"+path, database.Pool{MaxOpen: 1})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, reference.NewSQLWriter(db, database.DriverSQLite).Write(ctx, snap))
	return path
}

type stack struct {
	server *apihttp.Server
	http   *httptest.Server
	redis  *miniredis.Miniredis
}

func startStack(t *testing.T) *stack {
	t.Helper()
	ctx := context.Background()
	log := logger.NewTestLogger(t)

	ro, err := database.NewSQLite(ctx, config.SQLiteConfig{Path: seedSQLite(t)})
	require.NoError(t, err)
	t.Cleanup(func() { ro.Close() })

	mr := miniredis.RunT(t)
	rdb, err := database.NewRedis(ctx, config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })

	cfg := config.ServerConfig{
		Port:           0,
		AllowedOrigins: []string{"*"},
		RequestTimeout: 5000,
		MaxBodyBytes:   64 * 1024,
	}
	policy := scoring.DefaultPolicy()
	newRunner := func(tables *reference.Tables) *assessment.Runner {
		engine := scoring.NewEngine(tables, policy, log, scoring.WithRecorder(metrics.SubscoreRecorder{}))
		return assessment.NewRunner(engine, nil, metrics.TransportHTTP)
	}

	server := apihttp.NewServer(cfg, newRunner(reference.Empty()), log)
	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)

	provider := reference.NewProvider(
		reference.NewSQLSource(ro, database.DriverSQLite),
		reference.NewCache(rdb, "", time.Hour),
		log,
	)
	tables, err := provider.LoadWithRetry(ctx, 3, 10*time.Millisecond)
	require.NoError(t, err)
	server.SetRunner(newRunner(tables))

	return &stack{server: server, http: ts, redis: mr}
}

func post(t *testing.T, url string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func getStatus(t *testing.T, url string) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestE2E_AssessmentOverHTTP(t *testing.T) {
	s := startStack(t)

	assert.Equal(t, http.StatusServiceUnavailable, getStatus(t, s.http.URL+"/ready"))
	s.server.MarkReady()
	assert.Equal(t, http.StatusOK, getStatus(t, s.http.URL+"/ready"))

	// the provider populated the cache from sqlite
	assert.True(t, s.redis.Exists(reference.DefaultCacheKey))

	status, out := post(t, s.http.URL+"/process-assessment", map[string]interface{}{
		"age":                     "30 to 34 years",
		"familyGrossIncome":       5000,
		"familyExpenses":          "$2,500 - $4,999",
		"totalAssets":             "$100,000 - $500,000",
		"totalDebt":               "Less than $100,000",
		"retirementStrategy":      "Moderate",
		"retirementExpenseChange": "Same",
	})
	require.Equal(t, http.StatusOK, status, out)

	assert.Equal(t, 7.0, out["incomeScore"])
	assert.Equal(t, 6.0, out["familyBudgetScore"])
	assert.Equal(t, 8.4, out["netWorthScore"])
	assert.NotNil(t, out["retirementScore"])
	assert.NotEmpty(t, out["assessmentId"])
	assert.Equal(t, "30 to 34 years", out["receivedData"].(map[string]interface{})["age"])

	status, out = post(t, s.http.URL+"/api/v1/assessments", map[string]interface{}{"familyGrossIncome": 5000})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "MISSING_FIELD", out["code"])
	assert.Equal(t, "age", out["field"])
}

func TestE2E_CacheServesRestart(t *testing.T) {
	s := startStack(t)
	ctx := context.Background()
	log := logger.NewNoOpLogger()

	rdb, err := database.NewRedis(ctx, config.RedisConfig{Address: s.redis.Addr()})
	require.NoError(t, err)
	defer rdb.Close()

	// a second instance whose database is gone still starts from the cache
	missing := reference.NewFileSource(filepath.Join(t.TempDir(), "gone.yaml"))
	tables, err := reference.NewProvider(missing, reference.NewCache(rdb, "", time.Hour), log).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 108, tables.RowCounts()["income_percentiles"])
}

func TestE2E_WorkerContract(t *testing.T) {
	reg, err := registry.LoadRegistry(registryPath)
	require.NoError(t, err)
	require.NoError(t, reg.Validate())
	activity, found := reg.Find(ew.TaskType)
	require.True(t, found)

	tables, err := reference.LoadFile(tablesPath)
	require.NoError(t, err)
	engine := scoring.NewEngine(tables, scoring.DefaultPolicy(), logger.NewNoOpLogger())

	h, err := ew.NewHandler(ew.HandlerOptions{
		Runner:   assessment.NewRunner(engine, nil, metrics.TransportWorker),
		Logger:   logger.NewNoOpLogger(),
		Activity: activity,
	})
	require.NoError(t, err)

	vars := map[string]interface{}{
		activity.InputVariable: map[string]interface{}{"age": "55 to 59 years", "familyGrossIncome": "$10,000"},
	}
	require.NoError(t, activity.ValidateInput(vars))

	output, err := h.Execute(context.Background(), &ew.Input{AssessmentRequest: vars[activity.InputVariable].(map[string]interface{})})
	require.NoError(t, err)

	raw, err := json.Marshal(output)
	require.NoError(t, err)
	var completed map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &completed))
	assert.NoError(t, activity.ValidateOutput(completed))
}

// TestE2E_Zeebe needs a running gateway, e.g. ZEEBE_ADDRESS=localhost:26500.
func TestE2E_Zeebe(t *testing.T) {
	addr := os.Getenv("ZEEBE_ADDRESS")
	if addr == "" {
		t.Skip("ZEEBE_ADDRESS not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := camunda.NewClientWithConfig(ctx, camunda.ConfigFromApp(config.CamundaConfig{
		Enabled:       true,
		BrokerAddress: addr,
		Timeout:       10000,
	}))
	require.NoError(t, err)
	defer client.Close()
	require.NoError(t, client.HealthCheck(ctx))

	engine := scoring.NewEngine(nil, scoring.DefaultPolicy(), logger.NewNoOpLogger())
	h, err := ew.NewHandler(ew.HandlerOptions{
		Runner: assessment.NewRunner(engine, nil, metrics.TransportWorker),
		Retry:  client.RetryConfig(),
		Logger: logger.NewTestLogger(t),
	})
	require.NoError(t, err)

	w := camunda.NewWorker(client.GetClient(), ew.TaskType, 1, h, logger.NewTestLogger(t))
	w.Stop()
}
