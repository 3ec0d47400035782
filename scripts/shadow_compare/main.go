package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// target is one report request replayed against both deployments.
type target struct {
	Path     string `json:"path"`
	Critical bool   `json:"critical"`
}

type targetFile struct {
	Targets []target `json:"targets"`
}

type comparison struct {
	Target          target
	BaselineStatus  int
	CandidateStatus int
	StatusMatch     bool
	DataMatch       bool
	Error           error
}

func (c comparison) failed() bool {
	return c.Error != nil || !c.StatusMatch || !c.DataMatch
}

var defaultTargets = []target{
	{Path: "/api/v1/reports/attendance", Critical: true},
	{Path: "/api/v1/reports/finance", Critical: true},
	{Path: "/api/v1/reports/students", Critical: true},
	{Path: "/api/v1/reports/finance?paymentStatus=PENDING"},
	{Path: "/api/v1/reports/students?status=ACTIVE"},
}

func main() {
	var (
		baseline    string
		candidate   string
		targetsPath string
		timeout     time.Duration
	)
	flag.StringVar(&baseline, "baseline", "http://localhost:8080", "base URL of the reference deployment")
	flag.StringVar(&candidate, "candidate", "http://localhost:8081", "base URL of the deployment under test")
	flag.StringVar(&targetsPath, "targets", "", "optional JSON file with report targets")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.Parse()

	logr, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(2)
	}
	defer logr.Sync() //nolint:errcheck

	targets := defaultTargets
	if targetsPath != "" {
		if targets, err = loadTargets(targetsPath); err != nil {
			logr.Fatal("failed to load targets", zap.Error(err))
		}
	}

	client := &http.Client{Timeout: timeout}
	breaking := 0
	for _, t := range targets {
		res := compareTarget(client, baseline, candidate, t)
		fields := []zap.Field{
			zap.String("path", t.Path),
			zap.Int("baseline_status", res.BaselineStatus),
			zap.Int("candidate_status", res.CandidateStatus),
			zap.Bool("data_match", res.DataMatch),
			zap.Bool("critical", t.Critical),
		}
		switch {
		case res.Error != nil:
			logr.Error("report request failed", append(fields, zap.Error(res.Error))...)
		case res.failed():
			logr.Warn("report diverged", fields...)
		default:
			logr.Info("report matched", fields...)
		}
		if res.failed() && t.Critical {
			breaking++
		}
	}
	if breaking > 0 {
		logr.Error("critical report diffs found", zap.Int("count", breaking))
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file targetFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if len(file.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return file.Targets, nil
}

func compareTarget(client *http.Client, baseline, candidate string, tgt target) comparison {
	res := comparison{Target: tgt}
	baseStatus, baseBody, err := fetch(client, baseline, tgt.Path)
	if err != nil {
		res.Error = fmt.Errorf("baseline: %w", err)
		return res
	}
	candStatus, candBody, err := fetch(client, candidate, tgt.Path)
	if err != nil {
		res.Error = fmt.Errorf("candidate: %w", err)
		return res
	}
	res.BaselineStatus, res.CandidateStatus = baseStatus, candStatus
	res.StatusMatch = baseStatus == candStatus
	res.DataMatch, res.Error = reportsEqual(baseBody, candBody)
	return res
}

func fetch(client *http.Client, base, path string) (int, []byte, error) {
	if client == nil {
		return 0, nil, errors.New("nil client")
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	resp, err := client.Get(strings.TrimRight(base, "/") + path)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, body, nil
}

// reportsEqual compares the success flag, data and error code of two envelopes. Meta is ignored
// since timings and cache hits differ between runs.
func reportsEqual(a, b []byte) (bool, error) {
	left, err := decodeEnvelope(a)
	if err != nil {
		return false, fmt.Errorf("baseline body: %w", err)
	}
	right, err := decodeEnvelope(b)
	if err != nil {
		return false, fmt.Errorf("candidate body: %w", err)
	}
	return reflect.DeepEqual(left, right), nil
}

func decodeEnvelope(raw []byte) (map[string]interface{}, error) {
	var envelope struct {
		Success bool                   `json:"success"`
		Data    interface{}            `json:"data"`
		Error   map[string]interface{} `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, err
	}
	out := map[string]interface{}{
		"success": envelope.Success,
		"data":    normalize(envelope.Data),
	}
	if envelope.Error != nil {
		out["error"] = envelope.Error["code"]
	}
	return out, nil
}

// normalize renders numbers and numeric strings as canonical decimals so "3000", "3000.00" and 3000 compare equal.
func normalize(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		for k, item := range val {
			val[k] = normalize(item)
		}
		return val
	case []interface{}:
		for i, item := range val {
			val[i] = normalize(item)
		}
		return val
	case float64:
		return decimal.NewFromFloat(val).String()
	case string:
		if d, err := decimal.NewFromString(val); err == nil {
			return d.String()
		}
		return val
	default:
		return val
	}
}
