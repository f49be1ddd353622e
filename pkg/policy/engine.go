package policy

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/itchyny/gojq"
	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
	"github.com/open-policy-agent/opa/v1/storage"
	"github.com/open-policy-agent/opa/v1/storage/inmem"

	"weaver/pkg/apperror"
	"weaver/pkg/metrics"
	"weaver/pkg/telemetry"
)

//go:embed policies/*.rego
var embeddedPolicies embed.FS

// basePackage is the root Rego package every stage's rules nest under
// (stage name becomes the next path segment: weaver.policy.registry,
// weaver.policy.live_check_advice).
const basePackage = "weaver.policy"

// Engine is the core's policy adapter: a registry-wide and a per-sample
// live-check stage, each backed by a cached prepared Rego query over an
// in-memory store (§4.5).
type Engine struct {
	mu          sync.RWMutex
	modules     map[string]string // path -> rego source
	data        map[string]any
	transform   *gojq.Code
	precomputed map[string]any
	qc          *queryCache
	metrics     *metrics.Metrics
}

// NewEngine returns an Engine with the embedded default (no-op) policies
// loaded; call LoadPolicies to replace them.
func NewEngine() *Engine {
	e := &Engine{
		modules: make(map[string]string),
		data:    make(map[string]any),
		qc:      newQueryCache(),
		metrics: metrics.Get(),
	}
	_ = e.loadEmbeddedDefaults()
	return e
}

func (e *Engine) loadEmbeddedDefaults() error {
	entries, err := embeddedPolicies.ReadDir("policies")
	if err != nil {
		return apperror.Wrap(err, apperror.CodePolicySyntaxError, "failed to read embedded default policies")
	}
	modules := make(map[string]string, len(entries))
	for _, entry := range entries {
		content, err := embeddedPolicies.ReadFile("policies/" + entry.Name())
		if err != nil {
			return apperror.Wrap(err, apperror.CodePolicySyntaxError, "failed to read embedded policy "+entry.Name())
		}
		modules[entry.Name()] = string(content)
	}
	return e.setModules(modules)
}

// LoadPolicies loads policy modules from source (mirrors
// DEFAULT_LIVE_CHECK_REGO_POLICY_PATH's directory-or-single-file
// contract): a directory is walked for every *.rego file, a single path is
// loaded directly, and an empty source restores the embedded defaults.
func (e *Engine) LoadPolicies(source string) error {
	if source == "" {
		return e.loadEmbeddedDefaults()
	}

	info, err := os.Stat(source)
	if err != nil {
		return apperror.Wrap(err, apperror.CodePolicySyntaxError, "policy source not found: "+source)
	}

	modules := make(map[string]string)
	if info.IsDir() {
		walkErr := filepath.WalkDir(source, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(path, ".rego") {
				return nil
			}
			content, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			modules[path] = string(content)
			return nil
		})
		if walkErr != nil {
			return apperror.Wrap(walkErr, apperror.CodePolicySyntaxError, "failed to read policy directory "+source)
		}
	} else {
		content, err := os.ReadFile(source)
		if err != nil {
			return apperror.Wrap(err, apperror.CodePolicySyntaxError, "failed to read policy file "+source)
		}
		modules[source] = string(content)
	}

	return e.setModules(modules)
}

// setModules eagerly parses every module (catching syntax errors at load
// time rather than at first evaluation) and swaps them in, invalidating
// any cached prepared queries.
func (e *Engine) setModules(modules map[string]string) error {
	for path, src := range modules {
		if _, err := ast.ParseModule(path, src); err != nil {
			return apperror.Wrap(err, apperror.CodePolicySyntaxError, fmt.Sprintf("invalid rego module %s", path))
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.modules = modules
	e.qc.Empty()
	return nil
}

// SetData parameterises evaluation with the registry-derived JSON data
// object (§4.5's "set_data(json)"), re-running the jq pre-processor
// against it if one is configured, and invalidating cached queries so the
// next Check rebuilds its store.
func (e *Engine) SetData(data map[string]any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.data = data
	e.qc.Empty()
	return e.applyTransformLocked()
}

// SetTransform compiles a jq expression (translating
// weaver_forge::jq::execute_jq) that rewrites the registry data once, to
// precompute fast lookup structures ahead of per-sample evaluation.
func (e *Engine) SetTransform(jqExpr string) error {
	query, err := gojq.Parse(jqExpr)
	if err != nil {
		return apperror.Wrap(err, apperror.CodePolicyTransformError, "invalid jq transform")
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return apperror.Wrap(err, apperror.CodePolicyTransformError, "failed to compile jq transform")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.transform = code
	e.qc.Empty()
	return e.applyTransformLocked()
}

func (e *Engine) applyTransformLocked() error {
	if e.transform == nil {
		e.precomputed = nil
		return nil
	}
	iter := e.transform.Run(e.data)
	v, ok := iter.Next()
	if !ok {
		e.precomputed = nil
		return nil
	}
	if err, ok := v.(error); ok {
		return apperror.Wrap(err, apperror.CodePolicyTransformError, "jq transform failed")
	}
	precomputed, ok := v.(map[string]any)
	if !ok {
		return apperror.New(apperror.CodePolicyTransformError, "jq transform must produce a JSON object")
	}
	e.precomputed = precomputed
	return nil
}

// Check evaluates stage's policies against input. Per §4.5/§7, the engine
// is treated as opaque: a failure preparing or evaluating the query never
// panics or bubbles up as an error, it is reported as a single Violation
// tagged "policy_engine_error".
func (e *Engine) Check(ctx context.Context, stage Stage, input map[string]any) ([]Violation, error) {
	return telemetry.Traced(ctx, "policy.check", nil, func(ctx context.Context) ([]Violation, error) {
		start := time.Now()
		violations, success := e.check(ctx, stage, input)
		if e.metrics != nil {
			e.metrics.RecordPolicyEval(string(stage), success, time.Since(start))
		}
		telemetry.SetAttributes(ctx, telemetry.PolicyAttributes(string(stage), len(violations))...)
		return violations, nil
	})
}

func (e *Engine) check(ctx context.Context, stage Stage, input map[string]any) ([]Violation, bool) {
	prepared, err := e.prepareQuery(ctx, stage)
	if err != nil {
		return []Violation{engineErrorViolation(err)}, false
	}

	results, err := prepared.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return []Violation{engineErrorViolation(err)}, false
	}
	if len(results) == 0 {
		return nil, true
	}

	raw, ok := results[0].Bindings["violations"]
	if !ok {
		return nil, true
	}
	return decodeViolations(raw), true
}

func engineErrorViolation(err error) Violation {
	return Violation{Rule: "policy_engine_error", Message: err.Error()}
}

func decodeViolations(raw any) []Violation {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]Violation, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		v := Violation{}
		if s, ok := m["rule"].(string); ok {
			v.Rule = s
		}
		if s, ok := m["message"].(string); ok {
			v.Message = s
		}
		if d, ok := m["details"].(map[string]any); ok {
			v.Details = d
		}
		out = append(out, v)
	}
	return out
}

// prepareQuery returns the cached prepared query for stage, building it
// (store, transaction, compiled modules) on a cache miss.
func (e *Engine) prepareQuery(ctx context.Context, stage Stage) (*rego.PreparedEvalQuery, error) {
	return e.qc.Get(string(stage), func(string) (*rego.PreparedEvalQuery, error) {
		e.mu.RLock()
		dataObj := make(map[string]any, len(e.data)+len(e.precomputed))
		for k, v := range e.data {
			dataObj[k] = v
		}
		for k, v := range e.precomputed {
			dataObj[k] = v
		}
		modules := make(map[string]string, len(e.modules))
		for k, v := range e.modules {
			modules[k] = v
		}
		e.mu.RUnlock()

		store := inmem.NewFromObject(dataObj)
		tx, err := store.NewTransaction(ctx, storage.WriteParams)
		if err != nil {
			return nil, fmt.Errorf("could not create policy store transaction: %w", err)
		}

		pkg := fmt.Sprintf("%s.%s", basePackage, stage)
		opts := []func(*rego.Rego){
			rego.Query(fmt.Sprintf("violations = data.%s.violations", pkg)),
			rego.Store(store),
			rego.Transaction(tx),
		}
		for path, src := range modules {
			opts = append(opts, rego.Module(path, src))
		}

		prepared, err := rego.New(opts...).PrepareForEval(ctx)
		if err != nil {
			return nil, fmt.Errorf("could not prepare rego query for stage %s: %w", stage, err)
		}
		if err := store.Commit(ctx, tx); err != nil {
			return nil, fmt.Errorf("could not commit policy store transaction: %w", err)
		}
		return &prepared, nil
	})
}
