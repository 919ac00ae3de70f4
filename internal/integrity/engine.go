package integrity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/squadpulse/squadpulse/internal/player"
	"github.com/squadpulse/squadpulse/pkg/metrics"
)

// History limits applied when the caller passes none.
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
)

// staleRatingAge is how old an AI rating may get before the integrity
// report flags it.
const staleRatingAge = 30 * 24 * time.Hour

// Engine validates incoming field updates, computes cascading derived
// updates, merges them into the player document, persists the result and
// records an append-only history entry. Construct one instance at startup
// and share it; the engine itself holds no per-call state.
type Engine struct {
	store           Store
	log             *zap.Logger
	metrics         *metrics.Manager
	validationRules []ValidationRule
	cascadeRules    []CascadeRule
}

// NewEngine builds the engine with the static rule tables. It fails if two
// cascade rules declare the same target path, so declaration order can never
// silently decide which rule wins a collision.
func NewEngine(store Store, log *zap.Logger, m *metrics.Manager) (*Engine, error) {
	cascadeRules := defaultCascadeRules()
	targets := map[string]string{}
	for _, rule := range cascadeRules {
		for _, target := range rule.Targets {
			if owner, dup := targets[target]; dup {
				return nil, fmt.Errorf("cascade rules %q and %q both target %q", owner, rule.Source, target)
			}
			targets[target] = rule.Source
		}
	}
	return &Engine{
		store:           store,
		log:             log,
		metrics:         m,
		validationRules: defaultValidationRules(store),
		cascadeRules:    cascadeRules,
	}, nil
}

// ProcessUpdate runs the full pipeline for one update batch:
// load, validate (collecting every violation), cascade, merge with cascade
// precedence, snapshot prior values, recompute composite scores, persist
// atomically with the history entry, and emit the significant-change
// notification. Validation failures are terminal for the call and leave the
// stored document untouched.
func (e *Engine) ProcessUpdate(ctx context.Context, playerID string, updates map[string]interface{}, source Source, actor, reason string) *Result {
	p, result := e.loadAndValidate(ctx, playerID, updates)
	if result != nil {
		return result
	}

	docMap, err := docToMap(&p.Doc)
	if err != nil {
		e.log.Error("encoding player document failed", zap.String("player_id", playerID), zap.Error(err))
		return failResult(FailurePersistence, "internal error while encoding player document")
	}

	final, cascadeErrs := e.runCascade(updates, docMap, &p.Doc)
	if len(cascadeErrs) > 0 {
		e.metrics.UpdateRejected()
		return failResult(FailureValidation, cascadeErrs...)
	}

	paths := sortedKeys(final)
	previous := JSONMap{}
	for _, path := range paths {
		if v, ok := getPath(docMap, path); ok {
			previous[path] = v
		} else {
			previous[path] = nil
		}
	}
	for _, path := range paths {
		setPath(docMap, path, final[path])
	}

	newDoc, err := mapToDoc(docMap)
	if err != nil {
		e.metrics.UpdateRejected()
		return failResult(FailureValidation, "update does not fit the player document: "+err.Error())
	}

	e.recomputeComposites(p, newDoc, updates, final, previous)

	record := &DataUpdate{
		ID:              uuid.NewString(),
		PlayerID:        playerID,
		Timestamp:       time.Now().UTC(),
		Source:          source,
		Category:        deriveCategory(sortedKeys(updates)),
		Previous:        previous,
		Applied:         JSONMap(final),
		Actor:           actor,
		Reason:          reason,
		AffectedMetrics: affectedMetrics(sortedKeys(final)),
	}

	p.Doc = *newDoc
	mirrorColumns(p)

	if err := e.store.ReplaceAndLog(ctx, p, record); err != nil {
		e.log.Error("persisting player update failed",
			zap.String("player_id", playerID), zap.Error(err))
		return failResult(FailurePersistence, "database error while saving update")
	}

	if sig := significantChanges(sortedKeys(final)); len(sig) > 0 {
		// audit notification; a downstream consumer tails these entries
		e.log.Info("significant field change",
			zap.String("player_id", playerID),
			zap.Strings("fields", sig),
			zap.String("source", string(source)),
			zap.String("actor", actor))
		e.metrics.NotificationEmitted()
	}

	e.metrics.UpdateProcessed(string(source))
	return okResult()
}

// Validate is the read-only dry run behind POST /api/data/validate: it runs
// the same path and rule checks as ProcessUpdate but never cascades,
// persists or records history.
func (e *Engine) Validate(ctx context.Context, playerID string, updates map[string]interface{}) *Result {
	if _, result := e.loadAndValidate(ctx, playerID, updates); result != nil {
		return result
	}
	return okResult()
}

func (e *Engine) loadAndValidate(ctx context.Context, playerID string, updates map[string]interface{}) (*player.Player, *Result) {
	if len(updates) == 0 {
		return nil, failResult(FailureValidation, "no updates provided")
	}

	p, err := e.store.GetPlayer(ctx, playerID)
	if err != nil {
		if errors.Is(err, player.ErrPlayerNotFound) {
			return nil, failResult(FailureNotFound, "player not found: "+playerID)
		}
		e.log.Error("loading player failed", zap.String("player_id", playerID), zap.Error(err))
		return nil, failResult(FailurePersistence, "database error while loading player")
	}

	var errs []string
	for _, path := range sortedKeys(updates) {
		if !knownPath(path) {
			errs = append(errs, "unknown field path: "+path)
		}
	}
	for _, rule := range e.validationRules {
		for _, value := range ruleValues(updates, rule.Path) {
			if !rule.Check(ctx, value, p) {
				errs = append(errs, rule.Message)
				break
			}
		}
	}
	if len(errs) > 0 {
		e.metrics.UpdateRejected()
		return nil, failResult(FailureValidation, errs...)
	}
	return p, nil
}

// runCascade evaluates every cascade rule whose source appears in the batch
// and merges the caller's updates with the derived values, derived values
// winning any overlap since they are computed from the latest source value.
func (e *Engine) runCascade(updates map[string]interface{}, docMap map[string]interface{}, doc *player.Document) (map[string]interface{}, []string) {
	cascade := map[string]interface{}{}
	var errs []string
	for _, rule := range e.cascadeRules {
		value, ok := cascadeSourceValue(updates, docMap, rule.Source)
		if !ok {
			continue
		}
		derived, err := rule.Apply(value, doc)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		for path, v := range derived {
			cascade[path] = v
		}
		e.metrics.CascadeEvaluated(rule.Source)
	}
	if len(errs) > 0 {
		return nil, errs
	}

	final := make(map[string]interface{}, len(updates)+len(cascade))
	for path, v := range updates {
		final[path] = v
	}
	for path, v := range cascade {
		final[path] = v
	}
	return final, nil
}

// recomputeComposites refreshes the scores that depend on several primary
// namespaces at once. They are deliberately not cascade targets: recomputing
// them after the merge sees every component changed in the batch, and a
// direct caller write (a valid path) is never clobbered.
func (e *Engine) recomputeComposites(p *player.Player, newDoc *player.Document, updates, final map[string]interface{}, previous JSONMap) {
	touched := func(path string) bool {
		for k := range final {
			if pathWithin(path, k) || pathWithin(k, path) {
				return true
			}
		}
		return false
	}
	callerSet := func(path string) bool {
		_, exact := updates[path]
		if exact {
			return true
		}
		_, whole := updates[topLevel(path)]
		return whole
	}

	if (touched("aiRating.physicality") || touched("aiRating.skillset") || touched("aiRating.gameImpact")) &&
		!callerSet("aiRating.overall") {
		previous["aiRating.overall"] = p.Doc.AIRating.Overall
		newDoc.AIRating.Overall = OverallRating(
			newDoc.AIRating.Physicality, newDoc.AIRating.Skillset, newDoc.AIRating.GameImpact)
		final["aiRating.overall"] = newDoc.AIRating.Overall
	}

	valueComponents := []string{
		"playerValue.medicalScore", "playerValue.fitnessScore",
		"playerValue.performanceScore", "playerValue.attendanceScore",
	}
	componentTouched := false
	for _, c := range valueComponents {
		if touched(c) {
			componentTouched = true
			break
		}
	}
	if componentTouched && !callerSet("playerValue.totalScore") {
		previous["playerValue.totalScore"] = p.Doc.PlayerValue.TotalScore
		newDoc.PlayerValue.TotalScore = TotalScore(newDoc.PlayerValue)
		final["playerValue.totalScore"] = newDoc.PlayerValue.TotalScore
	}

	if touched("aiRating") && !callerSet("aiRating.lastUpdated") {
		newDoc.AIRating.LastUpdated = time.Now().UTC()
	}
}

// History returns the newest-first audit trail for one player. A zero or
// negative limit uses the default; the cap bounds worst-case result size.
func (e *Engine) History(ctx context.Context, playerID string, limit int) ([]DataUpdate, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	return e.store.History(ctx, playerID, limit)
}

// Report runs the read-only consistency scan. It is independent of the
// cascade rules: it flags the known inconsistency patterns a document can
// drift into and scores consistency as 100 minus 10 per issue.
func (e *Engine) Report(ctx context.Context, playerID string) (*IntegrityReport, error) {
	p, err := e.store.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	doc := &p.Doc

	var issues, recommendations []string
	flag := func(issue, recommendation string) {
		issues = append(issues, issue)
		recommendations = append(recommendations, recommendation)
	}

	if doc.Status.Medical == player.MedicalCleared && len(doc.ActiveInjuries()) > 0 {
		flag("medical status is 'cleared' but the player has an active injury",
			"re-run the injury update so the medical status cascade applies")
	}
	if doc.Status.Availability == player.AvailabilityAvailable && doc.Status.Medical == player.MedicalRestricted {
		flag("player is 'available' while medically restricted",
			"set availability to 'injured' or clear the medical restriction")
	}
	if doc.AIRating.LastUpdated.IsZero() {
		flag("AI rating has never been computed",
			"trigger an AI analysis refresh for this player")
	} else if time.Since(doc.AIRating.LastUpdated) > staleRatingAge {
		flag("AI rating is older than 30 days",
			"trigger an AI analysis refresh for this player")
	}
	if len(doc.PhysicalAttributes) == 0 {
		flag("no physical attribute snapshots recorded",
			"record a baseline physical measurement")
	}
	if doc.GameStats.GamesPlayed == 0 && doc.GameStats.Season == "" {
		flag("no game statistics recorded",
			"import seasonal statistics for this player")
	}
	for _, score := range []float64{
		doc.PlayerValue.MedicalScore, doc.PlayerValue.FitnessScore,
		doc.PlayerValue.PerformanceScore, doc.PlayerValue.AttendanceScore,
		doc.PlayerValue.TotalScore, doc.AIRating.Overall,
	} {
		if score < 0 || score > 10 {
			flag("a composite score is outside the 0-10 range",
				"resubmit the primary fields so the scores are recomputed")
			break
		}
	}

	score := 100 - 10*len(issues)
	if score < 0 {
		score = 0
	}
	if issues == nil {
		issues, recommendations = []string{}, []string{}
	}
	return &IntegrityReport{
		PlayerID:         playerID,
		ConsistencyScore: score,
		Issues:           issues,
		Recommendations:  recommendations,
		LastValidation:   time.Now().UTC(),
	}, nil
}

// GetPlayer exposes read access for callers that precompute update payloads
// from the current document (the update service façade).
func (e *Engine) GetPlayer(ctx context.Context, playerID string) (*player.Player, error) {
	return e.store.GetPlayer(ctx, playerID)
}

// ruleValues collects every value in the batch a rule bound to rulePath
// must check: the resolved value of the path itself, plus any batch key
// nested under it (a skills.passing write against the skills rule).
func ruleValues(updates map[string]interface{}, rulePath string) []interface{} {
	var values []interface{}
	if v, ok := resolveUpdate(updates, rulePath); ok {
		values = append(values, v)
	}
	for key, v := range updates {
		if key != rulePath && pathWithin(key, rulePath) {
			values = append(values, v)
		}
	}
	return values
}

// cascadeSourceValue returns the value feeding a cascade rule: the exact
// source key, or, for partial writes like skills.passing, the current
// document value with the partial keys overlaid, so rules always see the
// full effective value.
func cascadeSourceValue(updates map[string]interface{}, docMap map[string]interface{}, source string) (interface{}, bool) {
	if v, ok := updates[source]; ok {
		return v, true
	}
	partial := map[string]interface{}{}
	for key, v := range updates {
		if pathWithin(key, source) && key != source {
			partial[key[len(source)+1:]] = v
		}
	}
	if len(partial) == 0 {
		return nil, false
	}
	base := map[string]interface{}{}
	if current, ok := getPath(docMap, source); ok {
		if cloned, err := decodeAs[map[string]interface{}](current); err == nil && cloned != nil {
			base = cloned
		}
	}
	for key, v := range partial {
		setPath(base, key, v)
	}
	return base, true
}

func mirrorColumns(p *player.Player) {
	if p.Doc.Personal.Name != "" {
		p.Name = p.Doc.Personal.Name
	}
	p.Position = p.Doc.Personal.Position
	p.Squad = p.Doc.Personal.Squad
	p.JerseyNumber = p.Doc.Personal.JerseyNumber
}

func docToMap(doc *player.Document) (map[string]interface{}, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// mapToDoc decodes the merged map back into the typed document. Unknown
// struct fields are rejected, the final guard against a path that maps to
// no real field.
func mapToDoc(m map[string]interface{}) (*player.Document, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	var doc player.Document
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
