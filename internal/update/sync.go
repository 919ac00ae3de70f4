package update

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/squadpulse/squadpulse/internal/integrity"
)

// External sources the sync endpoint accepts.
const (
	SyncSourceGPSVendor         = "gps_vendor"
	SyncSourceCohesionAnalytics = "cohesion_analytics"
	SyncSourceSheets            = "sheets"
)

// SyncExternalData maps a vendor payload shape onto document paths and
// delegates to the engine. The payload is whatever the vendor webhook or
// poller delivered, already parsed from JSON.
func (s *Service) SyncExternalData(ctx context.Context, playerID, source string, payload map[string]interface{}, actor string) *integrity.Result {
	if actor == "" {
		actor = "system"
	}
	switch source {
	case SyncSourceGPSVendor:
		var gps GPSData
		if err := remarshal(payload, &gps); err != nil {
			return integrity.FailureResult(integrity.FailureValidation, "malformed gps payload: "+err.Error())
		}
		return s.ProcessGPSDataUpdate(ctx, playerID, gps, actor)

	case SyncSourceCohesionAnalytics:
		updates := map[string]interface{}{}
		if v, ok := payload["reliability"]; ok {
			updates["cohesionMetrics.reliability"] = v
		}
		if v, ok := payload["teamwork"]; ok {
			updates["cohesionMetrics.teamwork"] = v
		}
		if len(updates) == 0 {
			return integrity.FailureResult(integrity.FailureValidation, "cohesion payload contains no metrics")
		}
		return s.engine.ProcessUpdate(ctx, playerID, updates, integrity.SourceAPICall, actor, "cohesion analytics sync")

	case SyncSourceSheets:
		row := make(map[string]string, len(payload))
		for header, v := range payload {
			row[header] = fmt.Sprintf("%v", v)
		}
		updates := TransformCSVData(row)
		if len(updates) == 0 {
			return integrity.FailureResult(integrity.FailureValidation, "sheet row contains no recognized columns")
		}
		return s.engine.ProcessUpdate(ctx, playerID, updates, integrity.SourceAPICall, actor, "spreadsheet sync")

	default:
		return integrity.FailureResult(integrity.FailureValidation, "unknown external source: "+source)
	}
}

func remarshal(payload map[string]interface{}, out interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}
