package analyzer

import (
	"math"

	"github.com/usestring/apiskill/pkg/types"
)

// scoreConfidence computes the four §4.6 sub-scores and their average,
// each rounded to two decimals.
func scoreConfidence(groups []types.EndpointGroup, entities []types.Entity, authFlows []types.AuthFlow, dataFlows []types.DataFlow, auth *types.AuthInfo, rawBodiesAvailable bool) float64 {
	entitiesScore := round2(entityConfidence(groups, entities))
	authScore := round2(authConfidence(authFlows, auth))
	flowScore := round2(dataFlowConfidence(groups, dataFlows, rawBodiesAvailable))
	coverageScore := round2(coverageConfidence(groups, rawBodiesAvailable))
	return round2((entitiesScore + authScore + flowScore + coverageScore) / 4)
}

func entityConfidence(groups []types.EndpointGroup, entities []types.Entity) float64 {
	if len(entities) == 0 {
		return 0.3
	}
	var totalFields, totalEndpoints int
	for _, e := range entities {
		totalFields += len(e.Fields)
		totalEndpoints += len(e.Endpoints)
	}
	avgFields := float64(totalFields) / float64(len(entities))
	avgEndpoints := float64(totalEndpoints) / float64(len(entities))

	score := 0.3 + 0.05*avgFields
	if avgEndpoints > 2 {
		score += 0.15
	}
	if withSchemaFraction(groups) < 0.3 {
		score *= 0.6
	}
	return clamp01(score)
}

func withSchemaFraction(groups []types.EndpointGroup) float64 {
	if len(groups) == 0 {
		return 0
	}
	n := 0
	for i := range groups {
		if groups[i].ResponseSchema != nil {
			n++
		}
	}
	return float64(n) / float64(len(groups))
}

func authConfidence(authFlows []types.AuthFlow, auth *types.AuthInfo) float64 {
	var traced []types.AuthFlow
	for _, f := range authFlows {
		if f.Endpoint != "" {
			traced = append(traced, f)
		}
	}
	if len(traced) > 0 {
		score := 0.5
		for _, f := range traced {
			if len(f.ProducedTokens) > 0 {
				score += 0.2
				break
			}
		}
		for _, f := range traced {
			if len(f.ConsumedBy) > 0 {
				score += 0.2
				break
			}
		}
		for _, f := range traced {
			if f.RefreshEndpoint != "" {
				score += 0.1
				break
			}
		}
		return clamp01(score)
	}
	if auth != nil && auth.AuthMethod != "" && auth.AuthMethod != "none" {
		return 0.3
	}
	if auth != nil && len(auth.AuthHeaders) > 0 {
		return 0.2
	}
	return 0.5
}

func dataFlowConfidence(groups []types.EndpointGroup, flows []types.DataFlow, rawBodiesAvailable bool) float64 {
	if len(groups) <= 2 {
		return 0.5
	}
	score := 0.4 + 0.05*float64(len(flows))
	if rawBodiesAvailable {
		score += 0.15
	}
	return clamp01(score)
}

func coverageConfidence(groups []types.EndpointGroup, rawBodiesAvailable bool) float64 {
	if len(groups) == 0 {
		return 0.2
	}
	var totalSamples int
	hasSuccess, hasError := false, false
	for i := range groups {
		totalSamples += groups[i].SampleCount
		for status := range groups[i].StatusCodes {
			if status < 400 {
				hasSuccess = true
			} else {
				hasError = true
			}
		}
	}
	avgRequests := float64(totalSamples) / float64(len(groups))

	score := 0.2 + 0.1*avgRequests
	if rawBodiesAvailable {
		score += 0.15
	}
	if hasSuccess && hasError {
		score += 0.1
	}
	return clamp01(score)
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
