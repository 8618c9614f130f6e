package skillbuilder

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// finalizeVersionHash computes version_hash over the hash-normalized
// skill_md, the api_template body, and the endpoints_ref bytes, then
// splices the result into skill_md's placeholder. Running the same
// build twice over unchanged input yields byte-identical skill_md and
// therefore an identical hash, per the determinism requirement.
func finalizeVersionHash(skillMD, apiTemplate string, endpointsRefJSON []byte) (finalMD, hash string) {
	normalized := normalizeHashLine(skillMD)
	sum := sha256.Sum256([]byte(normalized + "\x00" + apiTemplate + "\x00" + string(endpointsRefJSON)))
	hash = hex.EncodeToString(sum[:])[:8]
	finalMD = strings.Replace(skillMD, "versionHash: "+versionHashPlaceholder, "versionHash: "+hash, 1)
	return finalMD, hash
}

// diffKind classifies how the current build compares to a prior one
// already on disk, per the three-way outcome the publish step reports.
type diffKind int

const (
	diffNone diffKind = iota
	diffNewEndpoints
	diffUpdated
)

// compareBuilds decides whether this build differs from the prior one
// in endpoint count (new endpoints added), in content at equal count
// (an existing endpoint's schema or description changed), or not at
// all — comparing hash-normalized skill_md so an unrelated version_hash
// churn alone never counts as a change.
func compareBuilds(priorSkillMD, currentSkillMD string, priorEndpointCount, currentEndpointCount int) (diffKind, string) {
	if priorSkillMD == "" {
		return diffNewEndpoints, fmt.Sprintf("+%d new endpoint(s)", currentEndpointCount)
	}
	if currentEndpointCount > priorEndpointCount {
		return diffNewEndpoints, fmt.Sprintf("+%d new endpoint(s)", currentEndpointCount-priorEndpointCount)
	}
	if normalizeHashLine(priorSkillMD) != normalizeHashLine(currentSkillMD) {
		return diffUpdated, fmt.Sprintf("Updated (%d endpoints)", currentEndpointCount)
	}
	return diffNone, "no changes"
}
