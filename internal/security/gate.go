package security

import "github.com/intellecta/intellecta/internal/models"

// FilterByClearance partitions chunks by the caller's clearance. A chunk
// passes iff its level value is less than or equal to the clearance value.
// Relative order of the allowed chunks is preserved. Applied before any
// downstream scoring so blocked content never reaches the reranker or the
// language model.
func FilterByClearance(chunks []*models.Chunk, clearance models.SecurityLevel) (allowed []*models.Chunk, blocked int) {
	allowed = make([]*models.Chunk, 0, len(chunks))
	for _, ch := range chunks {
		if clearance.Allows(ch.SecurityLevel) {
			allowed = append(allowed, ch)
		} else {
			blocked++
		}
	}
	return allowed, blocked
}

// MaxLevel returns the highest security level present among chunks,
// defaulting to PUBLIC for an empty slice.
func MaxLevel(chunks []*models.Chunk) models.SecurityLevel {
	max := models.LevelPublic
	for _, ch := range chunks {
		if ch.SecurityLevel.Value() > max.Value() {
			max = ch.SecurityLevel
		}
	}
	return max
}
