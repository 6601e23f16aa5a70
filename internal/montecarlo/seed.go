package montecarlo

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"jcurve-lab/internal/domain"
)

// DeriveTrialSeed computes a deterministic per-trial seed.
// Formula: first 8 bytes (big endian) of SHA256(base_seed|trial_index).
// The seed depends only on the run's base seed and the trial index, so a
// trial draws the same numbers whatever worker executes it.
func DeriveTrialSeed(baseSeed int64, trialIndex int) uint64 {
	data := fmt.Sprintf("%d|%d", baseSeed, trialIndex)
	hash := sha256.Sum256([]byte(data))
	return binary.BigEndian.Uint64(hash[:8])
}

// BaseSeed returns the run's base seed: the supplied one, or a fresh
// random value when the parameters are unseeded.
func BaseSeed(params domain.SimulationParameters) (int64, error) {
	if params.RandomSeed != nil {
		return *params.RandomSeed, nil
	}
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.BigEndian.Uint64(b[:])), nil
}
