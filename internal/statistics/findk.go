package statistics

// Find-K recommends how many repeated evaluation epochs (K) a model needs
// before its scores can be trusted. K-fold resampling removes the fraction
// 1 − (1 + 2/K)/3 of conditional variance, so the curve saturates quickly;
// a model that answers consistently gains nothing from extra epochs, which
// is why the theoretical curve is scaled by the model's observed
// inconsistency before choosing K.

const (
	// DefaultTargetReduction is the variance-reduction percentage a chosen
	// K must reach.
	DefaultTargetReduction = 50.0

	// DefaultMaxK caps the epoch search. When the target is unreachable
	// within the cap, the scan settles for the best achievable K rather
	// than failing.
	DefaultMaxK = 5
)

// TheoreticalReduction returns the percentage of conditional variance
// removed by k-fold resampling. k <= 1 reduces nothing.
func TheoreticalReduction(k int) float64 {
	if k <= 1 {
		return 0
	}
	return (1 - (1+2/float64(k))/3) * 100
}

// ObservedInconsistency returns the fraction of tasks whose outcome list
// contains both true and false, over tasks with at least one outcome.
// An empty record yields 0.
func ObservedInconsistency(rec ConsistencyRecord) float64 {
	scored := 0
	inconsistent := 0
	for _, outcomes := range rec {
		if len(outcomes) == 0 {
			continue
		}
		scored++
		if mixed(outcomes) {
			inconsistent++
		}
	}
	if scored == 0 {
		return 0.0
	}
	return float64(inconsistent) / float64(scored)
}

// ModelSpecificReduction scales the theoretical curve by a model's observed
// inconsistency. Zero when inconsistency <= 0 or k <= 1: a perfectly
// consistent model gains nothing from extra epochs regardless of K.
func ModelSpecificReduction(k int, inconsistency float64) float64 {
	if inconsistency <= 0 || k <= 1 {
		return 0
	}
	return TheoreticalReduction(k) * inconsistency
}

// FindOptimalK selects the minimal K in [2, maxK] whose model-specific
// reduction meets targetReduction. A perfectly consistent record
// short-circuits to K=1 without searching. When no K within maxK reaches
// the target, the result is the best-effort ceiling (maxK and its achieved
// reduction), not a failure.
func FindOptimalK(rec ConsistencyRecord, targetReduction float64, maxK int) (k int, reductionPct float64, inconsistency float64) {
	inconsistency = ObservedInconsistency(rec)
	if inconsistency == 0 {
		return 1, 0.0, 0.0
	}
	for k = 2; k <= maxK; k++ {
		if r := ModelSpecificReduction(k, inconsistency); r >= targetReduction {
			return k, r, inconsistency
		}
	}
	return maxK, ModelSpecificReduction(maxK, inconsistency), inconsistency
}

func mixed(outcomes []bool) bool {
	first := outcomes[0]
	for _, o := range outcomes[1:] {
		if o != first {
			return true
		}
	}
	return false
}
