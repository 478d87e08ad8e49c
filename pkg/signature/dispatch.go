package signature

import "github.com/QuEraComputing/kirin/internal/kerrors"

// Candidate pairs a dispatchable entity (e.g. a specialization id) with
// the signature it was registered under.
type Candidate[C any, ID any] struct {
	ID        ID
	Signature Signature[C]
}

// Result is the outcome of a successful Resolve: Unique is the single
// surviving candidate. On failure Resolve instead returns an error, a
// *kerrors.Error of KindNoMatch / KindAmbiguous (the latter carrying the
// ambiguous candidate set in its New field).
type Result[C any, ID any] struct {
	Unique Candidate[C, ID]
	Env    Env[C]
}

// Resolve implements StagedFunction::resolve's dispatch algorithm (spec
// section 4.5):
//  1. filter candidates by Applicable, collecting (cand, env) pairs;
//  2. reduce by CmpCandidate, keeping only candidates no other
//     candidate strictly dominates (More);
//  3. empty -> NoMatch; one -> Unique; otherwise -> Ambiguous.
//
// Tie-breaking is never performed silently: Ambiguous is surfaced as an
// error carrying the full ambiguous candidate set so callers can
// translate it into a diagnostic (spec section 4.5).
func Resolve[C any, ID any](sem Semantics[C], call Signature[C], candidates []Candidate[C, ID]) (Result[C, ID], error) {
	type applicant struct {
		cand Candidate[C, ID]
		env  Env[C]
	}
	var applicable []applicant
	for _, c := range candidates {
		if env, ok := sem.Applicable(call, c.Signature); ok {
			applicable = append(applicable, applicant{cand: c, env: env})
		}
	}

	var reduced []applicant
	for i, a := range applicable {
		dominated := false
		for j, b := range applicable {
			if i == j {
				continue
			}
			if sem.CmpCandidate(b.cand.Signature, b.env, a.cand.Signature, a.env) == More {
				dominated = true
				break
			}
		}
		if !dominated {
			reduced = append(reduced, a)
		}
	}

	switch len(reduced) {
	case 0:
		return Result[C, ID]{}, kerrors.NoMatch()
	case 1:
		return Result[C, ID]{Unique: reduced[0].cand, Env: reduced[0].env}, nil
	default:
		ids := make([]ID, len(reduced))
		for i, a := range reduced {
			ids[i] = a.cand.ID
		}
		return Result[C, ID]{}, kerrors.Ambiguous(ids)
	}
}
